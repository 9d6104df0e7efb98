package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/trade"
)

type proposeTradeRequest struct {
	ProposerMemberID uuid.UUID          `json:"proposer_member_id"`
	RecipientIDs     []uuid.UUID        `json:"recipient_member_ids"`
	Items            []proposeTradeItem `json:"items"`
}

type proposeTradeItem struct {
	PlayerID     uuid.UUID `json:"player_id"`
	FromMemberID uuid.UUID `json:"from_member_id"`
	ToMemberID   uuid.UUID `json:"to_member_id"`
}

func (h *Handler) proposeTrade(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	var req proposeTradeRequest
	if !decode(w, r, &req) {
		return
	}
	items := make([]trade.ProposeItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = trade.ProposeItem{
			PlayerID:     item.PlayerID,
			FromMemberID: item.FromMemberID,
			ToMemberID:   item.ToMemberID,
		}
	}
	t, err := h.trades.Propose(r.Context(), leagueID, req.ProposerMemberID, req.RecipientIDs, items)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, t)
}

func (h *Handler) listTrades(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	trades, err := h.trades.ListByLeague(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, trades)
}

func (h *Handler) getTrade(w http.ResponseWriter, r *http.Request) {
	tradeID, ok := pathID(w, r, "tradeID")
	if !ok {
		return
	}
	view, err := h.trades.Get(r.Context(), tradeID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, view)
}

type tradeActionRequest struct {
	MemberID uuid.UUID `json:"member_id"`
}

// tradeAction factors accept/decline/cancel, which share a request
// shape.
func (h *Handler) tradeAction(action func(r *http.Request, tradeID, memberID uuid.UUID) (*models.Trade, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tradeID, ok := pathID(w, r, "tradeID")
		if !ok {
			return
		}
		var req tradeActionRequest
		if !decode(w, r, &req) {
			return
		}
		t, err := action(r, tradeID, req.MemberID)
		if err != nil {
			respond.AppError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, t)
	}
}
