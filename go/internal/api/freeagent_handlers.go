package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
)

func (h *Handler) listFreeAgents(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	pool, err := h.freeagents.Available(r.Context(), leagueID, searchFilter(r))
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, pool)
}

type pickupRequest struct {
	MemberID uuid.UUID `json:"member_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (h *Handler) pickupFreeAgent(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	var req pickupRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.freeagents.Pickup(r.Context(), leagueID, req.MemberID, req.PlayerID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, entry)
}

type dropRequest struct {
	MemberID uuid.UUID `json:"member_id"`
	EntryID  uuid.UUID `json:"entry_id"`
}

func (h *Handler) dropPlayer(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	var req dropRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.freeagents.Drop(r.Context(), leagueID, req.MemberID, req.EntryID); err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}
