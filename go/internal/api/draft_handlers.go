package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
	"github.com/huddlehq/huddle/go/internal/models"
)

type setupDraftRequest struct {
	ActingMemberID uuid.UUID  `json:"acting_member_id"`
	Rounds         int        `json:"rounds"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
}

func (h *Handler) setupDraft(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	var req setupDraftRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.drafts.Setup(r.Context(), leagueID, req.ActingMemberID, req.Rounds, req.ScheduledAt)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, d)
}

func (h *Handler) getLeagueDraft(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	d, err := h.drafts.GetDraftByLeague(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathID(w, r, "draftID")
	if !ok {
		return
	}
	d, err := h.drafts.GetDraft(r.Context(), draftID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}

type draftActionRequest struct {
	ActingMemberID uuid.UUID `json:"acting_member_id"`
}

// draftAction factors the four commissioner transitions that share a
// request shape.
func (h *Handler) draftAction(action func(r *http.Request, draftID, actingMemberID uuid.UUID) (*models.Draft, error), wake bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID, ok := pathID(w, r, "draftID")
		if !ok {
			return
		}
		var req draftActionRequest
		if !decode(w, r, &req) {
			return
		}
		d, err := action(r, draftID, req.ActingMemberID)
		if err != nil {
			respond.AppError(w, err)
			return
		}
		if wake && h.waker != nil {
			h.waker.Wake()
		}
		respond.JSON(w, http.StatusOK, d)
	}
}

type makePickRequest struct {
	MemberID uuid.UUID `json:"member_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (h *Handler) makePick(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathID(w, r, "draftID")
	if !ok {
		return
	}
	var req makePickRequest
	if !decode(w, r, &req) {
		return
	}
	pick, err := h.drafts.MakePick(r.Context(), draftID, req.MemberID, req.PlayerID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	if h.waker != nil {
		h.waker.Wake()
	}
	respond.JSON(w, http.StatusCreated, pick)
}

func (h *Handler) listPicks(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathID(w, r, "draftID")
	if !ok {
		return
	}
	picks, err := h.drafts.ListPicks(r.Context(), draftID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, picks)
}

func (h *Handler) availablePlayers(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathID(w, r, "draftID")
	if !ok {
		return
	}
	pool, err := h.drafts.AvailablePlayers(r.Context(), draftID, searchFilter(r))
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, pool)
}
