package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
)

func (h *Handler) getRoster(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}
	entries, err := h.rosters.Snapshot(r.Context(), memberID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

func (h *Handler) getLeagueRosters(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	entries, err := h.rosters.LeagueSnapshot(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

type movePlayerRequest struct {
	EntryID    uuid.UUID `json:"entry_id"`
	TargetSlot string    `json:"target_slot"`
}

func (h *Handler) movePlayer(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}
	var req movePlayerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.rosters.MovePlayer(r.Context(), memberID, req.EntryID, req.TargetSlot); err != nil {
		respond.AppError(w, err)
		return
	}
	entries, err := h.rosters.Snapshot(r.Context(), memberID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

type optimizeLineupRequest struct {
	LeagueID uuid.UUID `json:"league_id"`
}

func (h *Handler) optimizeLineup(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}
	var req optimizeLineupRequest
	if !decode(w, r, &req) {
		return
	}
	moves, err := h.optimizer.SetLineup(r.Context(), req.LeagueID, memberID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{"moves": moves})
}
