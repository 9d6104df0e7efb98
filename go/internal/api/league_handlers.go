package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

type createLeagueRequest struct {
	Name           string                `json:"name"`
	NumTeams       int                   `json:"num_teams"`
	RosterSettings models.RosterSettings `json:"roster_settings"`
	TimePerPickSec int                   `json:"time_per_pick_sec"`
	UserID         uuid.UUID             `json:"user_id"`
	TeamName       string                `json:"team_name"`
}

func (h *Handler) createLeague(w http.ResponseWriter, r *http.Request) {
	var req createLeagueRequest
	if !decode(w, r, &req) {
		return
	}
	league, err := h.leagues.CreateLeague(r.Context(), leagues.CreateLeagueRequest{
		Name:           req.Name,
		NumTeams:       req.NumTeams,
		RosterSettings: req.RosterSettings,
		TimePerPickSec: req.TimePerPickSec,
		CommissionerID: req.UserID,
		TeamName:       req.TeamName,
	})
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, league)
}

type joinLeagueRequest struct {
	Code     string    `json:"code"`
	UserID   uuid.UUID `json:"user_id"`
	TeamName string    `json:"team_name"`
}

func (h *Handler) joinLeague(w http.ResponseWriter, r *http.Request) {
	var req joinLeagueRequest
	if !decode(w, r, &req) {
		return
	}
	member, err := h.leagues.JoinByCode(r.Context(), req.Code, req.UserID, req.TeamName)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, member)
}

func (h *Handler) getLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	league, err := h.leagues.GetLeague(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, league)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	members, err := h.leagues.ListMembers(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, members)
}

type addBotRequest struct {
	ActingMemberID uuid.UUID `json:"acting_member_id"`
	TeamName       string    `json:"team_name"`
}

func (h *Handler) addBot(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	var req addBotRequest
	if !decode(w, r, &req) {
		return
	}
	member, err := h.leagues.AddBot(r.Context(), leagueID, req.ActingMemberID, req.TeamName)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, member)
}

// layoutResponse is the slot layout in wire form.
type layoutResponse struct {
	Starters []slotView `json:"starters"`
	Bench    []string   `json:"bench"`
	IR       []string   `json:"ir"`
}

type slotView struct {
	Name     string            `json:"name"`
	Eligible []models.Position `json:"eligible,omitempty"`
}

func (h *Handler) getLayout(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathID(w, r, "leagueID")
	if !ok {
		return
	}
	league, err := h.leagues.GetLeague(r.Context(), leagueID)
	if err != nil {
		respond.AppError(w, err)
		return
	}
	layout := slotconfig.Build(league.RosterSettings)

	resp := layoutResponse{Bench: layout.Bench, IR: layout.IR}
	for _, s := range layout.Starters {
		resp.Starters = append(resp.Starters, slotView{Name: s.Name, Eligible: s.Eligible})
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.SearchPlayers(r.Context(), searchFilter(r))
	if err != nil {
		respond.AppError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
