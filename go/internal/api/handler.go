// Package api exposes the engine operations over HTTP with chi.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/api/respond"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/draft"
	"github.com/huddlehq/huddle/go/internal/freeagent"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/roster"
	"github.com/huddlehq/huddle/go/internal/trade"
)

// Waker nudges the pick-clock scheduler after operations that arm or
// re-arm a deadline.
type Waker interface {
	Wake()
}

// Handler carries the app-layer dependencies for every route.
type Handler struct {
	leagues    *leagues.App
	rosters    *roster.App
	drafts     *draft.App
	trades     *trade.App
	freeagents *freeagent.App
	optimizer  *bot.Optimizer
	catalog    players.Repository
	waker      Waker
}

func NewHandler(
	leagueApp *leagues.App,
	rosterApp *roster.App,
	draftApp *draft.App,
	tradeApp *trade.App,
	freeagentApp *freeagent.App,
	optimizer *bot.Optimizer,
	catalog players.Repository,
	waker Waker,
) *Handler {
	return &Handler{
		leagues:    leagueApp,
		rosters:    rosterApp,
		drafts:     draftApp,
		trades:     tradeApp,
		freeagents: freeagentApp,
		optimizer:  optimizer,
		catalog:    catalog,
		waker:      waker,
	}
}

// decode unmarshals the request body into v, writing a 400 on failure.
// Returns false when the caller should stop.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.Error(w, http.StatusBadRequest, "MALFORMED_BODY", "request body is not valid JSON")
		return false
	}
	return true
}

// pathID parses the named URL parameter as a UUID, writing a 400 on
// failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_ID", name+" is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// searchFilter reads the optional position/search query parameters.
func searchFilter(r *http.Request) players.SearchFilter {
	var filter players.SearchFilter
	if pos := r.URL.Query().Get("position"); pos != "" {
		p := models.Position(pos)
		filter.Position = &p
	}
	filter.Query = r.URL.Query().Get("search")
	return filter
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
