package gateway

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler serves WebSocket upgrade requests.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Subscribe upgrades GET /ws/leagues/{leagueID} to a WebSocket feed of
// that league's events.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
	if err != nil {
		http.Error(w, "invalid league id", http.StatusBadRequest)
		return
	}

	// TODO: derive user identity from the session cookie instead of a
	// query parameter once the auth middleware grows socket support.
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	if err := h.manager.Upgrade(w, r, userID, leagueID); err != nil {
		log.Error().
			Err(err).
			Str("league_id", leagueID.String()).
			Msg("failed to upgrade websocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// Stats reports active connection counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	total, leagues := h.manager.Stats()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"total_connections":%d,"active_leagues":%d}`, total, leagues)
}

// RegisterRoutes mounts the WebSocket endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/leagues/{leagueID}", h.Subscribe)
	r.Get("/ws/stats", h.Stats)
}
