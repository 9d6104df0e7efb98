package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/gateway"
	"github.com/huddlehq/huddle/go/internal/models"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Sessions enables authentication on /api/v1 when non-nil.
	Sessions SessionVerifier
}

// NewRouter mounts every route on a chi router with the standard
// middleware stack. The gateway handler is optional.
func NewRouter(h *Handler, ws *gateway.Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	r.Get("/health", h.health)
	if ws != nil {
		ws.RegisterRoutes(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(cfg.Sessions))

		r.Get("/players", h.listPlayers)

		r.Route("/leagues", func(r chi.Router) {
			r.Post("/", h.createLeague)
			r.Post("/join", h.joinLeague)

			r.Route("/{leagueID}", func(r chi.Router) {
				r.Get("/", h.getLeague)
				r.Get("/layout", h.getLayout)
				r.Get("/members", h.listMembers)
				r.Post("/bots", h.addBot)
				r.Get("/rosters", h.getLeagueRosters)

				r.Post("/draft", h.setupDraft)
				r.Get("/draft", h.getLeagueDraft)

				r.Post("/trades", h.proposeTrade)
				r.Get("/trades", h.listTrades)

				r.Get("/freeagents", h.listFreeAgents)
				r.Post("/freeagents/pickup", h.pickupFreeAgent)
				r.Post("/freeagents/drop", h.dropPlayer)
			})
		})

		r.Route("/members/{memberID}", func(r chi.Router) {
			r.Get("/roster", h.getRoster)
			r.Post("/roster/move", h.movePlayer)
			r.Post("/roster/optimize", h.optimizeLineup)
		})

		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Post("/start", h.draftAction(func(r *http.Request, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
				return h.drafts.Start(r.Context(), draftID, actingMemberID)
			}, true))
			r.Post("/pause", h.draftAction(func(r *http.Request, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
				return h.drafts.Pause(r.Context(), draftID, actingMemberID)
			}, true))
			r.Post("/resume", h.draftAction(func(r *http.Request, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
				return h.drafts.Resume(r.Context(), draftID, actingMemberID)
			}, true))
			r.Post("/reorder", h.draftAction(func(r *http.Request, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
				return h.drafts.Reorder(r.Context(), draftID, actingMemberID)
			}, false))
			r.Post("/picks", h.makePick)
			r.Get("/picks", h.listPicks)
			r.Get("/available", h.availablePlayers)
		})

		r.Route("/trades/{tradeID}", func(r chi.Router) {
			r.Get("/", h.getTrade)
			r.Post("/accept", h.tradeAction(func(r *http.Request, tradeID, memberID uuid.UUID) (*models.Trade, error) {
				return h.trades.Accept(r.Context(), tradeID, memberID)
			}))
			r.Post("/decline", h.tradeAction(func(r *http.Request, tradeID, memberID uuid.UUID) (*models.Trade, error) {
				return h.trades.Decline(r.Context(), tradeID, memberID)
			}))
			r.Post("/cancel", h.tradeAction(func(r *http.Request, tradeID, memberID uuid.UUID) (*models.Trade, error) {
				return h.trades.Cancel(r.Context(), tradeID, memberID)
			}))
		})
	})

	return r
}
