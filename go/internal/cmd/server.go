package main

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/huddlehq/huddle/go/internal/api"
	"github.com/huddlehq/huddle/go/internal/config"
	"github.com/huddlehq/huddle/go/internal/gateway"
)

func setupServer(services *Services, cfg *config.Config) *http.Server {
	handler := api.NewHandler(
		services.Leagues,
		services.Rosters,
		services.Drafts,
		services.Trades,
		services.FreeAgents,
		services.Optimizer,
		services.Catalog,
		services.Orchestrator,
	)
	router := api.NewRouter(handler, gateway.NewHandler(services.Gateway), api.RouterConfig{
		RateLimitEnabled:  cfg.RateLimitEnabled,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.CORSAllowOrigins,
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: h2c.NewHandler(c.Handler(router), &http2.Server{}),
	}
}
