package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/config"
	"github.com/huddlehq/huddle/go/internal/draft"
	"github.com/huddlehq/huddle/go/internal/freeagent"
	"github.com/huddlehq/huddle/go/internal/gateway"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/population"
	"github.com/huddlehq/huddle/go/internal/postgres"
	"github.com/huddlehq/huddle/go/internal/roster"
	"github.com/huddlehq/huddle/go/internal/trade"
)

// lockedSource guards a rand.Source with a mutex. The apps share one
// rng but draw from it under different keyed locks, so the source
// itself must be safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// Services is the wired dependency graph.
type Services struct {
	Leagues      *leagues.App
	Rosters      *roster.App
	Drafts       *draft.App
	Trades       *trade.App
	FreeAgents   *freeagent.App
	Optimizer    *bot.Optimizer
	Catalog      players.Repository
	Orchestrator *draft.Orchestrator
	Gateway      *gateway.Manager
}

// setupServices wires the dependency chain: repositories → apps →
// background loops. Without DATABASE_URL everything runs on the
// in-memory repositories, which is enough for local development.
func setupServices(ctx context.Context, cfg *config.Config) (*Services, func(), error) {
	cleanup := func() {}

	var (
		leagueRepo leagues.Repository
		rosterRepo roster.Repository
		draftRepo  draft.Repository
		tradeRepo  trade.Repository
		catalog    players.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}
		cleanup = pool.Close
		leagueRepo = leagues.NewPostgresRepository(pool)
		rosterRepo = roster.NewPostgresRepository(pool)
		draftRepo = draft.NewPostgresRepository(pool)
		tradeRepo = trade.NewPostgresRepository(pool)
		catalog = players.NewPostgresRepository(pool)
		log.Info().Msg("using postgres repositories")
	} else {
		leagueRepo = leagues.NewMemoryRepository()
		rosterRepo = roster.NewMemoryRepository()
		draftRepo = draft.NewMemoryRepository()
		tradeRepo = trade.NewMemoryRepository()
		catalog = players.NewMemoryRepository()
		log.Warn().Msg("DATABASE_URL not set, using in-memory repositories")
	}

	// Event fan-out: always the websocket gateway, plus NATS when
	// configured.
	gw := gateway.NewManager(gateway.DefaultConfig())
	publisher := notify.Fanout{notify.Publisher(gw)}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}
		prev := cleanup
		cleanup = func() {
			nc.Close()
			prev()
		}
		publisher = append(publisher, notify.NewNATSPublisher(nc))
		log.Info().Str("url", cfg.NATSURL).Msg("connected to NATS")
	}

	rng := rand.New(&lockedSource{src: rand.NewSource(time.Now().UnixNano())})
	clock := clockwork.NewRealClock()
	leagueLocks := locks.NewKeyed()
	draftLocks := locks.NewKeyed()
	policy := bot.NewPolicy(rng)

	leagueApp := leagues.NewApp(leagueRepo, rng)
	rosterApp := roster.NewApp(rosterRepo, leagueApp, catalog, leagueLocks)
	populator := population.NewApp(leagueApp, catalog, rosterApp)
	draftApp := draft.NewApp(draftRepo, leagueApp, catalog, rosterApp, populator,
		policy, publisher, draftLocks, rng, clock)
	tradeApp := trade.NewApp(tradeRepo, leagueApp, rosterApp, catalog,
		policy, publisher, leagueLocks, clock)
	freeagentApp := freeagent.NewApp(leagueApp, rosterApp, catalog,
		policy, publisher, leagueLocks, clock)
	optimizer := bot.NewOptimizer(policy, leagueApp, catalog, rosterApp)

	orchestrator := draft.NewOrchestrator(draftApp, clock, cfg.SchedulerBatchSize)

	return &Services{
		Leagues:      leagueApp,
		Rosters:      rosterApp,
		Drafts:       draftApp,
		Trades:       tradeApp,
		FreeAgents:   freeagentApp,
		Optimizer:    optimizer,
		Catalog:      catalog,
		Orchestrator: orchestrator,
		Gateway:      gw,
	}, cleanup, nil
}
