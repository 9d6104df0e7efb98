// Seeds the players table from a JSON snapshot of the player catalog.
//
//	go run ./go/internal/tools/seed_players players.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/huddlehq/huddle/go/internal/config"
	"github.com/huddlehq/huddle/go/internal/postgres"
)

// Player mirrors the snapshot JSON structure.
type Player struct {
	ID           string   `json:"id"`
	FullName     string   `json:"full_name"`
	Position     string   `json:"position"`
	NFLTeam      string   `json:"nfl_team"`
	ADP          *float64 `json:"adp"`
	InjuryStatus *string  `json:"injury_status"`
}

func main() {
	path := "go/internal/assets/players.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var players []Player
	if err := json.Unmarshal(data, &players); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var upserted, errs int
	for _, p := range players {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO players (id, full_name, position, nfl_team, adp, injury_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				full_name     = EXCLUDED.full_name,
				position      = EXCLUDED.position,
				nfl_team      = EXCLUDED.nfl_team,
				adp           = EXCLUDED.adp,
				injury_status = EXCLUDED.injury_status`,
			id, p.FullName, p.Position, p.NFLTeam, p.ADP, p.InjuryStatus)
		if err != nil {
			fmt.Fprintf(os.Stderr, "upsert %s: %v\n", p.FullName, err)
			errs++
			continue
		}
		upserted++
	}

	fmt.Printf("players: %d total, %d upserted, %d errors\n",
		len(players), upserted, errs)
	if errs > 0 {
		os.Exit(1)
	}
}
