// Package population converts a completed draft's picks into initial
// roster placements: starters first, bench overflow second.
package population

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// LeagueGetter resolves a league's roster settings.
type LeagueGetter interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// PlayerGetter resolves pick player references.
type PlayerGetter interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// RosterPlacer is the roster store surface population writes through.
type RosterPlacer interface {
	Place(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error)
	FirstOpenSlot(ctx context.Context, memberID uuid.UUID, slotSet []string) (string, error)
}

// App runs post-draft roster population.
type App struct {
	leagues LeagueGetter
	players PlayerGetter
	rosters RosterPlacer
}

// NewApp creates a population App.
func NewApp(leagues LeagueGetter, players PlayerGetter, rosters RosterPlacer) *App {
	return &App{leagues: leagues, players: players, rosters: rosters}
}

// PopulateRosters walks the picks in pick-number order and places each
// player into the member's first open position-eligible starter slot,
// falling back to the first open bench slot. A pick with no open slot
// at all is logged and skipped; draft setup caps rounds at roster
// capacity, so that only happens if rosters were already partly filled.
func (a *App) PopulateRosters(ctx context.Context, leagueID uuid.UUID, picks []models.DraftPick) error {
	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	layout := slotconfig.Build(league.RosterSettings)

	placed := 0
	for _, pick := range picks {
		player, err := a.players.GetPlayer(ctx, pick.PlayerID)
		if err != nil {
			return fmt.Errorf("resolve pick %d player: %w", pick.OverallPick, err)
		}

		slot, err := a.rosters.FirstOpenSlot(ctx, pick.MemberID, layout.StarterSlotsFor(player.Position))
		if err != nil {
			return err
		}
		if slot == "" {
			slot, err = a.rosters.FirstOpenSlot(ctx, pick.MemberID, layout.Bench)
			if err != nil {
				return err
			}
		}
		if slot == "" {
			log.Warn().
				Str("member_id", pick.MemberID.String()).
				Str("player_id", pick.PlayerID.String()).
				Int("overall_pick", pick.OverallPick).
				Msg("no open slot for drafted player, skipping")
			continue
		}

		if _, err := a.rosters.Place(ctx, leagueID, pick.MemberID, pick.PlayerID, slot, models.AcquisitionTypeDraft); err != nil {
			return fmt.Errorf("place pick %d: %w", pick.OverallPick, err)
		}
		placed++
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Int("picks", len(picks)).
		Int("placed", placed).
		Msg("rosters populated from draft")
	return nil
}
