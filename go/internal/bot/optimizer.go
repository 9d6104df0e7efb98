package bot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// LeagueGetter looks up leagues and members for the optimizer.
type LeagueGetter interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// PlayerGetter resolves rostered players to catalog records.
type PlayerGetter interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// RosterMover reads a member's roster and applies slot moves.
type RosterMover interface {
	Snapshot(ctx context.Context, memberID uuid.UUID) ([]models.RosterEntry, error)
	MovePlayer(ctx context.Context, memberID, entryID uuid.UUID, targetSlot string) error
}

// Optimizer computes and applies the best-ADP starting lineup for a bot
// member's roster.
type Optimizer struct {
	policy  *Policy
	leagues LeagueGetter
	players PlayerGetter
	rosters RosterMover
}

func NewOptimizer(policy *Policy, leagues LeagueGetter, players PlayerGetter, rosters RosterMover) *Optimizer {
	return &Optimizer{policy: policy, leagues: leagues, players: players, rosters: rosters}
}

// SetLineup reshuffles the bot member's roster into its optimal lineup.
// Each computed move goes through the roster store's swap-aware move, so
// partial application never strands a player without a slot.
func (o *Optimizer) SetLineup(ctx context.Context, leagueID, memberID uuid.UUID) ([]LineupMove, error) {
	member, err := o.leagues.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsBot {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
			"member %s is not a bot", memberID)
	}
	league, err := o.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	layout := slotconfig.Build(league.RosterSettings)

	entries, err := o.rosters.Snapshot(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("roster snapshot: %w", err)
	}
	catalog := make(map[uuid.UUID]models.Player, len(entries))
	for _, e := range entries {
		player, err := o.players.GetPlayer(ctx, e.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("resolve player %s: %w", e.PlayerID, err)
		}
		catalog[e.PlayerID] = *player
	}

	moves := o.policy.OptimizeLineup(layout, entries, catalog)
	for _, move := range moves {
		if err := o.rosters.MovePlayer(ctx, memberID, move.EntryID, move.Slot); err != nil {
			return nil, fmt.Errorf("apply lineup move to %s: %w", move.Slot, err)
		}
	}
	if len(moves) > 0 {
		log.Info().
			Str("member_id", memberID.String()).
			Int("moves", len(moves)).
			Msg("bot lineup optimized")
	}
	return moves, nil
}
