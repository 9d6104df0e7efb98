// Package freeagent handles the open player pool: pickups onto the
// bench, drops, and bot bench autofill.
package freeagent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// LeagueService is the league/member collaborator.
type LeagueService interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// RosterService is the roster store surface pickups and drops write
// through. Locked variants assume the caller holds the league lock.
type RosterService interface {
	Owner(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error)
	GetEntry(ctx context.Context, entryID uuid.UUID) (*models.RosterEntry, error)
	FirstOpenSlot(ctx context.Context, memberID uuid.UUID, slotSet []string) (string, error)
	OpenSlotCount(ctx context.Context, memberID uuid.UUID, slotSet []string) (int, error)
	LeagueSnapshot(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error)
	PlaceLocked(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error)
	RemoveLocked(ctx context.Context, entryID uuid.UUID) error
}

// App handles free-agent business logic.
type App struct {
	leagues   LeagueService
	rosters   RosterService
	players   players.Repository
	policy    *bot.Policy
	publisher notify.Publisher
	locks     *locks.Keyed // must be the roster store's lock set
	clock     clockwork.Clock
}

// NewApp creates a free-agent App over the roster store's lock set.
func NewApp(
	leagues LeagueService,
	rosters RosterService,
	playerRepo players.Repository,
	policy *bot.Policy,
	publisher notify.Publisher,
	keyed *locks.Keyed,
	clock clockwork.Clock,
) *App {
	return &App{
		leagues:   leagues,
		rosters:   rosters,
		players:   playerRepo,
		policy:    policy,
		publisher: publisher,
		locks:     keyed,
		clock:     clock,
	}
}

// Pickup claims an unowned player onto the member's first open bench
// slot.
func (a *App) Pickup(ctx context.Context, leagueID, memberID, playerID uuid.UUID) (*models.RosterEntry, error) {
	a.locks.Lock(leagueID)
	defer a.locks.Unlock(leagueID)

	member, err := a.leagues.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.LeagueID != leagueID {
		return nil, apperrors.Authorization(apperrors.CodeNotAParticipant,
			"member %s does not belong to league %s", memberID, leagueID)
	}
	if _, err := a.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	if owner, err := a.rosters.Owner(ctx, leagueID, playerID); err == nil {
		return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyOwned,
			"player %s is already held by member %s", playerID, owner.MemberID)
	} else if apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, err
	}

	layout, err := a.layoutFor(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	slot, err := a.rosters.FirstOpenSlot(ctx, memberID, layout.Bench)
	if err != nil {
		return nil, err
	}
	if slot == "" {
		return nil, apperrors.Validation(apperrors.CodeInsufficientRosterSpace,
			"member %s has no open bench slot", memberID)
	}

	entry, err := a.rosters.PlaceLocked(ctx, leagueID, memberID, playerID, slot, models.AcquisitionTypeFreeAgent)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventFreeAgentPickup,
		LeagueID: leagueID,
		At:       a.clock.Now(),
		Payload:  map[string]any{"member_id": memberID, "player_id": playerID, "slot": slot},
	})
	log.Info().
		Str("member_id", memberID.String()).
		Str("player_id", playerID.String()).
		Msg("free agent picked up")
	return entry, nil
}

// Drop releases a player back to the pool. Only the holding member may
// drop.
func (a *App) Drop(ctx context.Context, leagueID, memberID, entryID uuid.UUID) error {
	a.locks.Lock(leagueID)
	defer a.locks.Unlock(leagueID)

	entry, err := a.rosters.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.MemberID != memberID {
		return apperrors.Authorization(apperrors.CodeNotOwner,
			"entry %s belongs to member %s", entryID, entry.MemberID)
	}
	if err := a.rosters.RemoveLocked(ctx, entryID); err != nil {
		return err
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventFreeAgentDrop,
		LeagueID: leagueID,
		At:       a.clock.Now(),
		Payload:  map[string]any{"member_id": memberID, "player_id": entry.PlayerID},
	})
	return nil
}

// Available returns the unowned player pool, best ADP first.
func (a *App) Available(ctx context.Context, leagueID uuid.UUID, filter players.SearchFilter) ([]models.Player, error) {
	pool, err := a.players.SearchPlayers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	entries, err := a.rosters.LeagueSnapshot(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("league roster snapshot: %w", err)
	}
	owned := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		owned[e.PlayerID] = true
	}

	available := pool[:0:0]
	for _, p := range pool {
		if !owned[p.ID] {
			available = append(available, p)
		}
	}
	players.SortByADP(available)
	return available, nil
}

// AutofillBench fills a bot member's open bench slots with the best
// available free agents. Returns the created entries.
func (a *App) AutofillBench(ctx context.Context, leagueID, memberID uuid.UUID) ([]models.RosterEntry, error) {
	member, err := a.leagues.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.IsBot {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
			"member %s is not a bot", memberID)
	}

	layout, err := a.layoutFor(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	open, err := a.rosters.OpenSlotCount(ctx, memberID, layout.Bench)
	if err != nil {
		return nil, err
	}
	if open == 0 {
		return nil, nil
	}

	pool, err := a.Available(ctx, leagueID, players.SearchFilter{})
	if err != nil {
		return nil, err
	}

	var entries []models.RosterEntry
	for _, pick := range a.policy.AutofillFreeAgents(pool, open) {
		entry, err := a.Pickup(ctx, leagueID, memberID, pick.ID)
		if err != nil {
			return entries, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (a *App) layoutFor(ctx context.Context, leagueID uuid.UUID) (slotconfig.Layout, error) {
	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return slotconfig.Layout{}, err
	}
	return slotconfig.Build(league.RosterSettings), nil
}

func (a *App) publish(ctx context.Context, event notify.Event) {
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("failed to publish event")
	}
}
