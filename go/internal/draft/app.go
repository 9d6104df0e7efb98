package draft

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
)

// LeagueService is the league/member collaborator the engine consumes.
type LeagueService interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error)
	IsFull(ctx context.Context, leagueID uuid.UUID) (bool, error)
	RequireCommissioner(ctx context.Context, leagueID, memberID uuid.UUID) error
	UpdatePhase(ctx context.Context, leagueID uuid.UUID, phase models.LeaguePhase) (*models.League, error)
}

// RosterReader exposes the league-wide ownership view used to exclude
// already-rostered players from the draft pool.
type RosterReader interface {
	LeagueSnapshot(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error)
}

// Populator converts a completed draft's picks into initial rosters.
type Populator interface {
	PopulateRosters(ctx context.Context, leagueID uuid.UUID, picks []models.DraftPick) error
}

// App handles draft business logic. Every state-mutating path runs
// under the per-draft lock, so at most one writer touches a draft's
// CurrentPick at a time.
type App struct {
	repo      Repository
	leagues   LeagueService
	players   players.Repository
	rosters   RosterReader
	populator Populator
	policy    *bot.Policy
	publisher notify.Publisher
	locks     *locks.Keyed
	rng       *rand.Rand
	clock     clockwork.Clock
}

// NewApp creates a new draft App. The rng drives order shuffles and
// auto-pick selection; inject a seeded source in tests.
func NewApp(
	repo Repository,
	leagues LeagueService,
	playerRepo players.Repository,
	rosters RosterReader,
	populator Populator,
	policy *bot.Policy,
	publisher notify.Publisher,
	keyed *locks.Keyed,
	rng *rand.Rand,
	clock clockwork.Clock,
) *App {
	return &App{
		repo:      repo,
		leagues:   leagues,
		players:   playerRepo,
		rosters:   rosters,
		populator: populator,
		policy:    policy,
		publisher: publisher,
		locks:     keyed,
		rng:       rng,
		clock:     clock,
	}
}

// Setup creates the league's draft in SCHEDULED state with a uniformly
// random order. Commissioner only; requires a full league still in
// SETUP, and a round count the roster can actually hold.
func (a *App) Setup(ctx context.Context, leagueID, actingMemberID uuid.UUID, rounds int, scheduledAt *time.Time) (*models.Draft, error) {
	if err := a.leagues.RequireCommissioner(ctx, leagueID, actingMemberID); err != nil {
		return nil, err
	}

	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league.Phase != models.LeaguePhaseSetup {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"league %s is in phase %s, draft setup requires SETUP", leagueID, league.Phase)
	}

	full, err := a.leagues.IsFull(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"league %s is not full yet", leagueID)
	}

	if rounds < 1 {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
			"draft needs at least 1 round, got %d", rounds)
	}
	if total := league.RosterSettings.TotalSlots(); rounds > total {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
			"%d rounds exceed the %d roster slots; every pick must have a home", rounds, total)
	}

	if _, err := a.repo.GetDraftByLeague(ctx, leagueID); err == nil {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"league %s already has a draft", leagueID)
	} else if apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, fmt.Errorf("check existing draft: %w", err)
	}

	members, err := a.leagues.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	order := make([]uuid.UUID, len(members))
	for i, m := range members {
		order[i] = m.ID
	}
	a.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	draft, err := a.repo.CreateDraft(ctx, &models.Draft{
		ID:             uuid.New(),
		LeagueID:       leagueID,
		Status:         models.DraftStatusScheduled,
		Rounds:         rounds,
		CurrentPick:    1,
		Order:          order,
		TimePerPickSec: league.TimePerPickSec,
		ScheduledAt:    scheduledAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("league_id", leagueID.String()).
		Int("rounds", rounds).
		Msg("draft created")
	return draft, nil
}

// Reorder replaces a scheduled draft's order with a fresh random
// permutation. Commissioner only.
func (a *App) Reorder(ctx context.Context, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := a.leagues.RequireCommissioner(ctx, draft.LeagueID, actingMemberID); err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusScheduled {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"draft %s is %s, reorder requires SCHEDULED", draftID, draft.Status)
	}

	a.rng.Shuffle(len(draft.Order), func(i, j int) {
		draft.Order[i], draft.Order[j] = draft.Order[j], draft.Order[i]
	})
	return a.repo.UpdateDraft(ctx, draft)
}

// Start transitions SCHEDULED -> IN_PROGRESS, flips the league phase to
// DRAFTING, arms the pick clock, and runs any leading bot turns.
func (a *App) Start(ctx context.Context, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := a.leagues.RequireCommissioner(ctx, draft.LeagueID, actingMemberID); err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusScheduled {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"draft %s is %s, start requires SCHEDULED", draftID, draft.Status)
	}
	full, err := a.leagues.IsFull(ctx, draft.LeagueID)
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"league %s is not full yet", draft.LeagueID)
	}

	now := a.clock.Now()
	deadline := now.Add(a.pickTime(draft))
	draft.Status = models.DraftStatusInProgress
	draft.StartedAt = &now
	draft.NextDeadline = &deadline
	draft, err = a.repo.UpdateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("start draft: %w", err)
	}

	if _, err := a.leagues.UpdatePhase(ctx, draft.LeagueID, models.LeaguePhaseDrafting); err != nil {
		// Roll the draft back to SCHEDULED so a later Start can retry.
		draft.Status = models.DraftStatusScheduled
		draft.StartedAt = nil
		draft.NextDeadline = nil
		if _, rbErr := a.repo.UpdateDraft(ctx, draft); rbErr != nil {
			log.Error().Err(rbErr).Str("draft_id", draftID.String()).
				Msg("failed to roll back draft after phase update failure")
		}
		return nil, fmt.Errorf("flip league to drafting: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventDraftStarted,
		LeagueID: draft.LeagueID,
		At:       now,
		Payload:  map[string]any{"draft_id": draft.ID, "total_picks": draft.TotalPicks()},
	})
	log.Info().Str("draft_id", draftID.String()).Msg("draft started")

	if err := a.processBotTurns(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Pause stops the pick clock without losing draft position.
func (a *App) Pause(ctx context.Context, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := a.leagues.RequireCommissioner(ctx, draft.LeagueID, actingMemberID); err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, apperrors.StateConflict(apperrors.CodeDraftNotActive,
			"draft %s is %s, pause requires IN_PROGRESS", draftID, draft.Status)
	}

	draft.Status = models.DraftStatusPaused
	draft.NextDeadline = nil
	draft, err = a.repo.UpdateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("pause draft: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventDraftPaused,
		LeagueID: draft.LeagueID,
		At:       a.clock.Now(),
		Payload:  map[string]any{"draft_id": draft.ID},
	})
	return draft, nil
}

// Resume restarts a paused draft with a full pick clock and picks up
// any pending bot turn.
func (a *App) Resume(ctx context.Context, draftID, actingMemberID uuid.UUID) (*models.Draft, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := a.leagues.RequireCommissioner(ctx, draft.LeagueID, actingMemberID); err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPaused {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"draft %s is %s, resume requires PAUSED", draftID, draft.Status)
	}

	now := a.clock.Now()
	deadline := now.Add(a.pickTime(draft))
	draft.Status = models.DraftStatusInProgress
	draft.NextDeadline = &deadline
	draft, err = a.repo.UpdateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("resume draft: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventDraftResumed,
		LeagueID: draft.LeagueID,
		At:       now,
		Payload:  map[string]any{"draft_id": draft.ID},
	})

	if err := a.processBotTurns(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// MakePick records a human pick for the on-the-clock member, then lets
// any following bot turns play out before returning.
func (a *App) MakePick(ctx context.Context, draftID, actingMemberID, playerID uuid.UUID) (*models.DraftPick, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	pick, err := a.applyPick(ctx, draft, actingMemberID, playerID, false)
	if err != nil {
		return nil, err
	}
	if err := a.processBotTurns(ctx, draft); err != nil {
		return nil, err
	}
	return pick, nil
}

// AutoPick is the pick-clock fallback: a uniform random choice among
// the available pool, attributed to whoever is on the clock. Safe to
// call after a human pick already landed; the stale attempt fails with
// a StateConflict instead of double-picking.
func (a *App) AutoPick(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error) {
	a.locks.Lock(draftID)
	defer a.locks.Unlock(draftID)

	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusInProgress {
		return nil, apperrors.StateConflict(apperrors.CodeDraftNotActive,
			"draft %s is %s", draftID, draft.Status)
	}
	if draft.NextDeadline != nil && a.clock.Now().Before(*draft.NextDeadline) {
		// A human pick landed and re-armed the clock after this expiry
		// fired. Treat the stale timer as already handled.
		return nil, apperrors.StateConflict(apperrors.CodeDraftNotActive,
			"pick clock for draft %s was re-armed", draftID)
	}

	pool, err := a.available(ctx, draft, players.SearchFilter{})
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, apperrors.Exhaustion(apperrors.CodeNoAvailablePlayers,
			"no undrafted players left in draft %s", draftID)
	}
	choice := pool[a.rng.Intn(len(pool))]

	onClock := OnTheClock(draft.Order, draft.CurrentPick)
	pick, err := a.applyPick(ctx, draft, onClock, choice.ID, true)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("draft_id", draftID.String()).
		Str("player_id", choice.ID.String()).
		Int("overall_pick", pick.OverallPick).
		Msg("auto-pick applied")

	if err := a.processBotTurns(ctx, draft); err != nil {
		return nil, err
	}
	return pick, nil
}

// applyPick validates and records one pick, advances CurrentPick, and
// completes the draft when the final pick lands. Caller holds the
// draft lock.
func (a *App) applyPick(ctx context.Context, draft *models.Draft, memberID, playerID uuid.UUID, auto bool) (*models.DraftPick, error) {
	if draft.Status != models.DraftStatusInProgress {
		return nil, apperrors.StateConflict(apperrors.CodeDraftNotActive,
			"draft %s is %s, picks require IN_PROGRESS", draft.ID, draft.Status)
	}
	if onClock := OnTheClock(draft.Order, draft.CurrentPick); memberID != onClock {
		return nil, apperrors.Authorization(apperrors.CodeNotYourTurn,
			"member %s is not on the clock for pick %d", memberID, draft.CurrentPick)
	}
	if _, err := a.players.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if _, err := a.repo.GetPickByPlayer(ctx, draft.ID, playerID); err == nil {
		return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyDrafted,
			"player %s was already drafted in draft %s", playerID, draft.ID)
	} else if apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, fmt.Errorf("check existing pick: %w", err)
	}

	now := a.clock.Now()
	teams := len(draft.Order)
	pick, err := a.repo.CreatePick(ctx, &models.DraftPick{
		ID:          uuid.New(),
		DraftID:     draft.ID,
		Round:       RoundOf(draft.CurrentPick, teams),
		Pick:        PickInRound(draft.CurrentPick, teams),
		OverallPick: draft.CurrentPick,
		MemberID:    memberID,
		PlayerID:    playerID,
		Auto:        auto,
		PickedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	draft.CurrentPick++
	if draft.CurrentPick > draft.TotalPicks() {
		return pick, a.complete(ctx, draft, now)
	}

	deadline := now.Add(a.pickTime(draft))
	draft.NextDeadline = &deadline
	if _, err := a.repo.UpdateDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("advance pick: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventDraftPick,
		LeagueID: draft.LeagueID,
		At:       now,
		Payload: map[string]any{
			"draft_id":     draft.ID,
			"member_id":    memberID,
			"player_id":    playerID,
			"overall_pick": pick.OverallPick,
			"auto":         auto,
		},
	})
	return pick, nil
}

// complete finalizes the draft, populates rosters from the recorded
// picks, and hands the league back to SETUP.
func (a *App) complete(ctx context.Context, draft *models.Draft, now time.Time) error {
	draft.Status = models.DraftStatusCompleted
	draft.CompletedAt = &now
	draft.NextDeadline = nil
	if _, err := a.repo.UpdateDraft(ctx, draft); err != nil {
		return fmt.Errorf("complete draft: %w", err)
	}

	picks, err := a.repo.ListPicks(ctx, draft.ID)
	if err != nil {
		return fmt.Errorf("list picks for population: %w", err)
	}
	if err := a.populator.PopulateRosters(ctx, draft.LeagueID, picks); err != nil {
		return fmt.Errorf("populate rosters: %w", err)
	}

	if _, err := a.leagues.UpdatePhase(ctx, draft.LeagueID, models.LeaguePhaseSetup); err != nil {
		return fmt.Errorf("flip league back to setup: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventDraftCompleted,
		LeagueID: draft.LeagueID,
		At:       now,
		Payload:  map[string]any{"draft_id": draft.ID, "total_picks": len(picks)},
	})
	log.Info().Str("draft_id", draft.ID.String()).Msg("draft completed")
	return nil
}

// processBotTurns plays out consecutive bot picks until a human is on
// the clock or the draft completes. Terminates with an Exhaustion
// error if the pool empties mid-run.
func (a *App) processBotTurns(ctx context.Context, draft *models.Draft) error {
	for draft.Status == models.DraftStatusInProgress {
		member, err := a.leagues.GetMember(ctx, OnTheClock(draft.Order, draft.CurrentPick))
		if err != nil {
			return err
		}
		if !member.IsBot {
			return nil
		}

		pool, err := a.available(ctx, draft, players.SearchFilter{})
		if err != nil {
			return err
		}
		choice := a.policy.SelectDraftPick(pool, RoundOf(draft.CurrentPick, len(draft.Order)))
		if choice == nil {
			return apperrors.Exhaustion(apperrors.CodeNoAvailablePlayers,
				"no undrafted players left for bot %s", member.ID)
		}
		if _, err := a.applyPick(ctx, draft, member.ID, choice.ID, false); err != nil {
			return err
		}
	}
	return nil
}

// AvailablePlayers returns the draftable pool: catalog matches minus
// players picked in this draft and minus players already rostered
// anywhere in the league, best ADP first.
func (a *App) AvailablePlayers(ctx context.Context, draftID uuid.UUID, filter players.SearchFilter) ([]models.Player, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return a.available(ctx, draft, filter)
}

func (a *App) available(ctx context.Context, draft *models.Draft, filter players.SearchFilter) ([]models.Player, error) {
	pool, err := a.players.SearchPlayers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}

	taken := make(map[uuid.UUID]bool)
	picks, err := a.repo.ListPicks(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	for _, p := range picks {
		taken[p.PlayerID] = true
	}
	entries, err := a.rosters.LeagueSnapshot(ctx, draft.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("league roster snapshot: %w", err)
	}
	for _, e := range entries {
		taken[e.PlayerID] = true
	}

	available := pool[:0:0]
	for _, p := range pool {
		if !taken[p.ID] {
			available = append(available, p)
		}
	}
	players.SortByADP(available)
	return available, nil
}

// GetDraft retrieves a draft by ID.
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return a.repo.GetDraft(ctx, id)
}

// GetDraftByLeague retrieves a league's draft.
func (a *App) GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	return a.repo.GetDraftByLeague(ctx, leagueID)
}

// ListPicks returns a draft's picks in overall-pick order.
func (a *App) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	return a.repo.ListPicks(ctx, draftID)
}

// NextDeadline surfaces the scheduler queries without widening the
// repository's consumers.
func (a *App) NextDeadline(ctx context.Context) (*NextDeadline, error) {
	return a.repo.FetchNextDeadline(ctx)
}

// DraftsDue lists in-progress drafts whose pick clock has expired.
func (a *App) DraftsDue(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return a.repo.ListDraftsDue(ctx, a.clock.Now(), limit)
}

func (a *App) pickTime(draft *models.Draft) time.Duration {
	return time.Duration(draft.TimePerPickSec) * time.Second
}

func (a *App) publish(ctx context.Context, event notify.Event) {
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("failed to publish event")
	}
}
