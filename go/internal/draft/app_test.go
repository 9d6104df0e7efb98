package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/population"
	"github.com/huddlehq/huddle/go/internal/roster"
)

type fixture struct {
	app     *App
	repo    *MemoryRepository
	leagues *leagues.App
	catalog *players.MemoryRepository
	rosters *roster.App
	clock   *clockwork.FakeClock
	sink    *notify.MemorySink

	league  *models.League
	members []models.Member // index 0 is the commissioner
}

// newFixture builds a full league: one human commissioner, then
// numHumans-1 more humans, then bots up to numTeams.
func newFixture(t *testing.T, numTeams, numHumans int, settings models.RosterSettings) *fixture {
	t.Helper()
	ctx := context.Background()

	rng := rand.New(rand.NewSource(99))
	leagueApp := leagues.NewApp(leagues.NewMemoryRepository(), rng)
	catalog := players.NewMemoryRepository()
	rosterApp := roster.NewApp(roster.NewMemoryRepository(), leagueApp, catalog, locks.NewKeyed())
	populator := population.NewApp(leagueApp, catalog, rosterApp)
	repo := NewMemoryRepository()
	clock := clockwork.NewFakeClock()
	sink := notify.NewMemorySink()

	app := NewApp(repo, leagueApp, catalog, rosterApp, populator,
		bot.NewPolicy(rng), sink, locks.NewKeyed(), rng, clock)

	league, err := leagueApp.CreateLeague(ctx, leagues.CreateLeagueRequest{
		Name:           "Test League",
		NumTeams:       numTeams,
		RosterSettings: settings,
		TimePerPickSec: 60,
		CommissionerID: uuid.New(),
		TeamName:       "Team 1",
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}

	for i := 1; i < numHumans; i++ {
		if _, err := leagueApp.JoinByCode(ctx, league.JoinCode, uuid.New(), fmt.Sprintf("Team %d", i+1)); err != nil {
			t.Fatalf("join league: %v", err)
		}
	}

	members, err := leagueApp.ListMembers(ctx, league.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	commissioner := members[0]
	for i := numHumans; i < numTeams; i++ {
		if _, err := leagueApp.AddBot(ctx, league.ID, commissioner.ID, fmt.Sprintf("Bot %d", i+1)); err != nil {
			t.Fatalf("add bot: %v", err)
		}
	}

	members, err = leagueApp.ListMembers(ctx, league.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}

	return &fixture{
		app:     app,
		repo:    repo,
		leagues: leagueApp,
		catalog: catalog,
		rosters: rosterApp,
		clock:   clock,
		sink:    sink,
		league:  league,
		members: members,
	}
}

func (f *fixture) commissioner() *models.Member { return &f.members[0] }

// seedPool loads n players with ascending ADP, cycling positions so
// every roster slot can be satisfied.
func (f *fixture) seedPool(n int) {
	positions := []models.Position{
		models.PositionQB, models.PositionRB, models.PositionWR,
		models.PositionTE, models.PositionK, models.PositionDEF,
	}
	list := make([]models.Player, n)
	for i := range list {
		rank := float64(i + 1)
		list[i] = models.Player{
			ID:       uuid.New(),
			FullName: fmt.Sprintf("Player %03d", i+1),
			Position: positions[i%len(positions)],
			NFLTeam:  "GB",
			ADP:      &rank,
		}
	}
	f.catalog.Seed(list)
}

// setOrder forces a deterministic draft order.
func (f *fixture) setOrder(t *testing.T, draftID uuid.UUID, order []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	draft, err := f.repo.GetDraft(ctx, draftID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	draft.Order = order
	if _, err := f.repo.UpdateDraft(ctx, draft); err != nil {
		t.Fatalf("update draft order: %v", err)
	}
}

func defaultSettings() models.RosterSettings {
	return models.RosterSettings{QB: 1, RB: 1, WR: 1, Bench: 3}
}

func TestSetupValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())

	// Non-commissioner cannot set up.
	if _, err := f.app.Setup(ctx, f.league.ID, f.members[1].ID, 3, nil); !apperrors.IsCode(err, apperrors.CodeNotCommissioner) {
		t.Fatalf("expected NOT_COMMISSIONER, got %v", err)
	}

	// Rounds must fit the roster.
	total := f.league.RosterSettings.TotalSlots()
	if _, err := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, total+1, nil); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for oversized rounds, got %v", err)
	}

	draft, err := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if draft.Status != models.DraftStatusScheduled || draft.CurrentPick != 1 {
		t.Fatalf("unexpected new draft state: %s pick %d", draft.Status, draft.CurrentPick)
	}
	if len(draft.Order) != 4 {
		t.Fatalf("expected 4-member order, got %d", len(draft.Order))
	}

	// Second draft for the same league is rejected.
	if _, err := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil); apperrors.KindOf(err) != apperrors.KindStateConflict {
		t.Fatalf("expected conflict on duplicate draft, got %v", err)
	}
}

func TestSetupRequiresFullLeague(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())

	// A second league with three empty seats.
	league, err := f.leagues.CreateLeague(ctx, leagues.CreateLeagueRequest{
		Name:           "Short League",
		NumTeams:       4,
		RosterSettings: defaultSettings(),
		TimePerPickSec: 60,
		CommissionerID: uuid.New(),
		TeamName:       "Solo",
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	members, _ := f.leagues.ListMembers(ctx, league.ID)

	if _, err := f.app.Setup(ctx, league.ID, members[0].ID, 3, nil); !apperrors.IsCode(err, apperrors.CodeWrongPhase) {
		t.Fatalf("expected WRONG_PHASE for not-full league, got %v", err)
	}
}

// phaseFlipFailer fails every league phase transition while delegating
// everything else to the real league app.
type phaseFlipFailer struct {
	*leagues.App
}

func (p *phaseFlipFailer) UpdatePhase(_ context.Context, _ uuid.UUID, _ models.LeaguePhase) (*models.League, error) {
	return nil, errors.New("phase store unavailable")
}

func TestStartRollsBackWhenPhaseUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(24)

	draft, err := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	failing := NewApp(f.repo, &phaseFlipFailer{f.leagues}, f.catalog, f.rosters,
		population.NewApp(f.leagues, f.catalog, f.rosters),
		bot.NewPolicy(rand.New(rand.NewSource(99))), f.sink, locks.NewKeyed(),
		rand.New(rand.NewSource(99)), f.clock)

	if _, err := failing.Start(ctx, draft.ID, f.commissioner().ID); err == nil {
		t.Fatal("expected Start to fail when the phase update fails")
	}

	// The draft is back in SCHEDULED with no clock running.
	stored, err := f.repo.GetDraft(ctx, draft.ID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if stored.Status != models.DraftStatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", stored.Status)
	}
	if stored.StartedAt != nil || stored.NextDeadline != nil {
		t.Fatalf("timestamps not cleared: started=%v deadline=%v", stored.StartedAt, stored.NextDeadline)
	}

	// A later Start against the healthy league app succeeds.
	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("retry start: %v", err)
	}
}

func TestDraftCompletionFourTeamsThreeRounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(20)

	draft, err := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	order := []uuid.UUID{f.members[0].ID, f.members[1].ID, f.members[2].ID, f.members[3].ID}
	f.setOrder(t, draft.ID, order)

	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	league, _ := f.leagues.GetLeague(ctx, f.league.ID)
	if league.Phase != models.LeaguePhaseDrafting {
		t.Fatalf("expected DRAFTING phase, got %s", league.Phase)
	}

	wantTurns := []uuid.UUID{
		order[0], order[1], order[2], order[3],
		order[3], order[2], order[1], order[0],
		order[0], order[1], order[2], order[3],
	}

	lastPick := 0
	for overall := 1; overall <= 12; overall++ {
		current, err := f.app.GetDraft(ctx, draft.ID)
		if err != nil {
			t.Fatalf("get draft: %v", err)
		}
		if current.CurrentPick != overall {
			t.Fatalf("pick %d: CurrentPick = %d", overall, current.CurrentPick)
		}

		onClock := OnTheClock(current.Order, current.CurrentPick)
		if onClock != wantTurns[overall-1] {
			t.Fatalf("pick %d: wrong member on the clock", overall)
		}

		pool, err := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})
		if err != nil {
			t.Fatalf("available players: %v", err)
		}
		pick, err := f.app.MakePick(ctx, draft.ID, onClock, pool[0].ID)
		if err != nil {
			t.Fatalf("pick %d: %v", overall, err)
		}
		if pick.OverallPick <= lastPick {
			t.Fatalf("pick numbers regressed: %d after %d", pick.OverallPick, lastPick)
		}
		lastPick = pick.OverallPick
	}

	final, _ := f.app.GetDraft(ctx, draft.ID)
	if final.Status != models.DraftStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
	if final.CompletedAt == nil || final.NextDeadline != nil {
		t.Fatal("completed draft should have a completion time and no deadline")
	}

	// Rosters are populated and the league is handed back to setup.
	league, _ = f.leagues.GetLeague(ctx, f.league.ID)
	if league.Phase != models.LeaguePhaseSetup {
		t.Fatalf("expected SETUP phase after completion, got %s", league.Phase)
	}
	for _, m := range f.members {
		entries, err := f.rosters.Snapshot(ctx, m.ID)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("member %s has %d roster entries, want 3", m.TeamName, len(entries))
		}
	}

	if got := len(f.sink.OfType(notify.EventDraftCompleted)); got != 1 {
		t.Fatalf("expected 1 draft.completed event, got %d", got)
	}
}

func TestMakePickRejectsWrongTurnAndTakenPlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(20)

	draft, _ := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	order := []uuid.UUID{f.members[0].ID, f.members[1].ID, f.members[2].ID, f.members[3].ID}
	f.setOrder(t, draft.ID, order)
	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	pool, _ := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})

	// Member 2 is not on the clock for pick 1.
	if _, err := f.app.MakePick(ctx, draft.ID, order[1], pool[0].ID); !apperrors.IsCode(err, apperrors.CodeNotYourTurn) {
		t.Fatalf("expected NOT_YOUR_TURN, got %v", err)
	}

	if _, err := f.app.MakePick(ctx, draft.ID, order[0], pool[0].ID); err != nil {
		t.Fatalf("pick 1: %v", err)
	}

	// Same player again is rejected for the next member.
	if _, err := f.app.MakePick(ctx, draft.ID, order[1], pool[0].ID); !apperrors.IsCode(err, apperrors.CodePlayerAlreadyDrafted) {
		t.Fatalf("expected PLAYER_ALREADY_DRAFTED, got %v", err)
	}
}

func TestAutoPickRaceLeavesExactlyOnePick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(20)

	draft, _ := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	order := []uuid.UUID{f.members[0].ID, f.members[1].ID, f.members[2].ID, f.members[3].ID}
	f.setOrder(t, draft.ID, order)
	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	pool, _ := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})
	if _, err := f.app.MakePick(ctx, draft.ID, order[0], pool[0].ID); err != nil {
		t.Fatalf("human pick: %v", err)
	}

	// The pick clock was re-armed by the human pick, so the stale
	// expiry must not land a second pick.
	if _, err := f.app.AutoPick(ctx, draft.ID); apperrors.KindOf(err) != apperrors.KindStateConflict {
		t.Fatalf("expected conflict from stale auto-pick, got %v", err)
	}

	picks, _ := f.app.ListPicks(ctx, draft.ID)
	count := 0
	for _, p := range picks {
		if p.OverallPick == 1 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one pick at 1, got %d", count)
	}
}

func TestAutoPickFiresAfterDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(20)

	draft, _ := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	order := []uuid.UUID{f.members[0].ID, f.members[1].ID, f.members[2].ID, f.members[3].ID}
	f.setOrder(t, draft.ID, order)
	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.Advance(61 * time.Second)

	pick, err := f.app.AutoPick(ctx, draft.ID)
	if err != nil {
		t.Fatalf("auto-pick: %v", err)
	}
	if !pick.Auto {
		t.Fatal("expected pick to carry the auto flag")
	}
	if pick.MemberID != order[0] {
		t.Fatal("auto-pick attributed to the wrong member")
	}

	current, _ := f.app.GetDraft(ctx, draft.ID)
	if current.CurrentPick != 2 {
		t.Fatalf("expected CurrentPick 2 after auto-pick, got %d", current.CurrentPick)
	}
}

func TestBotTurnsPlayOutBetweenHumanPicks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 1, defaultSettings()) // one human, three bots
	f.seedPool(20)

	human := f.commissioner().ID
	var bots []uuid.UUID
	for _, m := range f.members {
		if m.IsBot {
			bots = append(bots, m.ID)
		}
	}

	draft, err := f.app.Setup(ctx, f.league.ID, human, 3, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	f.setOrder(t, draft.ID, []uuid.UUID{bots[0], bots[1], bots[2], human})

	// Start plays the three leading bot picks.
	if _, err := f.app.Start(ctx, draft.ID, human); err != nil {
		t.Fatalf("start: %v", err)
	}
	picks, _ := f.app.ListPicks(ctx, draft.ID)
	if len(picks) != 3 {
		t.Fatalf("expected 3 bot picks after start, got %d", len(picks))
	}

	current, _ := f.app.GetDraft(ctx, draft.ID)
	if OnTheClock(current.Order, current.CurrentPick) != human {
		t.Fatal("expected human on the clock after bot run")
	}

	// Human owns picks 4 (round 1 tail) and 5 (round 2 head, snake).
	for i := 0; i < 2; i++ {
		pool, _ := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})
		if _, err := f.app.MakePick(ctx, draft.ID, human, pool[0].ID); err != nil {
			t.Fatalf("human pick: %v", err)
		}
	}

	// Bots take picks 6 through 11, leaving the human the final pick.
	picks, _ = f.app.ListPicks(ctx, draft.ID)
	if len(picks) != 11 {
		t.Fatalf("expected 11 picks, got %d", len(picks))
	}

	pool, _ := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})
	if _, err := f.app.MakePick(ctx, draft.ID, human, pool[0].ID); err != nil {
		t.Fatalf("final pick: %v", err)
	}

	final, _ := f.app.GetDraft(ctx, draft.ID)
	if final.Status != models.DraftStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
}

func TestBotTurnWithEmptyPoolSurfacesExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 1, defaultSettings()) // bots will be on the clock first

	human := f.commissioner().ID
	var bots []uuid.UUID
	for _, m := range f.members {
		if m.IsBot {
			bots = append(bots, m.ID)
		}
	}

	draft, err := f.app.Setup(ctx, f.league.ID, human, 3, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	f.setOrder(t, draft.ID, []uuid.UUID{bots[0], bots[1], bots[2], human})

	if _, err := f.app.Start(ctx, draft.ID, human); !apperrors.IsCode(err, apperrors.CodeNoAvailablePlayers) {
		t.Fatalf("expected NO_AVAILABLE_PLAYERS, got %v", err)
	}
}

func TestPauseAndResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, 4, defaultSettings())
	f.seedPool(20)

	draft, _ := f.app.Setup(ctx, f.league.ID, f.commissioner().ID, 3, nil)
	order := []uuid.UUID{f.members[0].ID, f.members[1].ID, f.members[2].ID, f.members[3].ID}
	f.setOrder(t, draft.ID, order)
	if _, err := f.app.Start(ctx, draft.ID, f.commissioner().ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	paused, err := f.app.Pause(ctx, draft.ID, f.commissioner().ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != models.DraftStatusPaused || paused.NextDeadline != nil {
		t.Fatalf("unexpected paused state: %s deadline=%v", paused.Status, paused.NextDeadline)
	}

	pool, _ := f.app.AvailablePlayers(ctx, draft.ID, players.SearchFilter{})
	if _, err := f.app.MakePick(ctx, draft.ID, order[0], pool[0].ID); !apperrors.IsCode(err, apperrors.CodeDraftNotActive) {
		t.Fatalf("expected DRAFT_NOT_ACTIVE while paused, got %v", err)
	}

	resumed, err := f.app.Resume(ctx, draft.ID, f.commissioner().ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != models.DraftStatusInProgress || resumed.NextDeadline == nil {
		t.Fatal("resume should re-arm the pick clock")
	}

	if _, err := f.app.MakePick(ctx, draft.ID, order[0], pool[0].ID); err != nil {
		t.Fatalf("pick after resume: %v", err)
	}
}
