package freeagent

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/roster"
)

type fixture struct {
	app     *App
	leagues *leagues.App
	catalog *players.MemoryRepository
	rosters *roster.App
	sink    *notify.MemorySink

	league  *models.League
	members []models.Member
	seeded  []models.Player
}

func newFixture(t *testing.T, settings models.RosterSettings) *fixture {
	t.Helper()
	ctx := context.Background()

	rng := rand.New(rand.NewSource(11))
	keyed := locks.NewKeyed()
	leagueApp := leagues.NewApp(leagues.NewMemoryRepository(), rng)
	catalog := players.NewMemoryRepository()
	rosterApp := roster.NewApp(roster.NewMemoryRepository(), leagueApp, catalog, keyed)
	sink := notify.NewMemorySink()

	app := NewApp(leagueApp, rosterApp, catalog, bot.NewPolicy(rng), sink,
		keyed, clockwork.NewFakeClock())

	league, err := leagueApp.CreateLeague(ctx, leagues.CreateLeagueRequest{
		Name:           "Waiver Wire League",
		NumTeams:       2,
		RosterSettings: settings,
		TimePerPickSec: 60,
		CommissionerID: uuid.New(),
		TeamName:       "Team 1",
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if _, err := leagueApp.AddBot(ctx, league.ID, mustCommissioner(t, leagueApp, league.ID), "Bot 2"); err != nil {
		t.Fatalf("add bot: %v", err)
	}
	members, _ := leagueApp.ListMembers(ctx, league.ID)

	return &fixture{
		app:     app,
		leagues: leagueApp,
		catalog: catalog,
		rosters: rosterApp,
		sink:    sink,
		league:  league,
		members: members,
	}
}

func mustCommissioner(t *testing.T, app *leagues.App, leagueID uuid.UUID) uuid.UUID {
	t.Helper()
	members, err := app.ListMembers(context.Background(), leagueID)
	if err != nil || len(members) == 0 {
		t.Fatalf("list members: %v", err)
	}
	return members[0].ID
}

func (f *fixture) seed(t *testing.T, name string, pos models.Position, adpValue float64) models.Player {
	t.Helper()
	adp := adpValue
	p := models.Player{
		ID:       uuid.New(),
		FullName: name,
		Position: pos,
		NFLTeam:  "PHI",
		ADP:      &adp,
	}
	f.seeded = append(f.seeded, p)
	f.catalog.Seed(f.seeded)
	return p
}

func TestPickupLandsOnFirstOpenBenchSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 2})
	member := f.members[0].ID
	wr := f.seed(t, "Slot Receiver", models.PositionWR, 40)

	entry, err := f.app.Pickup(ctx, f.league.ID, member, wr.ID)
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if entry.Slot != "BN1" {
		t.Errorf("slot = %q, want BN1", entry.Slot)
	}
	if entry.AcquisitionType != models.AcquisitionTypeFreeAgent {
		t.Errorf("acquisition = %q, want FREE_AGENT", entry.AcquisitionType)
	}
	if got := len(f.sink.OfType(notify.EventFreeAgentPickup)); got != 1 {
		t.Errorf("pickup events = %d, want 1", got)
	}
}

func TestPickupRejectsOwnedPlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 2})
	holder, rival := f.members[0].ID, f.members[1].ID
	wr := f.seed(t, "Contested Receiver", models.PositionWR, 12)

	if _, err := f.app.Pickup(ctx, f.league.ID, holder, wr.ID); err != nil {
		t.Fatalf("first pickup: %v", err)
	}
	_, err := f.app.Pickup(ctx, f.league.ID, rival, wr.ID)
	if !apperrors.IsCode(err, apperrors.CodePlayerAlreadyOwned) {
		t.Fatalf("err = %v, want PLAYER_ALREADY_OWNED", err)
	}
}

func TestPickupRejectsFullBench(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 1})
	member := f.members[0].ID

	first := f.seed(t, "Bench Filler", models.PositionRB, 30)
	if _, err := f.app.Pickup(ctx, f.league.ID, member, first.ID); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	second := f.seed(t, "One Too Many", models.PositionRB, 31)
	_, err := f.app.Pickup(ctx, f.league.ID, member, second.ID)
	if !apperrors.IsCode(err, apperrors.CodeInsufficientRosterSpace) {
		t.Fatalf("err = %v, want INSUFFICIENT_ROSTER_SPACE", err)
	}
}

func TestDropIsHolderOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 2})
	holder, rival := f.members[0].ID, f.members[1].ID
	wr := f.seed(t, "Droppable Receiver", models.PositionWR, 80)

	entry, err := f.app.Pickup(ctx, f.league.ID, holder, wr.ID)
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}

	if err := f.app.Drop(ctx, f.league.ID, rival, entry.ID); !apperrors.IsCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("rival drop err = %v, want NOT_OWNER", err)
	}
	if err := f.app.Drop(ctx, f.league.ID, holder, entry.ID); err != nil {
		t.Fatalf("holder drop: %v", err)
	}
	if _, err := f.rosters.Owner(ctx, f.league.ID, wr.ID); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("owner after drop err = %v, want not found", err)
	}
	if got := len(f.sink.OfType(notify.EventFreeAgentDrop)); got != 1 {
		t.Errorf("drop events = %d, want 1", got)
	}
}

func TestAvailableExcludesRosteredPlayers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 3})
	member := f.members[0].ID

	taken := f.seed(t, "Taken Back", models.PositionRB, 1)
	free1 := f.seed(t, "Free Back", models.PositionRB, 5)
	free2 := f.seed(t, "Deep Sleeper", models.PositionRB, 90)
	if _, err := f.app.Pickup(ctx, f.league.ID, member, taken.ID); err != nil {
		t.Fatalf("pickup: %v", err)
	}

	pool, err := f.app.Available(ctx, f.league.ID, players.SearchFilter{})
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool size = %d, want 2", len(pool))
	}
	if pool[0].ID != free1.ID || pool[1].ID != free2.ID {
		t.Errorf("pool not sorted by ADP: got %s, %s", pool[0].FullName, pool[1].FullName)
	}
}

func TestAutofillBenchTakesBestAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, Bench: 2})
	botMember := f.members[1]
	if !botMember.IsBot {
		t.Fatalf("fixture member 1 is not a bot")
	}

	for i := 0; i < 4; i++ {
		f.seed(t, fmt.Sprintf("Pool Player %d", i+1), models.PositionWR, float64(10+i))
	}

	entries, err := f.app.AutofillBench(ctx, f.league.ID, botMember.ID)
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	snapshot, _ := f.rosters.Snapshot(ctx, botMember.ID)
	if len(snapshot) != 2 {
		t.Errorf("roster size = %d, want 2", len(snapshot))
	}

	// Humans do not get autofilled.
	if _, err := f.app.AutofillBench(ctx, f.league.ID, f.members[0].ID); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("human autofill err = %v, want INVALID_ARGUMENT", err)
	}
}
