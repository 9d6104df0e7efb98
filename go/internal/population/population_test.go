package population

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/roster"
)

type fixture struct {
	app     *App
	rosters *roster.App
	league  *models.League
	member  *models.Member
	catalog *players.MemoryRepository
	seeded  []models.Player
}

func newFixture(t *testing.T, settings models.RosterSettings) *fixture {
	t.Helper()
	ctx := context.Background()

	leagueApp := leagues.NewApp(leagues.NewMemoryRepository(), rand.New(rand.NewSource(7)))
	catalog := players.NewMemoryRepository()
	rosterApp := roster.NewApp(roster.NewMemoryRepository(), leagueApp, catalog, locks.NewKeyed())

	league, err := leagueApp.CreateLeague(ctx, leagues.CreateLeagueRequest{
		Name:           "Populate Test",
		NumTeams:       2,
		RosterSettings: settings,
		TimePerPickSec: 60,
		CommissionerID: uuid.New(),
		TeamName:       "Commish",
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	members, err := leagueApp.ListMembers(ctx, league.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}

	return &fixture{
		app:     NewApp(leagueApp, catalog, rosterApp),
		rosters: rosterApp,
		league:  league,
		member:  &members[0],
		catalog: catalog,
	}
}

func seedPlayer(f *fixture, pos models.Position) models.Player {
	p := models.Player{ID: uuid.New(), FullName: string(pos) + " " + uuid.NewString()[:4], Position: pos, NFLTeam: "SF"}
	f.seeded = append(f.seeded, p)
	f.catalog.Seed(f.seeded)
	return p
}

func pickFor(f *fixture, overall int, playerID uuid.UUID) models.DraftPick {
	return models.DraftPick{
		ID:          uuid.New(),
		DraftID:     uuid.New(),
		Round:       overall,
		Pick:        1,
		OverallPick: overall,
		MemberID:    f.member.ID,
		PlayerID:    playerID,
	}
}

func TestPopulateRostersStartersThenBench(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1, RB: 1, Bench: 1})

	qb := seedPlayer(f, models.PositionQB)
	rb1 := seedPlayer(f, models.PositionRB)
	rb2 := seedPlayer(f, models.PositionRB)

	picks := []models.DraftPick{
		pickFor(f, 1, qb.ID),
		pickFor(f, 2, rb1.ID),
		pickFor(f, 3, rb2.ID),
	}

	if err := f.app.PopulateRosters(ctx, f.league.ID, picks); err != nil {
		t.Fatalf("populate: %v", err)
	}

	entries, err := f.rosters.Snapshot(ctx, f.member.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	slots := map[uuid.UUID]string{}
	for _, e := range entries {
		slots[e.PlayerID] = e.Slot
		if e.AcquisitionType != models.AcquisitionTypeDraft {
			t.Fatalf("expected DRAFT acquisition, got %s", e.AcquisitionType)
		}
	}
	if slots[qb.ID] != "QB" {
		t.Fatalf("QB placed in %q", slots[qb.ID])
	}
	if slots[rb1.ID] != "RB" {
		t.Fatalf("first RB placed in %q", slots[rb1.ID])
	}
	if slots[rb2.ID] != "BN" {
		t.Fatalf("overflow RB placed in %q, want bench", slots[rb2.ID])
	}
}

func TestPopulateRostersFlexCatchesThirdRB(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{RB: 2, Flex: 1, Bench: 1})

	rbs := []models.Player{
		seedPlayer(f, models.PositionRB),
		seedPlayer(f, models.PositionRB),
		seedPlayer(f, models.PositionRB),
	}

	picks := make([]models.DraftPick, len(rbs))
	for i, rb := range rbs {
		picks[i] = pickFor(f, i+1, rb.ID)
	}

	if err := f.app.PopulateRosters(ctx, f.league.ID, picks); err != nil {
		t.Fatalf("populate: %v", err)
	}

	entries, _ := f.rosters.Snapshot(ctx, f.member.ID)
	got := map[string]bool{}
	for _, e := range entries {
		got[e.Slot] = true
	}
	for _, want := range []string{"RB1", "RB2", "FLEX"} {
		if !got[want] {
			t.Fatalf("expected slot %s filled, have %v", want, got)
		}
	}
}

func TestPopulateRostersSkipsUnplaceablePick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.RosterSettings{QB: 1})

	qb1 := seedPlayer(f, models.PositionQB)
	qb2 := seedPlayer(f, models.PositionQB)

	picks := []models.DraftPick{
		pickFor(f, 1, qb1.ID),
		pickFor(f, 2, qb2.ID), // no starter or bench slot left
	}

	if err := f.app.PopulateRosters(ctx, f.league.ID, picks); err != nil {
		t.Fatalf("populate: %v", err)
	}

	entries, _ := f.rosters.Snapshot(ctx, f.member.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 placed entry, got %d", len(entries))
	}
	if entries[0].PlayerID != qb1.ID {
		t.Fatalf("wrong player placed: %s", entries[0].PlayerID)
	}
}
