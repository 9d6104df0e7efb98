package roster

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/leagues"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/players"
)

type fixture struct {
	app      *App
	league   *models.League
	memberID uuid.UUID
	catalog  *players.MemoryRepository
}

func adp(v float64) *float64 { return &v }

func newFixture(t *testing.T, catalog []models.Player) *fixture {
	t.Helper()
	ctx := context.Background()

	leagueRepo := leagues.NewMemoryRepository()
	league, err := leagueRepo.CreateLeague(ctx, &models.League{
		ID:             uuid.New(),
		Name:           "test league",
		NumTeams:       4,
		Phase:          models.LeaguePhaseSetup,
		RosterSettings: models.DefaultRosterSettings(),
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}

	playerRepo := players.NewMemoryRepository()
	playerRepo.Seed(catalog)

	member, err := leagueRepo.CreateMember(ctx, &models.Member{
		ID:       uuid.New(),
		LeagueID: league.ID,
		TeamName: "testers",
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	app := NewApp(NewMemoryRepository(), leagueRepo, playerRepo, locks.NewKeyed())
	return &fixture{app: app, league: league, memberID: member.ID, catalog: playerRepo}
}

func TestPlaceRejectsOccupiedSlotAndDoubleOwnership(t *testing.T) {
	ctx := context.Background()
	rb1 := models.Player{ID: uuid.New(), FullName: "Back One", Position: models.PositionRB, ADP: adp(1)}
	rb2 := models.Player{ID: uuid.New(), FullName: "Back Two", Position: models.PositionRB, ADP: adp(2)}
	fx := newFixture(t, []models.Player{rb1, rb2})

	if _, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rb1.ID, "RB1", models.AcquisitionTypeDraft); err != nil {
		t.Fatalf("first place: %v", err)
	}

	_, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rb2.ID, "RB1", models.AcquisitionTypeDraft)
	if !apperrors.IsCode(err, apperrors.CodeSlotOccupied) {
		t.Fatalf("occupied slot: got %v, want SLOT_OCCUPIED", err)
	}

	_, err = fx.app.Place(ctx, fx.league.ID, fx.memberID, rb1.ID, "RB2", models.AcquisitionTypeDraft)
	if !apperrors.IsCode(err, apperrors.CodePlayerAlreadyOwned) {
		t.Fatalf("double ownership: got %v, want PLAYER_ALREADY_OWNED", err)
	}
}

func TestRemoveMissingEntryIsNotFound(t *testing.T) {
	fx := newFixture(t, nil)
	err := fx.app.Remove(context.Background(), uuid.New())
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("got %v, want NotFound kind", err)
	}
}

func TestRelocateEnforcesEligibility(t *testing.T) {
	ctx := context.Background()
	qb := models.Player{ID: uuid.New(), FullName: "Arm Guy", Position: models.PositionQB, ADP: adp(5)}
	fx := newFixture(t, []models.Player{qb})

	entry, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, qb.ID, "QB", models.AcquisitionTypeDraft)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	cases := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"QB into RB slot", "RB1", apperrors.CodeIneligiblePosition},
		{"QB into FLEX", "FLEX", apperrors.CodeIneligiblePosition},
		{"healthy QB into IR", "IR", apperrors.CodeIneligiblePosition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.app.Relocate(ctx, entry.ID, tc.target)
			if !apperrors.IsCode(err, tc.wantCode) {
				t.Fatalf("got %v, want %s", err, tc.wantCode)
			}
		})
	}

	// Bench accepts anyone.
	moved, err := fx.app.Relocate(ctx, entry.ID, "BN1")
	if err != nil {
		t.Fatalf("relocate to bench: %v", err)
	}
	if moved.Slot != "BN1" {
		t.Fatalf("slot = %s, want BN1", moved.Slot)
	}
}

func TestMovePlayerSwapsOccupiedSlot(t *testing.T) {
	ctx := context.Background()
	rbA := models.Player{ID: uuid.New(), FullName: "Starter Back", Position: models.PositionRB, ADP: adp(3)}
	rbB := models.Player{ID: uuid.New(), FullName: "Bench Back", Position: models.PositionRB, ADP: adp(40)}
	fx := newFixture(t, []models.Player{rbA, rbB})

	starter, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rbA.ID, "RB1", models.AcquisitionTypeDraft)
	if err != nil {
		t.Fatalf("place starter: %v", err)
	}
	benched, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rbB.ID, "BN1", models.AcquisitionTypeDraft)
	if err != nil {
		t.Fatalf("place bench: %v", err)
	}

	if err := fx.app.MovePlayer(ctx, fx.memberID, benched.ID, "RB1"); err != nil {
		t.Fatalf("swap move: %v", err)
	}

	after, _ := fx.app.GetEntry(ctx, benched.ID)
	if after.Slot != "RB1" {
		t.Fatalf("mover slot = %s, want RB1", after.Slot)
	}
	displaced, _ := fx.app.GetEntry(ctx, starter.ID)
	if displaced.Slot != "BN1" {
		t.Fatalf("occupant slot = %s, want BN1", displaced.Slot)
	}
}

func TestMovePlayerFailedSwapLeavesRosterUnchanged(t *testing.T) {
	ctx := context.Background()
	qb := models.Player{ID: uuid.New(), FullName: "Arm Guy", Position: models.PositionQB, ADP: adp(5)}
	rb := models.Player{ID: uuid.New(), FullName: "Back Guy", Position: models.PositionRB, ADP: adp(2)}
	fx := newFixture(t, []models.Player{qb, rb})

	qbEntry, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, qb.ID, "QB", models.AcquisitionTypeDraft)
	if err != nil {
		t.Fatalf("place qb: %v", err)
	}
	rbEntry, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rb.ID, "BN1", models.AcquisitionTypeDraft)
	if err != nil {
		t.Fatalf("place rb: %v", err)
	}

	before := snapshotSlots(t, fx, ctx)

	// RB wants QB's slot: the RB is ineligible for QB, so this fails on
	// the mover's own eligibility first.
	err = fx.app.MovePlayer(ctx, fx.memberID, rbEntry.ID, "QB")
	if !apperrors.IsCode(err, apperrors.CodeIneligiblePosition) {
		t.Fatalf("got %v, want INELIGIBLE_POSITION", err)
	}

	// Move QB onto the RB's bench slot is legal (bench takes anyone) but
	// the displaced RB cannot backfill the QB slot, so it must fail as a
	// swap and change nothing.
	err = fx.app.MovePlayer(ctx, fx.memberID, qbEntry.ID, "BN1")
	if !apperrors.IsCode(err, apperrors.CodeIneligibleSwap) {
		t.Fatalf("got %v, want INELIGIBLE_SWAP", err)
	}

	after := snapshotSlots(t, fx, ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("roster changed on failed swap: before=%v after=%v", before, after)
	}
}

func TestFirstOpenSlot(t *testing.T) {
	ctx := context.Background()
	rb := models.Player{ID: uuid.New(), FullName: "Back Guy", Position: models.PositionRB, ADP: adp(2)}
	fx := newFixture(t, []models.Player{rb})

	slots := []string{"BN1", "BN2", "BN3"}
	got, err := fx.app.FirstOpenSlot(ctx, fx.memberID, slots)
	if err != nil || got != "BN1" {
		t.Fatalf("FirstOpenSlot = %q, %v; want BN1", got, err)
	}

	if _, err := fx.app.Place(ctx, fx.league.ID, fx.memberID, rb.ID, "BN1", models.AcquisitionTypeFreeAgent); err != nil {
		t.Fatalf("place: %v", err)
	}
	got, err = fx.app.FirstOpenSlot(ctx, fx.memberID, slots)
	if err != nil || got != "BN2" {
		t.Fatalf("FirstOpenSlot = %q, %v; want BN2", got, err)
	}

	got, err = fx.app.FirstOpenSlot(ctx, fx.memberID, []string{"BN1"})
	if err != nil || got != "" {
		t.Fatalf("FirstOpenSlot on full set = %q, %v; want empty", got, err)
	}
}

func snapshotSlots(t *testing.T, fx *fixture, ctx context.Context) []string {
	t.Helper()
	entries, err := fx.app.Snapshot(ctx, fx.memberID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	slots := make([]string, 0, len(entries))
	for _, e := range entries {
		slots = append(slots, e.PlayerID.String()+"@"+e.Slot)
	}
	sort.Strings(slots)
	return slots
}
