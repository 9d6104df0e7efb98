package leagues

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

func newTestApp() *App {
	return NewApp(NewMemoryRepository(), rand.New(rand.NewSource(5)))
}

func mustCreate(t *testing.T, app *App, numTeams int) *models.League {
	t.Helper()
	league, err := app.CreateLeague(context.Background(), CreateLeagueRequest{
		Name:           "Test League",
		NumTeams:       numTeams,
		RosterSettings: models.RosterSettings{QB: 1, Bench: 2},
		TimePerPickSec: 30,
		CommissionerID: uuid.New(),
		TeamName:       "Commish",
	})
	if err != nil {
		t.Fatalf("CreateLeague: %v", err)
	}
	return league
}

func TestCreateLeagueSeedsCommissioner(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	league := mustCreate(t, app, 4)
	if league.Phase != models.LeaguePhaseSetup {
		t.Errorf("phase = %s, want SETUP", league.Phase)
	}
	if len(league.JoinCode) != 6 {
		t.Errorf("join code = %q, want 6 characters", league.JoinCode)
	}

	members, err := app.ListMembers(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || !members[0].IsCommissioner {
		t.Fatalf("members = %+v, want single commissioner", members)
	}
}

func TestCreateLeagueValidation(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateLeagueRequest
	}{
		{"missing name", CreateLeagueRequest{NumTeams: 4, CommissionerID: uuid.New()}},
		{"one team", CreateLeagueRequest{Name: "Solo", NumTeams: 1, CommissionerID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.CreateLeague(ctx, tt.req)
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestJoinByCodeFillsLeague(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()
	league := mustCreate(t, app, 2)

	member, err := app.JoinByCode(ctx, league.JoinCode, uuid.New(), "Rival")
	if err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	if member.LeagueID != league.ID || member.IsCommissioner {
		t.Fatalf("member = %+v, want plain member of league", member)
	}

	// Third join exceeds NumTeams.
	_, err = app.JoinByCode(ctx, league.JoinCode, uuid.New(), "Late")
	if apperrors.KindOf(err) != apperrors.KindStateConflict {
		t.Errorf("full league join err = %v, want state conflict", err)
	}

	full, err := app.IsFull(ctx, league.ID)
	if err != nil || !full {
		t.Errorf("IsFull = (%v, %v), want (true, nil)", full, err)
	}
}

func TestJoinByCodeRejectsDuplicateUser(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()
	league := mustCreate(t, app, 4)

	userID := uuid.New()
	if _, err := app.JoinByCode(ctx, league.JoinCode, userID, "First"); err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	_, err := app.JoinByCode(ctx, league.JoinCode, userID, "Again")
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("duplicate join err = %v, want validation error", err)
	}
}

func TestJoinByCodeRequiresSetupPhase(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()
	league := mustCreate(t, app, 4)

	if _, err := app.UpdatePhase(ctx, league.ID, models.LeaguePhaseDrafting); err != nil {
		t.Fatalf("UpdatePhase: %v", err)
	}
	_, err := app.JoinByCode(ctx, league.JoinCode, uuid.New(), "Late")
	if !apperrors.IsCode(err, apperrors.CodeWrongPhase) {
		t.Errorf("join during drafting err = %v, want WRONG_PHASE", err)
	}
}

func TestAddBotIsCommissionerOnly(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()
	league := mustCreate(t, app, 3)

	members, err := app.ListMembers(ctx, league.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	commissioner := members[0]

	rival, err := app.JoinByCode(ctx, league.JoinCode, uuid.New(), "Rival")
	if err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}

	_, err = app.AddBot(ctx, league.ID, rival.ID, "Sneaky Bot")
	if !apperrors.IsCode(err, apperrors.CodeNotCommissioner) {
		t.Errorf("rival AddBot err = %v, want NOT_COMMISSIONER", err)
	}

	bot, err := app.AddBot(ctx, league.ID, commissioner.ID, "House Bot")
	if err != nil {
		t.Fatalf("AddBot: %v", err)
	}
	if !bot.IsBot || bot.UserID != nil {
		t.Errorf("bot = %+v, want IsBot with no user", bot)
	}

	// League is now full; another bot must not fit.
	_, err = app.AddBot(ctx, league.ID, commissioner.ID, "Extra Bot")
	if apperrors.KindOf(err) != apperrors.KindStateConflict {
		t.Errorf("AddBot on full league err = %v, want state conflict", err)
	}
}

func TestUpdatePhaseRejectsIllegalTransitions(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()
	league := mustCreate(t, app, 2)

	_, err := app.UpdatePhase(ctx, league.ID, models.LeaguePhaseComplete)
	if !apperrors.IsCode(err, apperrors.CodeWrongPhase) {
		t.Errorf("SETUP -> COMPLETE err = %v, want WRONG_PHASE", err)
	}

	// Same phase is a no-op.
	updated, err := app.UpdatePhase(ctx, league.ID, models.LeaguePhaseSetup)
	if err != nil || updated.Phase != models.LeaguePhaseSetup {
		t.Errorf("no-op transition = (%+v, %v)", updated, err)
	}
}
