package leagues

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// App handles league and membership business logic. The transaction
// engines consume it as the league/member collaborator: phase reads and
// writes, member lists, commissioner/bot flags.
type App struct {
	repo Repository
	rng  *rand.Rand
}

// NewApp creates a new leagues App. The rng seeds join-code generation.
func NewApp(repo Repository, rng *rand.Rand) *App {
	return &App{repo: repo, rng: rng}
}

// CreateLeagueRequest carries the settings for a new league.
type CreateLeagueRequest struct {
	Name           string
	NumTeams       int
	RosterSettings models.RosterSettings
	TimePerPickSec int
	CommissionerID uuid.UUID // user creating the league
	TeamName       string
}

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateLeague creates a league in SETUP phase with the creator as its
// commissioner member.
func (a *App) CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error) {
	if req.Name == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "league name is required")
	}
	if req.NumTeams < 2 {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "league needs at least 2 teams, got %d", req.NumTeams)
	}
	if req.TimePerPickSec <= 0 {
		req.TimePerPickSec = 60
	}

	code := make([]byte, 6)
	for i := range code {
		code[i] = joinCodeAlphabet[a.rng.Intn(len(joinCodeAlphabet))]
	}

	league, err := a.repo.CreateLeague(ctx, &models.League{
		ID:             uuid.New(),
		Name:           req.Name,
		JoinCode:       string(code),
		NumTeams:       req.NumTeams,
		CurrentWeek:    0,
		Phase:          models.LeaguePhaseSetup,
		RosterSettings: req.RosterSettings,
		TimePerPickSec: req.TimePerPickSec,
	})
	if err != nil {
		return nil, fmt.Errorf("create league: %w", err)
	}

	commissionerID := req.CommissionerID
	_, err = a.repo.CreateMember(ctx, &models.Member{
		ID:             uuid.New(),
		LeagueID:       league.ID,
		UserID:         &commissionerID,
		TeamName:       req.TeamName,
		IsCommissioner: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create commissioner member: %w", err)
	}

	log.Info().Str("league_id", league.ID.String()).Str("name", league.Name).Msg("league created")
	return league, nil
}

// JoinByCode adds a user to a league as a new member.
func (a *App) JoinByCode(ctx context.Context, code string, userID uuid.UUID, teamName string) (*models.Member, error) {
	league, err := a.repo.GetLeagueByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if league.Phase != models.LeaguePhaseSetup {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"league %s is in phase %s, joining requires SETUP", league.ID, league.Phase)
	}

	members, err := a.repo.ListMembers(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if len(members) >= league.NumTeams {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase, "league %s is full", league.ID)
	}
	for _, m := range members {
		if m.UserID != nil && *m.UserID == userID {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "user already in league %s", league.ID)
		}
	}

	member, err := a.repo.CreateMember(ctx, &models.Member{
		ID:       uuid.New(),
		LeagueID: league.ID,
		UserID:   &userID,
		TeamName: teamName,
	})
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	log.Info().Str("league_id", league.ID.String()).Str("member_id", member.ID.String()).Msg("member joined league")
	return member, nil
}

// AddBot fills one open team slot with a bot member. Commissioner only.
func (a *App) AddBot(ctx context.Context, leagueID, actingMemberID uuid.UUID, teamName string) (*models.Member, error) {
	if err := a.RequireCommissioner(ctx, leagueID, actingMemberID); err != nil {
		return nil, err
	}

	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := a.repo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if len(members) >= league.NumTeams {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase, "league %s is full", leagueID)
	}

	bot, err := a.repo.CreateMember(ctx, &models.Member{
		ID:       uuid.New(),
		LeagueID: leagueID,
		TeamName: teamName,
		IsBot:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create bot member: %w", err)
	}

	log.Info().Str("league_id", leagueID.String()).Str("member_id", bot.ID.String()).Msg("bot member added")
	return bot, nil
}

// GetLeague retrieves a league by ID.
func (a *App) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return a.repo.GetLeague(ctx, id)
}

// GetMember retrieves a member by ID.
func (a *App) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return a.repo.GetMember(ctx, id)
}

// ListMembers returns every member of a league.
func (a *App) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	return a.repo.ListMembers(ctx, leagueID)
}

// IsFull reports whether the league has all its member slots filled.
func (a *App) IsFull(ctx context.Context, leagueID uuid.UUID) (bool, error) {
	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return false, err
	}
	members, err := a.repo.ListMembers(ctx, leagueID)
	if err != nil {
		return false, fmt.Errorf("list members: %w", err)
	}
	return len(members) >= league.NumTeams, nil
}

// RequireCommissioner validates the acting member belongs to the league
// and carries the commissioner flag.
func (a *App) RequireCommissioner(ctx context.Context, leagueID, memberID uuid.UUID) error {
	member, err := a.repo.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member.LeagueID != leagueID {
		return apperrors.Authorization(apperrors.CodeNotAParticipant,
			"member %s does not belong to league %s", memberID, leagueID)
	}
	if !member.IsCommissioner {
		return apperrors.Authorization(apperrors.CodeNotCommissioner,
			"member %s is not the commissioner", memberID)
	}
	return nil
}

// validPhaseTransitions enumerates the legal league phase changes.
var validPhaseTransitions = map[models.LeaguePhase][]models.LeaguePhase{
	models.LeaguePhaseSetup:      {models.LeaguePhaseDrafting, models.LeaguePhasePreWeek},
	models.LeaguePhaseDrafting:   {models.LeaguePhasePreWeek, models.LeaguePhaseSetup},
	models.LeaguePhasePreWeek:    {models.LeaguePhaseWeekActive},
	models.LeaguePhaseWeekActive: {models.LeaguePhasePreWeek, models.LeaguePhaseComplete},
	models.LeaguePhaseComplete:   {},
}

// UpdatePhase transitions the league phase, rejecting unknown moves.
func (a *App) UpdatePhase(ctx context.Context, leagueID uuid.UUID, phase models.LeaguePhase) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league.Phase == phase {
		return league, nil
	}

	allowed := false
	for _, next := range validPhaseTransitions[league.Phase] {
		if next == phase {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.StateConflict(apperrors.CodeWrongPhase,
			"phase transition %s -> %s is not allowed", league.Phase, phase)
	}

	updated, err := a.repo.UpdateLeaguePhase(ctx, leagueID, phase)
	if err != nil {
		return nil, fmt.Errorf("update league phase: %w", err)
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Str("from", string(league.Phase)).
		Str("to", string(phase)).
		Msg("league phase updated")
	return updated, nil
}

// AdvanceWeek bumps the current week counter. Used by the week
// lifecycle, observed but never driven by the transaction engines.
func (a *App) AdvanceWeek(ctx context.Context, leagueID uuid.UUID) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	updated, err := a.repo.UpdateCurrentWeek(ctx, leagueID, league.CurrentWeek+1)
	if err != nil {
		return nil, fmt.Errorf("advance week: %w", err)
	}
	return updated, nil
}
