package leagues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// PostgresRepository persists leagues and members in postgres. Roster
// settings are stored as a JSONB column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const leagueColumns = `id, name, join_code, num_teams, current_week, phase, roster_settings, time_per_pick_sec, created_at, updated_at`

func (r *PostgresRepository) CreateLeague(ctx context.Context, league *models.League) (*models.League, error) {
	settings, err := json.Marshal(league.RosterSettings)
	if err != nil {
		return nil, fmt.Errorf("marshal roster settings: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leagues (id, name, join_code, num_teams, current_week, phase, roster_settings, time_per_pick_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leagueColumns,
		league.ID, league.Name, league.JoinCode, league.NumTeams,
		league.CurrentWeek, string(league.Phase), settings, league.TimePerPickSec)

	return scanLeague(row)
}

func (r *PostgresRepository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leagueColumns+` FROM leagues WHERE id = $1`, id)
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	return league, err
}

func (r *PostgresRepository) GetLeagueByJoinCode(ctx context.Context, code string) (*models.League, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leagueColumns+` FROM leagues WHERE join_code = $1`, code)
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("no league with join code %q", code)
	}
	return league, err
}

func (r *PostgresRepository) UpdateLeaguePhase(ctx context.Context, id uuid.UUID, phase models.LeaguePhase) (*models.League, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leagues SET phase = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+leagueColumns,
		id, string(phase))
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	return league, err
}

func (r *PostgresRepository) UpdateCurrentWeek(ctx context.Context, id uuid.UUID, week int) (*models.League, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leagues SET current_week = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+leagueColumns,
		id, week)
	league, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	return league, err
}

const memberColumns = `id, league_id, user_id, team_name, is_bot, is_commissioner, created_at`

func (r *PostgresRepository) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO members (id, league_id, user_id, team_name, is_bot, is_commissioner)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+memberColumns,
		member.ID, member.LeagueID, member.UserID, member.TeamName, member.IsBot, member.IsCommissioner)
	return scanMember(row)
}

func (r *PostgresRepository) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	member, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("member %s not found", id)
	}
	return member, err
}

func (r *PostgresRepository) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE league_id = $1 ORDER BY created_at`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var result []models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		result = append(result, *member)
	}
	return result, rows.Err()
}

func scanLeague(row pgx.Row) (*models.League, error) {
	var (
		league   models.League
		phase    string
		settings []byte
	)
	err := row.Scan(&league.ID, &league.Name, &league.JoinCode, &league.NumTeams,
		&league.CurrentWeek, &phase, &settings, &league.TimePerPickSec,
		&league.CreatedAt, &league.UpdatedAt)
	if err != nil {
		return nil, err
	}
	league.Phase = models.LeaguePhase(phase)
	if err := json.Unmarshal(settings, &league.RosterSettings); err != nil {
		return nil, fmt.Errorf("unmarshal roster settings: %w", err)
	}
	return &league, nil
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var member models.Member
	err := row.Scan(&member.ID, &member.LeagueID, &member.UserID, &member.TeamName,
		&member.IsBot, &member.IsCommissioner, &member.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
