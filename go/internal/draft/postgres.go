package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// PostgresRepository persists drafts and picks in postgres. The draft
// order is a uuid[] column; pick uniqueness (overall number and player,
// both per draft) is enforced by unique constraints so a racing insert
// loses cleanly.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const draftColumns = `id, league_id, status, rounds, current_pick, draft_order, time_per_pick_sec, next_deadline, scheduled_at, started_at, completed_at, created_at, updated_at`

const pickColumns = `id, draft_id, round, pick, overall_pick, member_id, player_id, auto, picked_at`

func (r *PostgresRepository) CreateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO drafts (id, league_id, status, rounds, current_pick, draft_order, time_per_pick_sec, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+draftColumns,
		draft.ID, draft.LeagueID, string(draft.Status), draft.Rounds,
		draft.CurrentPick, draft.Order, draft.TimePerPickSec, draft.ScheduledAt)

	return scanDraft(row)
}

func (r *PostgresRepository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)
	draft, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("draft %s not found", id)
	}
	return draft, err
}

func (r *PostgresRepository) GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE league_id = $1`, leagueID)
	draft, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("no draft for league %s", leagueID)
	}
	return draft, err
}

func (r *PostgresRepository) UpdateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE drafts
		SET status = $2, current_pick = $3, draft_order = $4, next_deadline = $5,
		    started_at = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+draftColumns,
		draft.ID, string(draft.Status), draft.CurrentPick, draft.Order,
		draft.NextDeadline, draft.StartedAt, draft.CompletedAt)

	updated, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("draft %s not found", draft.ID)
	}
	return updated, err
}

func (r *PostgresRepository) CreatePick(ctx context.Context, pick *models.DraftPick) (*models.DraftPick, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO draft_picks (id, draft_id, round, pick, overall_pick, member_id, player_id, auto, picked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+pickColumns,
		pick.ID, pick.DraftID, pick.Round, pick.Pick, pick.OverallPick,
		pick.MemberID, pick.PlayerID, pick.Auto, pick.PickedAt)

	created, err := scanPick(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyDrafted,
			"pick %d or player %s already recorded in draft %s",
			pick.OverallPick, pick.PlayerID, pick.DraftID)
	}
	return created, err
}

func (r *PostgresRepository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pickColumns+` FROM draft_picks WHERE draft_id = $1 ORDER BY overall_pick`, draftID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, *pick)
	}
	return picks, rows.Err()
}

func (r *PostgresRepository) GetPickByPlayer(ctx context.Context, draftID, playerID uuid.UUID) (*models.DraftPick, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pickColumns+` FROM draft_picks WHERE draft_id = $1 AND player_id = $2`,
		draftID, playerID)
	pick, err := scanPick(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("player %s has no pick in draft %s", playerID, draftID)
	}
	return pick, err
}

func (r *PostgresRepository) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, next_deadline FROM drafts
		WHERE status = $1
		ORDER BY next_deadline ASC NULLS LAST
		LIMIT 1`,
		string(models.DraftStatusInProgress))

	var nd NextDeadline
	err := row.Scan(&nd.DraftID, &nd.Deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("no in-progress drafts")
	}
	if err != nil {
		return nil, fmt.Errorf("fetch next deadline: %w", err)
	}
	return &nd, nil
}

func (r *PostgresRepository) ListDraftsDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM drafts
		WHERE status = $1 AND next_deadline IS NOT NULL AND next_deadline <= $2
		ORDER BY next_deadline ASC
		LIMIT $3`,
		string(models.DraftStatusInProgress), now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due drafts: %w", err)
	}
	defer rows.Close()

	var due []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due draft: %w", err)
		}
		due = append(due, id)
	}
	return due, rows.Err()
}

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var d models.Draft
	var status string
	err := row.Scan(&d.ID, &d.LeagueID, &status, &d.Rounds, &d.CurrentPick,
		&d.Order, &d.TimePerPickSec, &d.NextDeadline,
		&d.ScheduledAt, &d.StartedAt, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	d.Status = models.DraftStatus(status)
	return &d, nil
}

func scanPick(row pgx.Row) (*models.DraftPick, error) {
	var p models.DraftPick
	err := row.Scan(&p.ID, &p.DraftID, &p.Round, &p.Pick, &p.OverallPick,
		&p.MemberID, &p.PlayerID, &p.Auto, &p.PickedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan draft pick: %w", err)
	}
	return &p, nil
}
