package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// PostgresRepository persists roster entries in postgres. Batch slot
// updates run inside a single transaction.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const entryColumns = `id, league_id, member_id, player_id, slot, acquisition_type, acquired_at`

func (r *PostgresRepository) CreateEntry(ctx context.Context, entry *models.RosterEntry) (*models.RosterEntry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roster_entries (id, league_id, member_id, player_id, slot, acquisition_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+entryColumns,
		entry.ID, entry.LeagueID, entry.MemberID, entry.PlayerID, entry.Slot, string(entry.AcquisitionType))
	return scanEntry(row)
}

func (r *PostgresRepository) GetEntry(ctx context.Context, id uuid.UUID) (*models.RosterEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM roster_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("roster entry %s not found", id)
	}
	return entry, err
}

func (r *PostgresRepository) GetEntryBySlot(ctx context.Context, memberID uuid.UUID, slot string) (*models.RosterEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM roster_entries WHERE member_id = $1 AND slot = $2`, memberID, slot)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("no entry in slot %s for member %s", slot, memberID)
	}
	return entry, err
}

func (r *PostgresRepository) GetEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM roster_entries WHERE league_id = $1 AND player_id = $2`, leagueID, playerID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("player %s not rostered in league %s", playerID, leagueID)
	}
	return entry, err
}

func (r *PostgresRepository) ListEntriesByMember(ctx context.Context, memberID uuid.UUID) ([]models.RosterEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM roster_entries WHERE member_id = $1`, memberID)
}

func (r *PostgresRepository) ListEntriesByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM roster_entries WHERE league_id = $1`, leagueID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]models.RosterEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list roster entries: %w", err)
	}
	defer rows.Close()

	var result []models.RosterEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) UpdateEntrySlots(ctx context.Context, updates []SlotUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin slot update txn: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE roster_entries SET slot = $2 WHERE id = $1`, u.EntryID, u.Slot)
		if err != nil {
			return fmt.Errorf("update entry slot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("roster entry %s not found", u.EntryID)
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roster_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete roster entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("roster entry %s not found", id)
	}
	return nil
}

func scanEntry(row pgx.Row) (*models.RosterEntry, error) {
	var (
		entry models.RosterEntry
		acq   string
	)
	err := row.Scan(&entry.ID, &entry.LeagueID, &entry.MemberID, &entry.PlayerID,
		&entry.Slot, &acq, &entry.AcquiredAt)
	if err != nil {
		return nil, err
	}
	entry.AcquisitionType = models.AcquisitionType(acq)
	return &entry, nil
}
