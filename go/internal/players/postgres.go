package players

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

// PostgresRepository reads the player catalog from postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a catalog over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const playerColumns = `id, full_name, position, nfl_team, adp, injury_status`

func (r *PostgresRepository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id)

	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return r.SearchPlayers(ctx, SearchFilter{})
}

func (r *PostgresRepository) SearchPlayers(ctx context.Context, filter SearchFilter) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE 1=1`
	args := []any{}

	if filter.Position != nil {
		args = append(args, string(*filter.Position))
		query += fmt.Sprintf(` AND position = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(` AND full_name ILIKE $%d`, len(args))
	}
	query += ` ORDER BY adp ASC NULLS LAST, full_name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	defer rows.Close()

	var result []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var (
		p      models.Player
		pos    string
		injury *string
	)
	if err := row.Scan(&p.ID, &p.FullName, &pos, &p.NFLTeam, &p.ADP, &injury); err != nil {
		return nil, err
	}
	p.Position = models.Position(pos)
	if injury != nil {
		status := models.InjuryStatus(*injury)
		p.InjuryStatus = &status
	}
	return &p, nil
}
