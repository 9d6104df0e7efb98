package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// PostgresRepository persists trades in postgres. Trade creation
// writes the trade, participants, and items in one transaction.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const tradeColumns = `id, league_id, proposer_id, status, created_at, resolved_at`

func (r *PostgresRepository) CreateTrade(ctx context.Context, trade *models.Trade, participants []models.TradeParticipant, items []models.TradeItem) (*models.Trade, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create trade: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO trades (id, league_id, proposer_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+tradeColumns,
		trade.ID, trade.LeagueID, trade.ProposerID, string(trade.Status), trade.CreatedAt)
	created, err := scanTrade(row)
	if err != nil {
		return nil, err
	}

	for _, p := range participants {
		_, err := tx.Exec(ctx, `
			INSERT INTO trade_participants (id, trade_id, member_id, role, decision, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.TradeID, p.MemberID, string(p.Role), string(p.Decision), p.DecidedAt)
		if err != nil {
			return nil, fmt.Errorf("insert trade participant: %w", err)
		}
	}
	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO trade_items (id, trade_id, player_id, from_member_id, to_member_id)
			VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.TradeID, item.PlayerID, item.FromMemberID, item.ToMemberID)
		if err != nil {
			return nil, fmt.Errorf("insert trade item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create trade: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	trade, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("trade %s not found", id)
	}
	return trade, err
}

func (r *PostgresRepository) ListTradesByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE league_id = $1 ORDER BY created_at DESC`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

func (r *PostgresRepository) UpdateTradeStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt *time.Time) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE trades SET status = $2, resolved_at = $3
		WHERE id = $1
		RETURNING `+tradeColumns,
		id, string(status), resolvedAt)
	trade, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("trade %s not found", id)
	}
	return trade, err
}

func (r *PostgresRepository) ListParticipants(ctx context.Context, tradeID uuid.UUID) ([]models.TradeParticipant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, trade_id, member_id, role, decision, decided_at
		FROM trade_participants WHERE trade_id = $1
		ORDER BY role, id`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.TradeParticipant
	for rows.Next() {
		var p models.TradeParticipant
		var role, decision string
		if err := rows.Scan(&p.ID, &p.TradeID, &p.MemberID, &role, &decision, &p.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Role = models.ParticipantRole(role)
		p.Decision = models.TradeDecision(decision)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *PostgresRepository) UpdateParticipantDecision(ctx context.Context, participantID uuid.UUID, decision models.TradeDecision, decidedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trade_participants SET decision = $2, decided_at = $3
		WHERE id = $1`,
		participantID, string(decision), decidedAt)
	if err != nil {
		return fmt.Errorf("update participant decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("trade participant %s not found", participantID)
	}
	return nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, tradeID uuid.UUID) ([]models.TradeItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, trade_id, player_id, from_member_id, to_member_id
		FROM trade_items WHERE trade_id = $1
		ORDER BY id`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.TradeItem
	for rows.Next() {
		var item models.TradeItem
		if err := rows.Scan(&item.ID, &item.TradeID, &item.PlayerID, &item.FromMemberID, &item.ToMemberID); err != nil {
			return nil, fmt.Errorf("scan trade item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanTrade(row pgx.Row) (*models.Trade, error) {
	var t models.Trade
	var status string
	err := row.Scan(&t.ID, &t.LeagueID, &t.ProposerID, &status, &t.CreatedAt, &t.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan trade: %w", err)
	}
	t.Status = models.TradeStatus(status)
	return &t, nil
}
