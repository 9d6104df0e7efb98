package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
)

// View bundles a trade with its participants and items.
type View struct {
	Trade        models.Trade              `json:"trade"`
	Participants []models.TradeParticipant `json:"participants"`
	Items        []models.TradeItem        `json:"items"`
}

// Repository is the persistence contract for trades. CreateTrade
// persists the trade, its participants, and its items together; either
// everything lands or nothing does.
type Repository interface {
	CreateTrade(ctx context.Context, trade *models.Trade, participants []models.TradeParticipant, items []models.TradeItem) (*models.Trade, error)
	GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	ListTradesByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error)
	UpdateTradeStatus(ctx context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt *time.Time) (*models.Trade, error)

	ListParticipants(ctx context.Context, tradeID uuid.UUID) ([]models.TradeParticipant, error)
	UpdateParticipantDecision(ctx context.Context, participantID uuid.UUID, decision models.TradeDecision, decidedAt time.Time) error

	ListItems(ctx context.Context, tradeID uuid.UUID) ([]models.TradeItem, error)
}
