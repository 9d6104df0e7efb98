package trade

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// MemoryRepository is an in-memory Repository for tests and local
// development.
type MemoryRepository struct {
	mu           sync.RWMutex
	trades       map[uuid.UUID]models.Trade
	participants map[uuid.UUID][]models.TradeParticipant // by trade ID
	items        map[uuid.UUID][]models.TradeItem        // by trade ID
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		trades:       make(map[uuid.UUID]models.Trade),
		participants: make(map[uuid.UUID][]models.TradeParticipant),
		items:        make(map[uuid.UUID][]models.TradeItem),
	}
}

func (r *MemoryRepository) CreateTrade(_ context.Context, trade *models.Trade, participants []models.TradeParticipant, items []models.TradeItem) (*models.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *trade
	r.trades[stored.ID] = stored
	r.participants[stored.ID] = append([]models.TradeParticipant(nil), participants...)
	r.items[stored.ID] = append([]models.TradeItem(nil), items...)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetTrade(_ context.Context, id uuid.UUID) (*models.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trade, ok := r.trades[id]
	if !ok {
		return nil, apperrors.NotFound("trade %s not found", id)
	}
	out := trade
	return &out, nil
}

func (r *MemoryRepository) ListTradesByLeague(_ context.Context, leagueID uuid.UUID) ([]models.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Trade
	for _, trade := range r.trades {
		if trade.LeagueID == leagueID {
			out = append(out, trade)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) UpdateTradeStatus(_ context.Context, id uuid.UUID, status models.TradeStatus, resolvedAt *time.Time) (*models.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trade, ok := r.trades[id]
	if !ok {
		return nil, apperrors.NotFound("trade %s not found", id)
	}
	trade.Status = status
	trade.ResolvedAt = resolvedAt
	r.trades[id] = trade

	out := trade
	return &out, nil
}

func (r *MemoryRepository) ListParticipants(_ context.Context, tradeID uuid.UUID) ([]models.TradeParticipant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.TradeParticipant(nil), r.participants[tradeID]...), nil
}

func (r *MemoryRepository) UpdateParticipantDecision(_ context.Context, participantID uuid.UUID, decision models.TradeDecision, decidedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tradeID, list := range r.participants {
		for i := range list {
			if list[i].ID == participantID {
				list[i].Decision = decision
				list[i].DecidedAt = &decidedAt
				r.participants[tradeID] = list
				return nil
			}
		}
	}
	return apperrors.NotFound("trade participant %s not found", participantID)
}

func (r *MemoryRepository) ListItems(_ context.Context, tradeID uuid.UUID) ([]models.TradeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.TradeItem(nil), r.items[tradeID]...), nil
}
