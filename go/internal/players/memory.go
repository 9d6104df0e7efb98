package players

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// MemoryRepository keeps the player catalog in memory. Used by tests and
// local development; production wiring uses the postgres repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	players map[uuid.UUID]models.Player
}

// NewMemoryRepository constructs an empty in-memory catalog.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{players: make(map[uuid.UUID]models.Player)}
}

// Seed replaces the catalog contents.
func (r *MemoryRepository) Seed(list []models.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = make(map[uuid.UUID]models.Player, len(list))
	for _, p := range list {
		r.players[p.ID] = p
	}
}

func (r *MemoryRepository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	return &p, nil
}

func (r *MemoryRepository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return r.SearchPlayers(ctx, SearchFilter{})
}

func (r *MemoryRepository) SearchPlayers(ctx context.Context, filter SearchFilter) ([]models.Player, error) {
	r.mu.RLock()
	result := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		if MatchesFilter(&p, filter) {
			result = append(result, p)
		}
	}
	r.mu.RUnlock()

	SortByADP(result)
	return result, nil
}
