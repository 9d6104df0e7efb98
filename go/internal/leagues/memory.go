package leagues

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// MemoryRepository keeps leagues and members in memory. Members list
// in creation order, matching the persistent repository's ordering.
type MemoryRepository struct {
	mu          sync.RWMutex
	leagues     map[uuid.UUID]models.League
	members     map[uuid.UUID]models.Member
	memberOrder []uuid.UUID
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		leagues: make(map[uuid.UUID]models.League),
		members: make(map[uuid.UUID]models.Member),
	}
}

func (r *MemoryRepository) CreateLeague(ctx context.Context, league *models.League) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := *league
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.leagues[stored.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	league, ok := r.leagues[id]
	if !ok {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	return &league, nil
}

func (r *MemoryRepository) GetLeagueByJoinCode(ctx context.Context, code string) (*models.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, league := range r.leagues {
		if league.JoinCode == code {
			l := league
			return &l, nil
		}
	}
	return nil, apperrors.NotFound("no league with join code %q", code)
}

func (r *MemoryRepository) UpdateLeaguePhase(ctx context.Context, id uuid.UUID, phase models.LeaguePhase) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	league, ok := r.leagues[id]
	if !ok {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	league.Phase = phase
	league.UpdatedAt = time.Now()
	r.leagues[id] = league
	return &league, nil
}

func (r *MemoryRepository) UpdateCurrentWeek(ctx context.Context, id uuid.UUID, week int) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	league, ok := r.leagues[id]
	if !ok {
		return nil, apperrors.NotFound("league %s not found", id)
	}
	league.CurrentWeek = week
	league.UpdatedAt = time.Now()
	r.leagues[id] = league
	return &league, nil
}

func (r *MemoryRepository) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *member
	stored.CreatedAt = time.Now()
	r.members[stored.ID] = stored
	r.memberOrder = append(r.memberOrder, stored.ID)
	return &stored, nil
}

func (r *MemoryRepository) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[id]
	if !ok {
		return nil, apperrors.NotFound("member %s not found", id)
	}
	return &member, nil
}

func (r *MemoryRepository) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.Member
	for _, id := range r.memberOrder {
		if m := r.members[id]; m.LeagueID == leagueID {
			result = append(result, m)
		}
	}
	return result, nil
}
