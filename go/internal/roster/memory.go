package roster

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/models"
)

// MemoryRepository keeps roster entries in memory. Batch slot updates
// are applied atomically under the write lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]models.RosterEntry
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]models.RosterEntry)}
}

func (r *MemoryRepository) CreateEntry(ctx context.Context, entry *models.RosterEntry) (*models.RosterEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	if stored.AcquiredAt.IsZero() {
		stored.AcquiredAt = time.Now()
	}
	r.entries[stored.ID] = stored
	return &stored, nil
}

func (r *MemoryRepository) GetEntry(ctx context.Context, id uuid.UUID) (*models.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, apperrors.NotFound("roster entry %s not found", id)
	}
	return &entry, nil
}

func (r *MemoryRepository) GetEntryBySlot(ctx context.Context, memberID uuid.UUID, slot string) (*models.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.MemberID == memberID && e.Slot == slot {
			entry := e
			return &entry, nil
		}
	}
	return nil, apperrors.NotFound("no entry in slot %s for member %s", slot, memberID)
}

func (r *MemoryRepository) GetEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.LeagueID == leagueID && e.PlayerID == playerID {
			entry := e
			return &entry, nil
		}
	}
	return nil, apperrors.NotFound("player %s not rostered in league %s", playerID, leagueID)
}

func (r *MemoryRepository) ListEntriesByMember(ctx context.Context, memberID uuid.UUID) ([]models.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.RosterEntry
	for _, e := range r.entries {
		if e.MemberID == memberID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListEntriesByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.RosterEntry
	for _, e := range r.entries {
		if e.LeagueID == leagueID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *MemoryRepository) UpdateEntrySlots(ctx context.Context, updates []SlotUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate the whole batch before touching anything.
	for _, u := range updates {
		if _, ok := r.entries[u.EntryID]; !ok {
			return apperrors.NotFound("roster entry %s not found", u.EntryID)
		}
	}
	for _, u := range updates {
		entry := r.entries[u.EntryID]
		entry.Slot = u.Slot
		r.entries[u.EntryID] = entry
	}
	return nil
}

func (r *MemoryRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return apperrors.NotFound("roster entry %s not found", id)
	}
	delete(r.entries, id)
	return nil
}
