package draft

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
	mu     sync.RWMutex
	drafts map[uuid.UUID]models.Draft
	picks  map[uuid.UUID][]models.DraftPick // by draft ID, append order
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		drafts: make(map[uuid.UUID]models.Draft),
		picks:  make(map[uuid.UUID][]models.DraftPick),
	}
}

func (r *MemoryRepository) CreateDraft(_ context.Context, draft *models.Draft) (*models.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored := *draft
	stored.Order = append([]uuid.UUID(nil), draft.Order...)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.drafts[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	draft, ok := r.drafts[id]
	if !ok {
		return nil, apperrors.NotFound("draft %s not found", id)
	}
	out := draft
	out.Order = append([]uuid.UUID(nil), draft.Order...)
	return &out, nil
}

func (r *MemoryRepository) GetDraftByLeague(_ context.Context, leagueID uuid.UUID) (*models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, draft := range r.drafts {
		if draft.LeagueID == leagueID {
			out := draft
			out.Order = append([]uuid.UUID(nil), draft.Order...)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("no draft for league %s", leagueID)
}

func (r *MemoryRepository) UpdateDraft(_ context.Context, draft *models.Draft) (*models.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.drafts[draft.ID]
	if !ok {
		return nil, apperrors.NotFound("draft %s not found", draft.ID)
	}

	updated := *draft
	updated.Order = append([]uuid.UUID(nil), draft.Order...)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	r.drafts[updated.ID] = updated

	out := updated
	return &out, nil
}

func (r *MemoryRepository) CreatePick(_ context.Context, pick *models.DraftPick) (*models.DraftPick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.picks[pick.DraftID] {
		if existing.OverallPick == pick.OverallPick {
			return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyDrafted,
				"pick %d already recorded in draft %s", pick.OverallPick, pick.DraftID)
		}
		if existing.PlayerID == pick.PlayerID {
			return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyDrafted,
				"player %s already drafted in draft %s", pick.PlayerID, pick.DraftID)
		}
	}

	stored := *pick
	r.picks[pick.DraftID] = append(r.picks[pick.DraftID], stored)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) ListPicks(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]models.DraftPick(nil), r.picks[draftID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].OverallPick < out[j].OverallPick })
	return out, nil
}

func (r *MemoryRepository) GetPickByPlayer(_ context.Context, draftID, playerID uuid.UUID) (*models.DraftPick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pick := range r.picks[draftID] {
		if pick.PlayerID == playerID {
			out := pick
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("player %s has no pick in draft %s", playerID, draftID)
}

func (r *MemoryRepository) FetchNextDeadline(_ context.Context) (*NextDeadline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var soonest *NextDeadline
	for _, draft := range r.drafts {
		if draft.Status != models.DraftStatusInProgress {
			continue
		}
		if soonest == nil ||
			(draft.NextDeadline != nil && (soonest.Deadline == nil || draft.NextDeadline.Before(*soonest.Deadline))) {
			deadline := draft.NextDeadline
			soonest = &NextDeadline{DraftID: draft.ID, Deadline: deadline}
		}
	}
	if soonest == nil {
		return nil, apperrors.NotFound("no in-progress drafts")
	}
	return soonest, nil
}

func (r *MemoryRepository) ListDraftsDue(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []uuid.UUID
	for _, draft := range r.drafts {
		if draft.Status != models.DraftStatusInProgress || draft.NextDeadline == nil {
			continue
		}
		if !draft.NextDeadline.After(now) {
			due = append(due, draft.ID)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}
