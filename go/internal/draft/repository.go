package draft

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
)

// NextDeadline is the scheduler's view of the soonest pick-clock
// expiry across in-progress drafts.
type NextDeadline struct {
	DraftID  uuid.UUID
	Deadline *time.Time
}

// Repository is the persistence contract for drafts and picks. Lookups
// that find nothing return a NotFound apperror. CreatePick must reject
// a duplicate overall pick number or player within a draft with a
// StateConflict apperror.
type Repository interface {
	CreateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	GetDraftByLeague(ctx context.Context, leagueID uuid.UUID) (*models.Draft, error)
	UpdateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error)

	CreatePick(ctx context.Context, pick *models.DraftPick) (*models.DraftPick, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	GetPickByPlayer(ctx context.Context, draftID, playerID uuid.UUID) (*models.DraftPick, error)

	// FetchNextDeadline returns the soonest non-nil deadline among
	// in-progress drafts, or NotFound when no draft is running.
	FetchNextDeadline(ctx context.Context) (*NextDeadline, error)
	// ListDraftsDue returns in-progress drafts whose deadline is at or
	// before now, capped at limit.
	ListDraftsDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
