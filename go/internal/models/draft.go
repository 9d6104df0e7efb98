package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusScheduled  DraftStatus = "SCHEDULED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// Draft represents a league's snake draft. CurrentPick is 1-based and
// global across rounds; it only ever increases.
type Draft struct {
	ID             uuid.UUID   `json:"id"`
	LeagueID       uuid.UUID   `json:"league_id"`
	Status         DraftStatus `json:"status"`
	Rounds         int         `json:"rounds"`
	CurrentPick    int         `json:"current_pick"`
	Order          []uuid.UUID `json:"order"` // member IDs, position 1..N
	TimePerPickSec int         `json:"time_per_pick_sec"`
	NextDeadline   *time.Time  `json:"next_deadline,omitempty"` // pick-clock expiry, nil while not running
	ScheduledAt    *time.Time  `json:"scheduled_at,omitempty"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TotalPicks returns rounds * teams.
func (d *Draft) TotalPicks() int {
	return d.Rounds * len(d.Order)
}

// DraftPick is immutable once created. OverallPick is unique within a
// draft, as is PlayerID.
type DraftPick struct {
	ID          uuid.UUID `json:"id"`
	DraftID     uuid.UUID `json:"draft_id"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`         // pick number within the round
	OverallPick int       `json:"overall_pick"` // pick number across all rounds
	MemberID    uuid.UUID `json:"member_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	Auto        bool      `json:"auto"` // true when made by the pick-clock fallback
	PickedAt    time.Time `json:"picked_at"`
}
