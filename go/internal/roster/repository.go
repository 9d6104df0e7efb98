package roster

import (
	"context"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
)

// SlotUpdate is one entry's slot reassignment within an atomic batch.
type SlotUpdate struct {
	EntryID uuid.UUID
	Slot    string
}

// Repository is the persistence contract for roster entries. Lookups
// that find nothing return a NotFound apperror.
type Repository interface {
	CreateEntry(ctx context.Context, entry *models.RosterEntry) (*models.RosterEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*models.RosterEntry, error)
	GetEntryBySlot(ctx context.Context, memberID uuid.UUID, slot string) (*models.RosterEntry, error)
	GetEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error)
	ListEntriesByMember(ctx context.Context, memberID uuid.UUID) ([]models.RosterEntry, error)
	ListEntriesByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error)
	// UpdateEntrySlots applies every reassignment or none of them.
	UpdateEntrySlots(ctx context.Context, updates []SlotUpdate) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}
