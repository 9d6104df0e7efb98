package models

import (
	"time"

	"github.com/google/uuid"
)

// AcquisitionType records how a player arrived on a roster.
type AcquisitionType string

const (
	AcquisitionTypeDraft     AcquisitionType = "DRAFT"
	AcquisitionTypeFreeAgent AcquisitionType = "FREE_AGENT"
	AcquisitionTypeTrade     AcquisitionType = "TRADE"
)

// RosterEntry binds a player to one (member, slot) pair. A player is held
// by at most one entry league-wide and a slot holds at most one entry.
type RosterEntry struct {
	ID              uuid.UUID       `json:"id"`
	LeagueID        uuid.UUID       `json:"league_id"`
	MemberID        uuid.UUID       `json:"member_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	Slot            string          `json:"slot"`
	AcquisitionType AcquisitionType `json:"acquisition_type"`
	AcquiredAt      time.Time       `json:"acquired_at"`
}
