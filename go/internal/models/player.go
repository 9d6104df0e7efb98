package models

import (
	"github.com/google/uuid"
)

// Position is an NFL roster position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// Positions lists every valid position in display order.
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF:
		return true
	}
	return false
}

// InjuryStatus is a player's current injury designation.
type InjuryStatus string

const (
	InjuryQuestionable InjuryStatus = "QUESTIONABLE"
	InjuryDoubtful     InjuryStatus = "DOUBTFUL"
	InjuryOut          InjuryStatus = "OUT"
)

// Player is a catalog entity. Read-only from the transaction engine's
// perspective.
type Player struct {
	ID           uuid.UUID     `json:"id"`
	FullName     string        `json:"full_name"`
	Position     Position      `json:"position"`
	NFLTeam      string        `json:"nfl_team"`
	ADP          *float64      `json:"adp,omitempty"` // average draft position, lower = better
	InjuryStatus *InjuryStatus `json:"injury_status,omitempty"`
}

// Injured reports whether the player carries an injury designation,
// which is what gates IR slot eligibility.
func (p *Player) Injured() bool {
	return p.InjuryStatus != nil
}
