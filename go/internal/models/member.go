package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a team slot within a league, owned by a user or run by a bot.
type Member struct {
	ID             uuid.UUID  `json:"id"`
	LeagueID       uuid.UUID  `json:"league_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"` // nil for bots
	TeamName       string     `json:"team_name"`
	IsBot          bool       `json:"is_bot"`
	IsCommissioner bool       `json:"is_commissioner"`
	CreatedAt      time.Time  `json:"created_at"`
}
