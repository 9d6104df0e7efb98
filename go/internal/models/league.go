package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaguePhase represents where a league is in its season lifecycle.
type LeaguePhase string

const (
	LeaguePhaseSetup      LeaguePhase = "SETUP"
	LeaguePhaseDrafting   LeaguePhase = "DRAFTING"
	LeaguePhasePreWeek    LeaguePhase = "PRE_WEEK"
	LeaguePhaseWeekActive LeaguePhase = "WEEK_ACTIVE"
	LeaguePhaseComplete   LeaguePhase = "COMPLETE"
)

// RosterSettings holds the per-position slot counts for a league.
type RosterSettings struct {
	QB    int `json:"qb"`
	RB    int `json:"rb"`
	WR    int `json:"wr"`
	TE    int `json:"te"`
	Flex  int `json:"flex"`
	K     int `json:"k"`
	DEF   int `json:"def"`
	Bench int `json:"bench"`
	IR    int `json:"ir"`
}

// Starters returns the number of starter slots implied by the settings.
func (rs RosterSettings) Starters() int {
	return rs.QB + rs.RB + rs.WR + rs.TE + rs.Flex + rs.K + rs.DEF
}

// TotalSlots returns starters + bench + IR.
func (rs RosterSettings) TotalSlots() int {
	return rs.Starters() + rs.Bench + rs.IR
}

// DefaultRosterSettings returns the standard lineup configuration.
func DefaultRosterSettings() RosterSettings {
	return RosterSettings{QB: 1, RB: 2, WR: 2, TE: 1, Flex: 1, K: 1, DEF: 1, Bench: 6, IR: 1}
}

// League represents a season-long fantasy league.
type League struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	JoinCode       string         `json:"join_code"`
	NumTeams       int            `json:"num_teams"`
	CurrentWeek    int            `json:"current_week"`
	Phase          LeaguePhase    `json:"phase"`
	RosterSettings RosterSettings `json:"roster_settings"`
	TimePerPickSec int            `json:"time_per_pick_sec"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
