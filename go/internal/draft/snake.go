// Package draft implements the snake draft: setup and ordering,
// turn-taking with a pick clock, the auto-pick fallback, and bot turn
// processing. Draft state advances through a single per-draft lock so
// two in-flight requests can never both land a pick.
package draft

import (
	"github.com/google/uuid"
)

// RoundOf returns the 1-based round of a 1-based overall pick.
func RoundOf(overall, teams int) int {
	return (overall-1)/teams + 1
}

// PickInRound returns the 1-based pick number within its round.
func PickInRound(overall, teams int) int {
	return (overall-1)%teams + 1
}

// orderIndex resolves the zero-based draft order position for an
// overall pick. Odd rounds walk the order forward, even rounds walk it
// backward.
func orderIndex(overall, teams int) int {
	pick := PickInRound(overall, teams)
	if RoundOf(overall, teams)%2 == 0 {
		return teams - pick
	}
	return pick - 1
}

// OnTheClock returns the member who owns the given overall pick. Pure
// function of the pick number and the order; no other draft state is
// consulted.
func OnTheClock(order []uuid.UUID, overall int) uuid.UUID {
	return order[orderIndex(overall, len(order))]
}
