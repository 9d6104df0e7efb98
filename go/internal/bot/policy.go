// Package bot implements the decision functions used on behalf of bot
// members: draft selection, lineup optimization, free-agent autofill,
// and trade evaluation. All value judgments reduce to ADP.
package bot

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// missingADP is the value assumed for players without an ADP. High
// enough that incomplete data always looks unattractive.
const missingADP = 999

// tradeTolerance is how much worse (by average ADP) a bot will accept
// in a trade before declining.
const tradeTolerance = 1.10

// draftShortlist caps how many best-available candidates the draft
// selection randomizes over.
const draftShortlist = 3

// Policy makes decisions for bot members. The rng is injected so tests
// can seed it.
type Policy struct {
	rng *rand.Rand
}

// NewPolicy creates a Policy around the given random source.
func NewPolicy(rng *rand.Rand) *Policy {
	return &Policy{rng: rng}
}

// positionPriorities returns the positions a bot shops for in the given
// round, most preferred first. Early rounds chase RB/WR value; kickers
// and defenses only enter late.
func positionPriorities(round int) []models.Position {
	switch {
	case round <= 2:
		return []models.Position{models.PositionRB, models.PositionWR}
	case round <= 4:
		return []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}
	case round <= 6:
		return []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE}
	case round <= 9:
		return []models.Position{models.PositionRB, models.PositionWR, models.PositionTE, models.PositionQB}
	default:
		return []models.Position{models.PositionK, models.PositionDEF, models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE}
	}
}

// SelectDraftPick chooses a player from the undrafted pool for the
// given round. It scans the round's position priorities, shortlists the
// best available at the first position with candidates, and picks
// uniformly among the shortlist. With no priority match it falls back
// to a uniform pick over the whole pool.
func (p *Policy) SelectDraftPick(pool []models.Player, round int) *models.Player {
	if len(pool) == 0 {
		return nil
	}

	sorted := make([]models.Player, len(pool))
	copy(sorted, pool)
	players.SortByADP(sorted)

	for _, pos := range positionPriorities(round) {
		var candidates []models.Player
		for _, pl := range sorted {
			if pl.Position == pos {
				candidates = append(candidates, pl)
				if len(candidates) == draftShortlist {
					break
				}
			}
		}
		if len(candidates) > 0 {
			choice := candidates[p.rng.Intn(len(candidates))]
			return &choice
		}
	}

	choice := sorted[p.rng.Intn(len(sorted))]
	return &choice
}

// LineupMove is one slot reassignment produced by OptimizeLineup.
type LineupMove struct {
	EntryID uuid.UUID
	Slot    string
}

// OptimizeLineup computes the moves that fill each starter slot with
// the best-ADP eligible player, greedily slot by slot, then parks the
// remainder on the bench in ADP order. Entries already in their target
// slot produce no move.
func (p *Policy) OptimizeLineup(layout slotconfig.Layout, entries []models.RosterEntry, catalog map[uuid.UUID]models.Player) []LineupMove {
	type holding struct {
		entry  models.RosterEntry
		player models.Player
	}

	holdings := make([]holding, 0, len(entries))
	for _, e := range entries {
		pl, ok := catalog[e.PlayerID]
		if !ok {
			continue
		}
		holdings = append(holdings, holding{entry: e, player: pl})
	}

	// Best ADP first.
	list := make([]models.Player, len(holdings))
	for i, h := range holdings {
		list[i] = h.player
	}
	players.SortByADP(list)
	rank := make(map[uuid.UUID]int, len(list))
	for i, pl := range list {
		rank[pl.ID] = i
	}

	assigned := make(map[uuid.UUID]string, len(holdings)) // entry -> target slot
	used := make(map[uuid.UUID]bool, len(holdings))       // entry IDs already placed

	for _, slot := range layout.Starters {
		best := -1
		for i, h := range holdings {
			if used[h.entry.ID] || !layout.Eligible(slot.Name, &h.player) {
				continue
			}
			if best == -1 || rank[h.player.ID] < rank[holdings[best].player.ID] {
				best = i
			}
		}
		if best >= 0 {
			assigned[holdings[best].entry.ID] = slot.Name
			used[holdings[best].entry.ID] = true
		}
	}

	// Remaining players to bench, ADP order.
	var leftovers []holding
	for _, h := range holdings {
		if !used[h.entry.ID] {
			leftovers = append(leftovers, h)
		}
	}
	for i := 0; i < len(leftovers); i++ {
		for j := i + 1; j < len(leftovers); j++ {
			if rank[leftovers[j].player.ID] < rank[leftovers[i].player.ID] {
				leftovers[i], leftovers[j] = leftovers[j], leftovers[i]
			}
		}
	}
	for i, h := range leftovers {
		if i >= len(layout.Bench) {
			break
		}
		assigned[h.entry.ID] = layout.Bench[i]
	}

	var moves []LineupMove
	for _, h := range holdings {
		target, ok := assigned[h.entry.ID]
		if ok && target != h.entry.Slot {
			moves = append(moves, LineupMove{EntryID: h.entry.ID, Slot: target})
		}
	}
	return moves
}

// AutofillFreeAgents picks the best-ADP available free agents, one per
// empty bench slot. The pool must already exclude rostered players.
func (p *Policy) AutofillFreeAgents(pool []models.Player, emptyBenchSlots int) []models.Player {
	if emptyBenchSlots <= 0 || len(pool) == 0 {
		return nil
	}
	sorted := make([]models.Player, len(pool))
	copy(sorted, pool)
	players.SortByADP(sorted)
	if emptyBenchSlots > len(sorted) {
		emptyBenchSlots = len(sorted)
	}
	return sorted[:emptyBenchSlots]
}

// EvaluateTrade decides whether a bot accepts a trade: compare average
// ADP received against average ADP given up, with a tolerance. Missing
// ADP counts as a very poor value so thin data biases toward declining.
func (p *Policy) EvaluateTrade(receiving, giving []models.Player) bool {
	if len(receiving) == 0 {
		return false
	}
	return averageADP(receiving) <= averageADP(giving)*tradeTolerance
}

func averageADP(list []models.Player) float64 {
	if len(list) == 0 {
		return missingADP
	}
	total := 0.0
	for _, pl := range list {
		if pl.ADP != nil {
			total += *pl.ADP
		} else {
			total += missingADP
		}
	}
	return total / float64(len(list))
}
