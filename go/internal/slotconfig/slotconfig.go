// Package slotconfig derives a league's concrete slot layout from its
// roster-size settings. Everything here is a pure computation; the same
// settings always yield the same layout.
package slotconfig

import (
	"fmt"

	"github.com/huddlehq/huddle/go/internal/models"
)

// Slot is one named roster slot with its position eligibility.
type Slot struct {
	Name     string
	Eligible []models.Position // empty for bench and IR slots
}

// Layout is the full slot structure for a league.
type Layout struct {
	Starters []Slot
	Bench    []string
	IR       []string

	// starterSlotsByPosition maps each position to the ordered starter
	// slot names a player of that position may fill, FLEX included.
	starterSlotsByPosition map[models.Position][]string
}

var flexEligible = []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}

// Build derives the layout for the given settings. Negative counts are
// clamped to zero; validating sane counts is the caller's contract.
func Build(settings models.RosterSettings) Layout {
	var layout Layout

	appendStarters := func(base string, count int, eligible ...models.Position) {
		for _, name := range slotNames(base, count) {
			layout.Starters = append(layout.Starters, Slot{Name: name, Eligible: eligible})
		}
	}

	appendStarters("QB", settings.QB, models.PositionQB)
	appendStarters("RB", settings.RB, models.PositionRB)
	appendStarters("WR", settings.WR, models.PositionWR)
	appendStarters("TE", settings.TE, models.PositionTE)
	appendStarters("FLEX", settings.Flex, flexEligible...)
	appendStarters("K", settings.K, models.PositionK)
	appendStarters("DEF", settings.DEF, models.PositionDEF)

	layout.Bench = slotNames("BN", settings.Bench)
	layout.IR = slotNames("IR", settings.IR)

	layout.starterSlotsByPosition = make(map[models.Position][]string, len(models.Positions))
	for _, slot := range layout.Starters {
		for _, pos := range slot.Eligible {
			layout.starterSlotsByPosition[pos] = append(layout.starterSlotsByPosition[pos], slot.Name)
		}
	}

	return layout
}

// slotNames yields numbered names when count > 1 (RB1, RB2, ...) and the
// bare name when count == 1.
func slotNames(base string, count int) []string {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []string{base}
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", base, i+1)
	}
	return names
}

// StarterSlotsFor returns the ordered starter slot names a player of the
// given position may fill, including FLEX for RB/WR/TE.
func (l Layout) StarterSlotsFor(pos models.Position) []string {
	return l.starterSlotsByPosition[pos]
}

// StarterNames returns every starter slot name in layout order.
func (l Layout) StarterNames() []string {
	names := make([]string, len(l.Starters))
	for i, s := range l.Starters {
		names[i] = s.Name
	}
	return names
}

// AllSlots returns every slot name: starters, bench, then IR.
func (l Layout) AllSlots() []string {
	names := l.StarterNames()
	names = append(names, l.Bench...)
	return append(names, l.IR...)
}

// SlotKind classifies a slot name within this layout.
type SlotKind int

const (
	SlotUnknown SlotKind = iota
	SlotStarter
	SlotBench
	SlotIR
)

// KindOf reports which class of slot the name belongs to.
func (l Layout) KindOf(name string) SlotKind {
	for _, s := range l.Starters {
		if s.Name == name {
			return SlotStarter
		}
	}
	for _, b := range l.Bench {
		if b == name {
			return SlotBench
		}
	}
	for _, ir := range l.IR {
		if ir == name {
			return SlotIR
		}
	}
	return SlotUnknown
}

// Eligible reports whether a player may occupy the named slot: starters
// require a position match, bench takes anyone, IR requires an injury
// designation.
func (l Layout) Eligible(name string, player *models.Player) bool {
	switch l.KindOf(name) {
	case SlotBench:
		return true
	case SlotIR:
		return player.Injured()
	case SlotStarter:
		for _, s := range l.Starters {
			if s.Name != name {
				continue
			}
			for _, pos := range s.Eligible {
				if pos == player.Position {
					return true
				}
			}
			return false
		}
	}
	return false
}
