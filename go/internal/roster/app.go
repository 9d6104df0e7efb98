package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// LeagueGetter is what the store needs from the leagues collaborator.
type LeagueGetter interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// PlayerGetter is what the store needs from the player catalog.
type PlayerGetter interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// App is the authoritative store of (member, slot) -> player bindings.
// Writers are serialized per league through the keyed mutex; reads are
// served directly off the repository snapshot.
type App struct {
	repo    Repository
	leagues LeagueGetter
	players PlayerGetter
	locks   *locks.Keyed
}

// NewApp creates a roster App.
func NewApp(repo Repository, leagueGetter LeagueGetter, playerGetter PlayerGetter, keyed *locks.Keyed) *App {
	return &App{
		repo:    repo,
		leagues: leagueGetter,
		players: playerGetter,
		locks:   keyed,
	}
}

// Place binds a player to an open slot on a member's roster.
func (a *App) Place(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error) {
	a.locks.Lock(leagueID)
	defer a.locks.Unlock(leagueID)
	return a.placeLocked(ctx, leagueID, memberID, playerID, slot, acq)
}

// PlaceLocked is Place for callers that already hold the league lock
// (trade execution, roster population).
func (a *App) PlaceLocked(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error) {
	return a.placeLocked(ctx, leagueID, memberID, playerID, slot, acq)
}

func (a *App) placeLocked(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error) {
	if occupant, err := a.repo.GetEntryBySlot(ctx, memberID, slot); err == nil && occupant != nil {
		return nil, apperrors.StateConflict(apperrors.CodeSlotOccupied,
			"slot %s on member %s already holds player %s", slot, memberID, occupant.PlayerID)
	} else if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, fmt.Errorf("check slot occupancy: %w", err)
	}

	if owner, err := a.repo.GetEntryByPlayer(ctx, leagueID, playerID); err == nil && owner != nil {
		return nil, apperrors.StateConflict(apperrors.CodePlayerAlreadyOwned,
			"player %s already held by member %s", playerID, owner.MemberID)
	} else if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, fmt.Errorf("check player ownership: %w", err)
	}

	entry, err := a.repo.CreateEntry(ctx, &models.RosterEntry{
		ID:              uuid.New(),
		LeagueID:        leagueID,
		MemberID:        memberID,
		PlayerID:        playerID,
		Slot:            slot,
		AcquisitionType: acq,
	})
	if err != nil {
		return nil, fmt.Errorf("create roster entry: %w", err)
	}

	log.Debug().
		Str("member_id", memberID.String()).
		Str("player_id", playerID.String()).
		Str("slot", slot).
		Str("acquisition", string(acq)).
		Msg("player placed on roster")
	return entry, nil
}

// Remove deletes a roster entry. A missing entry is NotFound, not a no-op.
func (a *App) Remove(ctx context.Context, entryID uuid.UUID) error {
	entry, err := a.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}

	a.locks.Lock(entry.LeagueID)
	defer a.locks.Unlock(entry.LeagueID)
	return a.removeLocked(ctx, entryID)
}

// RemoveLocked is Remove for callers already holding the league lock.
func (a *App) RemoveLocked(ctx context.Context, entryID uuid.UUID) error {
	return a.removeLocked(ctx, entryID)
}

func (a *App) removeLocked(ctx context.Context, entryID uuid.UUID) error {
	if _, err := a.repo.GetEntry(ctx, entryID); err != nil {
		return err
	}
	if err := a.repo.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete roster entry: %w", err)
	}
	return nil
}

// Relocate moves an entry to a free slot, enforcing eligibility. A
// occupied target fails with SlotOccupied; use MovePlayer for swaps.
func (a *App) Relocate(ctx context.Context, entryID uuid.UUID, targetSlot string) (*models.RosterEntry, error) {
	entry, err := a.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	a.locks.Lock(entry.LeagueID)
	defer a.locks.Unlock(entry.LeagueID)

	entry, err = a.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	layout, err := a.layoutFor(ctx, entry.LeagueID)
	if err != nil {
		return nil, err
	}
	if err := a.checkEligible(ctx, layout, entry.PlayerID, targetSlot); err != nil {
		return nil, err
	}

	if occupant, err := a.repo.GetEntryBySlot(ctx, entry.MemberID, targetSlot); err == nil && occupant != nil && occupant.ID != entry.ID {
		return nil, apperrors.StateConflict(apperrors.CodeSlotOccupied,
			"slot %s on member %s already holds player %s", targetSlot, entry.MemberID, occupant.PlayerID)
	} else if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, fmt.Errorf("check slot occupancy: %w", err)
	}

	if err := a.repo.UpdateEntrySlots(ctx, []SlotUpdate{{EntryID: entry.ID, Slot: targetSlot}}); err != nil {
		return nil, fmt.Errorf("relocate entry: %w", err)
	}
	return a.repo.GetEntry(ctx, entryID)
}

// MovePlayer relocates an entry, swapping with the occupant when the
// target slot is taken. The swap is all-or-nothing: if the occupant
// cannot legally take the vacated slot the whole move fails with
// IneligibleSwap and neither entry changes.
func (a *App) MovePlayer(ctx context.Context, memberID, entryID uuid.UUID, targetSlot string) error {
	entry, err := a.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.MemberID != memberID {
		return apperrors.Authorization(apperrors.CodeNotOwner,
			"entry %s does not belong to member %s", entryID, memberID)
	}

	a.locks.Lock(entry.LeagueID)
	defer a.locks.Unlock(entry.LeagueID)

	entry, err = a.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}

	layout, err := a.layoutFor(ctx, entry.LeagueID)
	if err != nil {
		return err
	}
	if err := a.checkEligible(ctx, layout, entry.PlayerID, targetSlot); err != nil {
		return err
	}

	occupant, err := a.repo.GetEntryBySlot(ctx, memberID, targetSlot)
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		return fmt.Errorf("check slot occupancy: %w", err)
	}

	if occupant == nil || occupant.ID == entry.ID {
		if occupant != nil {
			return nil // already there
		}
		if err := a.repo.UpdateEntrySlots(ctx, []SlotUpdate{{EntryID: entry.ID, Slot: targetSlot}}); err != nil {
			return fmt.Errorf("relocate entry: %w", err)
		}
		return nil
	}

	// Occupied: the occupant backfills the mover's original slot.
	if err := a.checkEligible(ctx, layout, occupant.PlayerID, entry.Slot); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeIneligiblePosition {
			return apperrors.Validation(apperrors.CodeIneligibleSwap,
				"occupant of %s cannot take slot %s", targetSlot, entry.Slot)
		}
		return err
	}

	updates := []SlotUpdate{
		{EntryID: entry.ID, Slot: targetSlot},
		{EntryID: occupant.ID, Slot: entry.Slot},
	}
	if err := a.repo.UpdateEntrySlots(ctx, updates); err != nil {
		return fmt.Errorf("swap entries: %w", err)
	}

	log.Debug().
		Str("member_id", memberID.String()).
		Str("slot_a", entry.Slot).
		Str("slot_b", targetSlot).
		Msg("roster slots swapped")
	return nil
}

// FirstOpenSlot scans the ordered slot list and returns the first name
// not occupied by the member, or "" when every slot is taken.
func (a *App) FirstOpenSlot(ctx context.Context, memberID uuid.UUID, slotSet []string) (string, error) {
	entries, err := a.repo.ListEntriesByMember(ctx, memberID)
	if err != nil {
		return "", fmt.Errorf("list roster entries: %w", err)
	}
	occupied := make(map[string]bool, len(entries))
	for _, e := range entries {
		occupied[e.Slot] = true
	}
	for _, slot := range slotSet {
		if !occupied[slot] {
			return slot, nil
		}
	}
	return "", nil
}

// OpenSlotCount returns how many of the given slots the member has free.
func (a *App) OpenSlotCount(ctx context.Context, memberID uuid.UUID, slotSet []string) (int, error) {
	entries, err := a.repo.ListEntriesByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("list roster entries: %w", err)
	}
	occupied := make(map[string]bool, len(entries))
	for _, e := range entries {
		occupied[e.Slot] = true
	}
	open := 0
	for _, slot := range slotSet {
		if !occupied[slot] {
			open++
		}
	}
	return open, nil
}

// Snapshot returns a member's roster entries.
func (a *App) Snapshot(ctx context.Context, memberID uuid.UUID) ([]models.RosterEntry, error) {
	return a.repo.ListEntriesByMember(ctx, memberID)
}

// LeagueSnapshot returns every entry in a league.
func (a *App) LeagueSnapshot(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error) {
	return a.repo.ListEntriesByLeague(ctx, leagueID)
}

// Owner returns the entry holding the player league-wide, or NotFound.
func (a *App) Owner(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error) {
	return a.repo.GetEntryByPlayer(ctx, leagueID, playerID)
}

// GetEntry retrieves one roster entry by ID.
func (a *App) GetEntry(ctx context.Context, entryID uuid.UUID) (*models.RosterEntry, error) {
	return a.repo.GetEntry(ctx, entryID)
}

func (a *App) layoutFor(ctx context.Context, leagueID uuid.UUID) (slotconfig.Layout, error) {
	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return slotconfig.Layout{}, err
	}
	return slotconfig.Build(league.RosterSettings), nil
}

func (a *App) checkEligible(ctx context.Context, layout slotconfig.Layout, playerID uuid.UUID, slot string) error {
	player, err := a.players.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if !layout.Eligible(slot, player) {
		return apperrors.Validation(apperrors.CodeIneligiblePosition,
			"player %s (%s) is not eligible for slot %s", player.FullName, player.Position, slot)
	}
	return nil
}
