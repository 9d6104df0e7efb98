// Package trade implements the multi-party trade state machine:
// propose, accept/decline/cancel, and execution on final acceptance.
// All writes for a trade run under its league's lock, shared with the
// roster store, so execution and roster moves never interleave.
package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
	"github.com/huddlehq/huddle/go/internal/bot"
	"github.com/huddlehq/huddle/go/internal/locks"
	"github.com/huddlehq/huddle/go/internal/models"
	"github.com/huddlehq/huddle/go/internal/notify"
	"github.com/huddlehq/huddle/go/internal/players"
	"github.com/huddlehq/huddle/go/internal/slotconfig"
)

// LeagueService is the league/member collaborator the engine consumes.
type LeagueService interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// RosterService is the roster store surface the engine reads and
// writes. The Locked variants assume the caller holds the league lock.
type RosterService interface {
	Owner(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error)
	OpenSlotCount(ctx context.Context, memberID uuid.UUID, slotSet []string) (int, error)
	FirstOpenSlot(ctx context.Context, memberID uuid.UUID, slotSet []string) (string, error)
	PlaceLocked(ctx context.Context, leagueID, memberID, playerID uuid.UUID, slot string, acq models.AcquisitionType) (*models.RosterEntry, error)
	RemoveLocked(ctx context.Context, entryID uuid.UUID) error
}

// App handles trade business logic.
type App struct {
	repo      Repository
	leagues   LeagueService
	rosters   RosterService
	players   players.Repository
	policy    *bot.Policy
	publisher notify.Publisher
	locks     *locks.Keyed // must be the roster store's lock set
	clock     clockwork.Clock
}

// NewApp creates a trade App. The keyed locks must be the same
// instance the roster App uses; trades lock the league and then drive
// the roster through its Locked entry points.
func NewApp(
	repo Repository,
	leagues LeagueService,
	rosters RosterService,
	playerRepo players.Repository,
	policy *bot.Policy,
	publisher notify.Publisher,
	keyed *locks.Keyed,
	clock clockwork.Clock,
) *App {
	return &App{
		repo:      repo,
		leagues:   leagues,
		rosters:   rosters,
		players:   playerRepo,
		policy:    policy,
		publisher: publisher,
		locks:     keyed,
		clock:     clock,
	}
}

// ProposeItem is one player movement in a proposal.
type ProposeItem struct {
	PlayerID     uuid.UUID
	FromMemberID uuid.UUID
	ToMemberID   uuid.UUID
}

// Propose validates and creates a trade, then immediately runs the bot
// auto-response cascade. Validation failures leave no rows behind.
func (a *App) Propose(ctx context.Context, leagueID, proposerID uuid.UUID, recipientIDs []uuid.UUID, items []ProposeItem) (*models.Trade, error) {
	a.locks.Lock(leagueID)
	defer a.locks.Unlock(leagueID)

	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	if len(recipientIDs) == 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "trade needs at least one recipient")
	}
	if len(items) == 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "trade needs at least one item")
	}

	participants := map[uuid.UUID]bool{proposerID: true}
	for _, id := range recipientIDs {
		if id == proposerID {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "proposer cannot be a recipient")
		}
		if participants[id] {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "duplicate recipient %s", id)
		}
		participants[id] = true
	}

	for id := range participants {
		member, err := a.leagues.GetMember(ctx, id)
		if err != nil {
			return nil, err
		}
		if member.LeagueID != leagueID {
			return nil, apperrors.Authorization(apperrors.CodeNotAParticipant,
				"member %s does not belong to league %s", id, leagueID)
		}
	}

	seenPlayers := map[uuid.UUID]bool{}
	for _, item := range items {
		if item.FromMemberID == item.ToMemberID {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
				"item for player %s moves to its own source", item.PlayerID)
		}
		if !participants[item.FromMemberID] || !participants[item.ToMemberID] {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
				"item for player %s references a non-participant", item.PlayerID)
		}
		if seenPlayers[item.PlayerID] {
			return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
				"player %s appears in more than one item", item.PlayerID)
		}
		seenPlayers[item.PlayerID] = true
	}

	if err := a.validateOwnership(ctx, leagueID, items); err != nil {
		return nil, err
	}
	if err := a.validateBenchSpace(ctx, league, items); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	trade := &models.Trade{
		ID:         uuid.New(),
		LeagueID:   leagueID,
		ProposerID: proposerID,
		Status:     models.TradeStatusProposed,
		CreatedAt:  now,
	}

	tradeParticipants := make([]models.TradeParticipant, 0, len(recipientIDs)+1)
	tradeParticipants = append(tradeParticipants, models.TradeParticipant{
		ID:        uuid.New(),
		TradeID:   trade.ID,
		MemberID:  proposerID,
		Role:      models.RoleProposer,
		Decision:  models.DecisionAccepted,
		DecidedAt: &now,
	})
	for _, id := range recipientIDs {
		tradeParticipants = append(tradeParticipants, models.TradeParticipant{
			ID:       uuid.New(),
			TradeID:  trade.ID,
			MemberID: id,
			Role:     models.RoleRecipient,
			Decision: models.DecisionPending,
		})
	}

	tradeItems := make([]models.TradeItem, len(items))
	for i, item := range items {
		tradeItems[i] = models.TradeItem{
			ID:           uuid.New(),
			TradeID:      trade.ID,
			PlayerID:     item.PlayerID,
			FromMemberID: item.FromMemberID,
			ToMemberID:   item.ToMemberID,
		}
	}

	trade, err = a.repo.CreateTrade(ctx, trade, tradeParticipants, tradeItems)
	if err != nil {
		return nil, fmt.Errorf("create trade: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeProposed,
		LeagueID: leagueID,
		At:       now,
		Payload: map[string]any{
			"trade_id":   trade.ID,
			"proposer":   proposerID,
			"recipients": recipientIDs,
		},
	})
	log.Info().
		Str("trade_id", trade.ID.String()).
		Str("league_id", leagueID.String()).
		Int("items", len(items)).
		Msg("trade proposed")

	if err := a.runBotCascade(ctx, trade); err != nil {
		return nil, err
	}
	return a.repo.GetTrade(ctx, trade.ID)
}

// Accept records a recipient's acceptance; the final acceptance
// triggers execution.
func (a *App) Accept(ctx context.Context, tradeID, memberID uuid.UUID) (*models.Trade, error) {
	trade, unlock, err := a.lockTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	participant, err := a.pendingRecipient(ctx, trade, memberID)
	if err != nil {
		return nil, err
	}
	return a.acceptLocked(ctx, trade, participant)
}

// Decline records a recipient's decline. One decline terminates the
// whole trade; other recipients are never polled.
func (a *App) Decline(ctx context.Context, tradeID, memberID uuid.UUID) (*models.Trade, error) {
	trade, unlock, err := a.lockTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	participant, err := a.pendingRecipient(ctx, trade, memberID)
	if err != nil {
		return nil, err
	}
	return a.declineLocked(ctx, trade, participant)
}

// Cancel withdraws a still-pending trade. Proposer only.
func (a *App) Cancel(ctx context.Context, tradeID, memberID uuid.UUID) (*models.Trade, error) {
	trade, unlock, err := a.lockTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if trade.ProposerID != memberID {
		return nil, apperrors.Authorization(apperrors.CodeNotProposer,
			"member %s did not propose trade %s", memberID, tradeID)
	}
	if trade.Status != models.TradeStatusProposed {
		return nil, apperrors.StateConflict(apperrors.CodeTradeNotPending,
			"trade %s is %s", tradeID, trade.Status)
	}

	now := a.clock.Now()
	updated, err := a.repo.UpdateTradeStatus(ctx, tradeID, models.TradeStatusCanceled, &now)
	if err != nil {
		return nil, fmt.Errorf("cancel trade: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeCanceled,
		LeagueID: trade.LeagueID,
		At:       now,
		Payload:  map[string]any{"trade_id": tradeID},
	})
	return updated, nil
}

// Get returns a trade with its participants and items.
func (a *App) Get(ctx context.Context, tradeID uuid.UUID) (*View, error) {
	trade, err := a.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	participants, err := a.repo.ListParticipants(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	items, err := a.repo.ListItems(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return &View{Trade: *trade, Participants: participants, Items: items}, nil
}

// ListByLeague returns a league's trades, newest first.
func (a *App) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error) {
	return a.repo.ListTradesByLeague(ctx, leagueID)
}

// lockTrade resolves the trade's league, takes its lock, and re-reads
// the trade under it.
func (a *App) lockTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, func(), error) {
	trade, err := a.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, nil, err
	}
	leagueID := trade.LeagueID
	a.locks.Lock(leagueID)

	trade, err = a.repo.GetTrade(ctx, tradeID)
	if err != nil {
		a.locks.Unlock(leagueID)
		return nil, nil, err
	}
	return trade, func() { a.locks.Unlock(leagueID) }, nil
}

// pendingRecipient validates the acting member is a recipient whose
// decision is still open on a live trade.
func (a *App) pendingRecipient(ctx context.Context, trade *models.Trade, memberID uuid.UUID) (*models.TradeParticipant, error) {
	if trade.Status != models.TradeStatusProposed {
		return nil, apperrors.StateConflict(apperrors.CodeTradeNotPending,
			"trade %s is %s", trade.ID, trade.Status)
	}

	participants, err := a.repo.ListParticipants(ctx, trade.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	for i := range participants {
		p := &participants[i]
		if p.MemberID != memberID {
			continue
		}
		if p.Role != models.RoleRecipient {
			return nil, apperrors.Authorization(apperrors.CodeNotAParticipant,
				"member %s is the proposer, not a recipient", memberID)
		}
		if p.Decision != models.DecisionPending {
			return nil, apperrors.StateConflict(apperrors.CodeNotPending,
				"member %s already decided %s", memberID, p.Decision)
		}
		return p, nil
	}
	return nil, apperrors.Authorization(apperrors.CodeNotAParticipant,
		"member %s is not part of trade %s", memberID, trade.ID)
}

func (a *App) acceptLocked(ctx context.Context, trade *models.Trade, participant *models.TradeParticipant) (*models.Trade, error) {
	now := a.clock.Now()
	if err := a.repo.UpdateParticipantDecision(ctx, participant.ID, models.DecisionAccepted, now); err != nil {
		return nil, fmt.Errorf("record acceptance: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeAccepted,
		LeagueID: trade.LeagueID,
		At:       now,
		Payload:  map[string]any{"trade_id": trade.ID, "member_id": participant.MemberID},
	})

	participants, err := a.repo.ListParticipants(ctx, trade.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	for _, p := range participants {
		if p.Decision != models.DecisionAccepted {
			return a.repo.GetTrade(ctx, trade.ID)
		}
	}
	return a.executeLocked(ctx, trade)
}

func (a *App) declineLocked(ctx context.Context, trade *models.Trade, participant *models.TradeParticipant) (*models.Trade, error) {
	now := a.clock.Now()
	if err := a.repo.UpdateParticipantDecision(ctx, participant.ID, models.DecisionDeclined, now); err != nil {
		return nil, fmt.Errorf("record decline: %w", err)
	}
	updated, err := a.repo.UpdateTradeStatus(ctx, trade.ID, models.TradeStatusDeclined, &now)
	if err != nil {
		return nil, fmt.Errorf("decline trade: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeDeclined,
		LeagueID: trade.LeagueID,
		At:       now,
		Payload:  map[string]any{"trade_id": trade.ID, "member_id": participant.MemberID},
	})
	log.Info().
		Str("trade_id", trade.ID.String()).
		Str("member_id", participant.MemberID.String()).
		Msg("trade declined")
	return updated, nil
}

// executeLocked moves every item once the last recipient accepts.
// Every item is re-validated first; a trade invalidated since the
// proposal is canceled with no roster mutation.
func (a *App) executeLocked(ctx context.Context, trade *models.Trade) (*models.Trade, error) {
	items, err := a.repo.ListItems(ctx, trade.ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	league, err := a.leagues.GetLeague(ctx, trade.LeagueID)
	if err != nil {
		return nil, err
	}
	layout := slotconfig.Build(league.RosterSettings)

	sources := make([]*models.RosterEntry, len(items))
	for i, item := range items {
		entry, err := a.rosters.Owner(ctx, trade.LeagueID, item.PlayerID)
		if err != nil || entry.MemberID != item.FromMemberID {
			return a.voidTrade(ctx, trade, apperrors.StateConflict(apperrors.CodeStaleTradeItem,
				"player %s is no longer held by member %s", item.PlayerID, item.FromMemberID))
		}
		sources[i] = entry
	}

	// Re-check bench capacity against the current rosters: a receiver
	// may have filled its bench since the proposal. Only outgoing
	// players sitting on bench slots free room for incoming ones.
	incoming := map[uuid.UUID]int{}
	for _, item := range items {
		incoming[item.ToMemberID]++
	}
	freed := map[uuid.UUID]int{}
	for _, entry := range sources {
		if layout.KindOf(entry.Slot) == slotconfig.SlotBench {
			freed[entry.MemberID]++
		}
	}
	for memberID, gained := range incoming {
		open, err := a.rosters.OpenSlotCount(ctx, memberID, layout.Bench)
		if err != nil {
			return nil, err
		}
		if open+freed[memberID] < gained {
			return a.voidTrade(ctx, trade, apperrors.StateConflict(apperrors.CodeInsufficientRosterSpace,
				"member %s gains %d players but would have %d open bench slots",
				memberID, gained, open+freed[memberID]))
		}
	}

	for _, entry := range sources {
		if err := a.rosters.RemoveLocked(ctx, entry.ID); err != nil {
			return nil, fmt.Errorf("remove traded player: %w", err)
		}
	}
	for _, item := range items {
		slot, err := a.rosters.FirstOpenSlot(ctx, item.ToMemberID, layout.Bench)
		if err != nil {
			return nil, err
		}
		if slot == "" {
			// Unreachable after the capacity check above.
			return nil, fmt.Errorf("no open bench slot for player %s after capacity check", item.PlayerID)
		}
		if _, err := a.rosters.PlaceLocked(ctx, trade.LeagueID, item.ToMemberID, item.PlayerID, slot, models.AcquisitionTypeTrade); err != nil {
			return nil, fmt.Errorf("place traded player: %w", err)
		}
	}

	now := a.clock.Now()
	updated, err := a.repo.UpdateTradeStatus(ctx, trade.ID, models.TradeStatusCompleted, &now)
	if err != nil {
		return nil, fmt.Errorf("complete trade: %w", err)
	}

	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeCompleted,
		LeagueID: trade.LeagueID,
		At:       now,
		Payload:  map[string]any{"trade_id": trade.ID, "items": len(items)},
	})
	log.Info().
		Str("trade_id", trade.ID.String()).
		Int("items", len(items)).
		Msg("trade executed")
	return updated, nil
}

// voidTrade cancels a trade that no longer matches reality at
// execution time, before any roster mutation, and surfaces the cause.
func (a *App) voidTrade(ctx context.Context, trade *models.Trade, cause error) (*models.Trade, error) {
	now := a.clock.Now()
	if _, err := a.repo.UpdateTradeStatus(ctx, trade.ID, models.TradeStatusCanceled, &now); err != nil {
		return nil, fmt.Errorf("cancel invalidated trade: %w", err)
	}
	a.publish(ctx, notify.Event{
		Type:     notify.EventTradeCanceled,
		LeagueID: trade.LeagueID,
		At:       now,
		Payload:  map[string]any{"trade_id": trade.ID, "reason": cause.Error()},
	})
	return nil, cause
}

// runBotCascade polls each pending bot recipient in participant order,
// stopping the moment one declines.
func (a *App) runBotCascade(ctx context.Context, trade *models.Trade) error {
	participants, err := a.repo.ListParticipants(ctx, trade.ID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	items, err := a.repo.ListItems(ctx, trade.ID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	for i := range participants {
		p := &participants[i]
		if p.Role != models.RoleRecipient || p.Decision != models.DecisionPending {
			continue
		}
		member, err := a.leagues.GetMember(ctx, p.MemberID)
		if err != nil {
			return err
		}
		if !member.IsBot {
			continue
		}

		receiving, giving, err := a.itemPlayersFor(ctx, items, p.MemberID)
		if err != nil {
			return err
		}
		if a.policy.EvaluateTrade(receiving, giving) {
			current, err := a.repo.GetTrade(ctx, trade.ID)
			if err != nil {
				return err
			}
			if _, err := a.acceptLocked(ctx, current, p); err != nil {
				return err
			}
			continue
		}

		_, err = a.declineLocked(ctx, trade, p)
		return err
	}
	return nil
}

// itemPlayersFor splits a trade's players into what the member gains
// and what it gives up.
func (a *App) itemPlayersFor(ctx context.Context, items []models.TradeItem, memberID uuid.UUID) (receiving, giving []models.Player, err error) {
	for _, item := range items {
		if item.ToMemberID != memberID && item.FromMemberID != memberID {
			continue
		}
		player, err := a.players.GetPlayer(ctx, item.PlayerID)
		if err != nil {
			return nil, nil, err
		}
		if item.ToMemberID == memberID {
			receiving = append(receiving, *player)
		} else {
			giving = append(giving, *player)
		}
	}
	return receiving, giving, nil
}

// validateOwnership checks every item's source currently holds the
// player.
func (a *App) validateOwnership(ctx context.Context, leagueID uuid.UUID, items []ProposeItem) error {
	for _, item := range items {
		entry, err := a.rosters.Owner(ctx, leagueID, item.PlayerID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return apperrors.Validation(apperrors.CodeNotOwner,
					"player %s is not on any roster in league %s", item.PlayerID, leagueID)
			}
			return err
		}
		if entry.MemberID != item.FromMemberID {
			return apperrors.Validation(apperrors.CodeNotOwner,
				"player %s is held by member %s, not %s", item.PlayerID, entry.MemberID, item.FromMemberID)
		}
	}
	return nil
}

// validateBenchSpace requires every net-positive receiver to have open
// bench slots for its surplus, computed as signed per-member deltas.
func (a *App) validateBenchSpace(ctx context.Context, league *models.League, items []ProposeItem) error {
	layout := slotconfig.Build(league.RosterSettings)

	net := map[uuid.UUID]int{}
	for _, item := range items {
		net[item.ToMemberID]++
		net[item.FromMemberID]--
	}

	for memberID, delta := range net {
		if delta <= 0 {
			continue
		}
		open, err := a.rosters.OpenSlotCount(ctx, memberID, layout.Bench)
		if err != nil {
			return err
		}
		if open < delta {
			return apperrors.Validation(apperrors.CodeInsufficientRosterSpace,
				"member %s gains %d players but has %d open bench slots", memberID, delta, open)
		}
	}
	return nil
}

func (a *App) publish(ctx context.Context, event notify.Event) {
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("failed to publish event")
	}
}
