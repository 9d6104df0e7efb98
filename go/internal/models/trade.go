package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus defines the status of a trade. Every status other than
// PROPOSED is terminal.
type TradeStatus string

const (
	TradeStatusProposed  TradeStatus = "PROPOSED"
	TradeStatusCompleted TradeStatus = "COMPLETED"
	TradeStatusDeclined  TradeStatus = "DECLINED"
	TradeStatusCanceled  TradeStatus = "CANCELED"
)

// Terminal reports whether the status absorbs further transitions.
func (s TradeStatus) Terminal() bool {
	return s != TradeStatusProposed
}

// ParticipantRole distinguishes the proposer from recipients.
type ParticipantRole string

const (
	RoleProposer  ParticipantRole = "PROPOSER"
	RoleRecipient ParticipantRole = "RECIPIENT"
)

// TradeDecision is a participant's standing answer to the proposal.
type TradeDecision string

const (
	DecisionPending  TradeDecision = "PENDING"
	DecisionAccepted TradeDecision = "ACCEPTED"
	DecisionDeclined TradeDecision = "DECLINED"
)

// Trade is a multi-party proposal to move players between rosters.
type Trade struct {
	ID         uuid.UUID   `json:"id"`
	LeagueID   uuid.UUID   `json:"league_id"`
	ProposerID uuid.UUID   `json:"proposer_id"`
	Status     TradeStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}

// TradeParticipant records one member's role and decision on a trade.
// The proposer's decision is fixed to ACCEPTED at creation.
type TradeParticipant struct {
	ID        uuid.UUID       `json:"id"`
	TradeID   uuid.UUID       `json:"trade_id"`
	MemberID  uuid.UUID       `json:"member_id"`
	Role      ParticipantRole `json:"role"`
	Decision  TradeDecision   `json:"decision"`
	DecidedAt *time.Time      `json:"decided_at,omitempty"`
}

// TradeItem is one player's movement from one participant to another.
type TradeItem struct {
	ID           uuid.UUID `json:"id"`
	TradeID      uuid.UUID `json:"trade_id"`
	PlayerID     uuid.UUID `json:"player_id"`
	FromMemberID uuid.UUID `json:"from_member_id"`
	ToMemberID   uuid.UUID `json:"to_member_id"`
}
