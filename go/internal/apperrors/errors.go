// Package apperrors defines the typed error results every engine
// operation reports. Callers branch on Kind (or a specific Code) with
// errors.As / apperrors.IsCode; nothing in here is retried internally.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind buckets an error by how the caller should treat it.
type Kind string

const (
	KindAuthorization Kind = "AUTHORIZATION" // not logged in, not a member, turn/role violations
	KindStateConflict Kind = "STATE_CONFLICT"
	KindValidation    Kind = "VALIDATION"
	KindNotFound      Kind = "NOT_FOUND"
	KindExhaustion    Kind = "EXHAUSTION"
)

// Stable machine-readable codes within the kinds.
const (
	CodeNotCommissioner = "NOT_COMMISSIONER"
	CodeNotYourTurn     = "NOT_YOUR_TURN"
	CodeNotProposer     = "NOT_PROPOSER"
	CodeNotAParticipant = "NOT_A_PARTICIPANT"
	CodeNotPending      = "NOT_PENDING"

	CodeDraftNotActive       = "DRAFT_NOT_ACTIVE"
	CodePlayerAlreadyDrafted = "PLAYER_ALREADY_DRAFTED"
	CodePlayerAlreadyOwned   = "PLAYER_ALREADY_OWNED"
	CodeSlotOccupied         = "SLOT_OCCUPIED"
	CodeTradeNotPending      = "TRADE_NOT_PENDING"
	CodeWrongPhase           = "WRONG_PHASE"
	CodeStaleTradeItem       = "STALE_TRADE_ITEM"

	CodeIneligiblePosition      = "INELIGIBLE_POSITION"
	CodeIneligibleSwap          = "INELIGIBLE_SWAP"
	CodeInsufficientRosterSpace = "INSUFFICIENT_ROSTER_SPACE"
	CodeNotOwner                = "NOT_OWNER"
	CodeInvalidArgument         = "INVALID_ARGUMENT"

	CodeNotFound = "NOT_FOUND"

	CodeNoAvailablePlayers = "NO_AVAILABLE_PLAYERS"
)

// Error is the structured error type carried across layers.
type Error struct {
	Kind Kind
	Code string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// New builds an Error of the given kind and code.
func New(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an Error.
func Wrap(err error, kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, msg: fmt.Sprintf(format, args...), err: err}
}

func Authorization(code, format string, args ...any) *Error {
	return New(KindAuthorization, code, format, args...)
}

func StateConflict(code, format string, args ...any) *Error {
	return New(KindStateConflict, code, format, args...)
}

func Validation(code, format string, args ...any) *Error {
	return New(KindValidation, code, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, CodeNotFound, format, args...)
}

func Exhaustion(code, format string, args ...any) *Error {
	return New(KindExhaustion, code, format, args...)
}

// KindOf returns the Kind of err, or "" when err carries no Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns the code of err, or "" when err carries no Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
