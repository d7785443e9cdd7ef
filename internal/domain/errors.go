package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Every failed
// operation surfaces exactly one of these (wrapped with context), so
// callers can identify which precondition was violated.

var (
	// ErrUnauthorized means the caller lacks the required role for the action.
	ErrUnauthorized = errors.New("caller not authorized for this action")

	// ErrNotFound means the referenced item id does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidState means the item is not in the state the requested
	// transition requires (including any call against a terminal item).
	ErrInvalidState = errors.New("item not in required state")

	// ErrAmountMismatch means a deposit does not equal the expected
	// itemValue + fee/2.
	ErrAmountMismatch = errors.New("deposit amount mismatch")

	// ErrFractionOutOfRange means an arbitration fraction is outside
	// [0, 2*itemValue].
	ErrFractionOutOfRange = errors.New("seeker fraction out of range")

	// ErrOverflow means a value computation would leave the 256-bit
	// token domain. Rejected rather than wrapped.
	ErrOverflow = errors.New("value arithmetic overflow")

	// ErrBadPayload means a deposit callback payload could not be
	// decoded into a known action.
	ErrBadPayload = errors.New("undecodable deposit payload")

	// ErrInsufficientFunds is returned by the value ledger when a
	// transfer exceeds the payer's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
