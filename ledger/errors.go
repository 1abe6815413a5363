/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is/errors.As;
  the structured types carry the context the boundary layer reports back
  to the operator (elapsed undo minutes, the valid current period, ...).

ERROR CATEGORIES:
  1. Input errors     - unparsable or non-positive amounts, bad periods
  2. Ownership errors - entry absent, foreign, or locked
  3. Advisory errors  - undo outcomes, payout-period rejections

Anomaly signals (duplicate, extreme) are NOT errors: they are advisory
flags attached to a successful write. See anomaly.go.
*/
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for unparsable or non-positive input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPeriod is returned for malformed period text when the
	// resolver runs in strict mode.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrNotFound is returned when an entry does not exist, belongs to
	// another user, or is locked. All three look identical to the caller.
	ErrNotFound = errors.New("entry not found")

	// ErrPeriodNotClosed rejects a payout against a period that is
	// neither the current open period nor already closed.
	ErrPeriodNotClosed = errors.New("period not closed")

	// ErrNoRecentEntry means no undo token exists for the user.
	ErrNoRecentEntry = errors.New("no recent entry to undo")

	// ErrUndoExpired means the undo window elapsed; the token is discarded.
	ErrUndoExpired = errors.New("undo window expired")

	// ErrUndoFailed means the token was valid but the delete failed
	// (entry already gone). The token is kept so the caller can see why.
	ErrUndoFailed = errors.New("undo failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports the rejected input text.
type InvalidAmountError struct {
	Input string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: must be a positive number", e.Input)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// PeriodNotClosedError names the current open period as the valid
// alternative, so the boundary layer can tell the operator what would
// have been accepted.
type PeriodNotClosedError struct {
	Period        Period
	CurrentPeriod Period
}

func (e *PeriodNotClosedError) Error() string {
	return fmt.Sprintf("period %s is not closed; payouts are allowed for the current period %s or any closed period",
		e.Period.Key(), e.CurrentPeriod.Key())
}

func (e *PeriodNotClosedError) Unwrap() error { return ErrPeriodNotClosed }

// UndoExpiredError reports how late the undo attempt was.
type UndoExpiredError struct {
	Elapsed time.Duration
	Window  time.Duration
}

func (e *UndoExpiredError) Error() string {
	return fmt.Sprintf("undo window expired: %.1f minutes elapsed, window is %.0f minutes",
		e.Elapsed.Minutes(), e.Window.Minutes())
}

func (e *UndoExpiredError) Unwrap() error { return ErrUndoExpired }

// UndoFailedError wraps the underlying delete failure.
type UndoFailedError struct {
	EntryID int64
	Cause   error
}

func (e *UndoFailedError) Error() string {
	return fmt.Sprintf("undo of entry %d failed: %v", e.EntryID, e.Cause)
}

func (e *UndoFailedError) Unwrap() error { return ErrUndoFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to operator input rather
// than a storage failure. Client errors are reported, never retried.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPeriodNotClosed) ||
		errors.Is(err, ErrNoRecentEntry) ||
		errors.Is(err, ErrUndoExpired) ||
		errors.Is(err, ErrUndoFailed)
}
