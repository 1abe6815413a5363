/*
Package ledger provides the commission ledger and settlement engine.

PURPOSE:
  This package contains the domain types and operations for a two-party
  commission split arrangement: one operator records cash amounts as they
  come in, the engine computes each party's share, groups entries into
  calendar-month accounting periods, closes and locks those periods into
  immutable statements, and reconciles partner payouts against the locked
  share.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: A single commission with its computed owner/partner split
  - Payout: A payment made to the partner against a period
  - Statement: The immutable summary produced when a period is closed
  - AuditRecord: Append-only record of every mutating action

DESIGN PRINCIPLES:
  1. Precision: All monetary values are decimal.Decimal - never float
  2. Immutability: Closed periods lock their entries permanently
  3. Determinism: Statement ids derive from user + period, never random
  4. Auditability: Every mutation writes an audit record atomically

SEE ALSO:
  - period.go: Period keys and the boundary resolver
  - ledger.go: Entry recording and deletion
  - close.go: Period closing and payout reconciliation
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UserID identifies the owning operator of a ledger.
type UserID int64

// =============================================================================
// USER
// =============================================================================

// User is created on first interaction and immutable except for the name.
type User struct {
	ID        UserID
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// =============================================================================
// COMMISSION ENTRY
// =============================================================================

// Entry is a single recorded commission.
//
// INVARIANT: SplitOwner + SplitPartner == Amount, exactly, to the
// currency's minor-unit precision (see SplitPolicy.Split).
//
// An entry can be deleted only via undo and only while unlocked. Once its
// period is closed, Locked is set and the entry is permanently immutable.
type Entry struct {
	ID           int64
	UserID       UserID
	Amount       decimal.Decimal
	Note         string
	CreatedAt    time.Time // always UTC
	Period       Period
	SplitOwner   decimal.Decimal
	SplitPartner decimal.Decimal
	Locked       bool
}

// =============================================================================
// PAYOUT
// =============================================================================

// Payout records a payment to the partner against a period.
// Payouts are never mutated or deleted.
type Payout struct {
	ID     int64
	UserID UserID
	Amount decimal.Decimal
	PaidAt time.Time // always UTC
	Period Period
}

// =============================================================================
// STATEMENT
// =============================================================================

// Statement is the per-(user, period) summary emitted by ClosePeriod.
// Exactly one exists per (user, period); re-closing recomputes the totals
// but StatementID is a stable function of user + period.
type Statement struct {
	StatementID     string
	UserID          UserID
	Period          Period
	TotalCommission decimal.Decimal
	SplitOwner      decimal.Decimal
	SplitPartner    decimal.Decimal
	Closed          bool
	GeneratedAt     time.Time
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

type AuditAction string

const (
	AuditAdd         AuditAction = "add"
	AuditUndo        AuditAction = "undo"
	AuditPayout      AuditAction = "payout"
	AuditPeriodClose AuditAction = "period_close"
)

// AuditRecord captures one mutating action for forensic reconstruction.
// Records are append-only and committed in the same store transaction as
// the mutation they describe.
type AuditRecord struct {
	ID        string // uuid
	Action    AuditAction
	ActorID   UserID
	TargetID  int64 // entry or payout id; 0 for period close
	Before    string
	After     string
	Timestamp time.Time
}
