/*
store.go - Persistence interface for the commission engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage.

ATOMICITY CONTRACT:
  The unit of serialization is the user. Every mutating operation is a
  composite: the row write and its audit record commit together or not
  at all, and ClosePeriod's three steps (upsert statement, lock entries,
  audit) are one transaction. This is how scheduled jobs and interactive
  commands for the same user stay consistent across multiple stateless
  engine processes sharing one database - no in-process locks are relied
  on for cross-instance safety.

TIMEOUTS:
  Every call takes a context; the caller bounds persistence time. A
  timeout surfaces as a retryable failure, never a partial write.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - ledger/store/memory.go: In-memory for tests
*/
package ledger

import (
	"context"
	"time"
)

// Store handles persistence of all ledger entities.
type Store interface {
	// GetOrCreateUser returns the user, creating it on first interaction.
	// An empty name defaults to "User_<id>".
	GetOrCreateUser(ctx context.Context, id UserID, name string) (*User, error)

	// ListUsers returns every known user. Used by scheduled sweeps.
	ListUsers(ctx context.Context) ([]User, error)

	// InsertEntry persists a new entry and its audit record atomically,
	// populating e.ID.
	InsertEntry(ctx context.Context, e *Entry, audit AuditRecord) error

	// GetEntry returns the entry, or nil if it does not exist or belongs
	// to another user.
	GetEntry(ctx context.Context, entryID int64, userID UserID) (*Entry, error)

	// DeleteEntry removes an unlocked entry owned by userID, writing the
	// audit record in the same transaction. Returns ErrNotFound if the
	// entry is absent, foreign, or locked.
	DeleteEntry(ctx context.Context, entryID int64, userID UserID, audit AuditRecord) error

	// EntriesForPeriod returns the user's entries for one period,
	// ordered by creation time ascending.
	EntriesForPeriod(ctx context.Context, userID UserID, p Period) ([]Entry, error)

	// EntriesForYear returns the user's entries across a whole year,
	// ordered by creation time ascending.
	EntriesForYear(ctx context.Context, userID UserID, year int) ([]Entry, error)

	// EntriesSince returns the user's entries created at or after since,
	// newest first. Backs time-windowed duplicate detection.
	EntriesSince(ctx context.Context, userID UserID, since time.Time) ([]Entry, error)

	// LastEntry returns the user's most recent entry, or nil if none.
	LastEntry(ctx context.Context, userID UserID) (*Entry, error)

	// InsertPayout persists a payout and its audit record atomically,
	// populating p.ID.
	InsertPayout(ctx context.Context, p *Payout, audit AuditRecord) error

	// PayoutsForPeriod returns the user's payouts for one period.
	PayoutsForPeriod(ctx context.Context, userID UserID, p Period) ([]Payout, error)

	// ClosePeriod upserts the statement keyed by (user, period), sets
	// locked on every entry in that period, and appends the audit record
	// - all in one transaction. Upsert keeps the operation idempotent.
	ClosePeriod(ctx context.Context, stmt *Statement, audit AuditRecord) error

	// Statement returns the statement for (user, period), or nil if the
	// period has never been closed.
	Statement(ctx context.Context, userID UserID, p Period) (*Statement, error)

	// StatementsForYear returns the user's statements for a year,
	// ordered by period ascending.
	StatementsForYear(ctx context.Context, userID UserID, year int) ([]Statement, error)

	// AuditTrail returns the user's most recent audit records, newest
	// first, up to limit (0 means no limit).
	AuditTrail(ctx context.Context, userID UserID, limit int) ([]AuditRecord, error)

	// Reset clears every entity table and restarts generated identifiers.
	// Schema is preserved. Reversible only by backup.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
