/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.Store and auth.Store using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

ATOMICITY:
  Every mutating operation is a single SQL transaction. An entry insert
  and its audit record commit together or not at all; ClosePeriod's
  statement upsert, entry locking, and audit record are one transaction.

KEY TABLES:
  users:                   Operator records
  entries:                 Commission entries with computed splits
  payouts:                 Partner payouts (append-only)
  statements:              One per (user, period): UNIQUE(user_id, period)
  audit_logs:              Append-only mutation trail
  authorized_users:        Authorization registry
  pending_authorizations:  Queued access requests

MONEY COLUMNS:
  Monetary values are stored as decimal TEXT and parsed back with
  shopspring/decimal. REAL columns would reintroduce float drift.

INDEXES:
  Critical indexes for performance:
  - idx_entries_user_period: Period aggregation (hot path)
  - idx_entries_user_created: Recent-entry scans for anomaly checks
  - idx_audit_user_time: Audit trail reads

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/commission.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
  - auth/auth.go: Authorization registry interface
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/ledger"
)

var (
	_ ledger.Store = (*Store)(nil)
	_ auth.Store   = (*Store)(nil)
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'Africa/Nairobi',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		period TEXT NOT NULL,
		year INTEGER NOT NULL,
		split_owner TEXT NOT NULL,
		split_partner TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_user_period
		ON entries(user_id, period);
	CREATE INDEX IF NOT EXISTS idx_entries_user_created
		ON entries(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_user_year
		ON entries(user_id, year);

	CREATE TABLE IF NOT EXISTS payouts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		date_paid TEXT NOT NULL,
		period TEXT NOT NULL,
		year INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_payouts_user_period
		ON payouts(user_id, period);

	CREATE TABLE IF NOT EXISTS statements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		period TEXT NOT NULL,
		year INTEGER NOT NULL,
		total_commission TEXT NOT NULL,
		split_owner TEXT NOT NULL,
		split_partner TEXT NOT NULL,
		statement_id TEXT NOT NULL,
		closed INTEGER NOT NULL DEFAULT 1,
		generated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(user_id),
		UNIQUE(user_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_statements_user_year
		ON statements(user_id, year);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		target_id INTEGER,
		before_value TEXT,
		after_value TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_user_time
		ON audit_logs(user_id, timestamp DESC);

	CREATE TABLE IF NOT EXISTS authorized_users (
		user_id INTEGER PRIMARY KEY,
		authorized_at TEXT NOT NULL,
		authorized_by INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pending_authorizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		requested_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetOrCreateUser(ctx context.Context, id ledger.UserID, name string) (*ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if name != "" && u.Name != name {
			if _, err := s.db.ExecContext(ctx,
				"UPDATE users SET name = ? WHERE user_id = ?", name, int64(id)); err != nil {
				return nil, fmt.Errorf("update user name: %w", err)
			}
			u.Name = name
		}
		return u, nil
	}

	if name == "" {
		name = fmt.Sprintf("User_%d", id)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (user_id, name, created_at) VALUES (?, ?, ?)",
		int64(id), name, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.getUser(ctx, id)
}

func (s *Store) getUser(ctx context.Context, id ledger.UserID) (*ledger.User, error) {
	var (
		u       ledger.User
		rawID   int64
		created string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, name, timezone, created_at FROM users WHERE user_id = ?",
		int64(id),
	).Scan(&rawID, &u.Name, &u.Timezone, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.ID = ledger.UserID(rawID)
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, name, timezone, created_at FROM users ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []ledger.User
	for rows.Next() {
		var (
			u       ledger.User
			rawID   int64
			created string
		)
		if err := rows.Scan(&rawID, &u.Name, &u.Timezone, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = ledger.UserID(rawID)
		if u.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) InsertEntry(ctx context.Context, e *ledger.Entry, audit ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO entries (user_id, amount, note, created_at, period, year, split_owner, split_partner, locked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		int64(e.UserID), e.Amount.String(), e.Note, formatTime(e.CreatedAt),
		e.Period.Key(), e.Period.Year, e.SplitOwner.String(), e.SplitPartner.String(),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}

	audit.TargetID = e.ID
	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID int64, userID ledger.UserID) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		entrySelect+" WHERE id = ? AND user_id = ?",
		entryID, int64(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) DeleteEntry(ctx context.Context, entryID int64, userID ledger.UserID, audit ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Locked entries are immutable; the guard lives in the SQL so a
	// concurrent close cannot race the delete.
	res, err := tx.ExecContext(ctx,
		"DELETE FROM entries WHERE id = ? AND user_id = ? AND locked = 0",
		entryID, int64(userID),
	)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: entry %d", ledger.ErrNotFound, entryID)
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

const entrySelect = `
	SELECT id, user_id, amount, note, created_at, period, split_owner, split_partner, locked
	FROM entries`

func (s *Store) EntriesForPeriod(ctx context.Context, userID ledger.UserID, p ledger.Period) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		entrySelect+" WHERE user_id = ? AND period = ? ORDER BY created_at, id",
		int64(userID), p.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("entries for period: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) EntriesForYear(ctx context.Context, userID ledger.UserID, year int) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		entrySelect+" WHERE user_id = ? AND year = ? ORDER BY created_at, id",
		int64(userID), year,
	)
	if err != nil {
		return nil, fmt.Errorf("entries for year: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) EntriesSince(ctx context.Context, userID ledger.UserID, since time.Time) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		entrySelect+" WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC",
		int64(userID), formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("entries since: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) LastEntry(ctx context.Context, userID ledger.UserID) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		entrySelect+" WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		int64(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("last entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	for rows.Next() {
		var (
			e                      ledger.Entry
			rawUser                int64
			amount, owner, partner string
			created, period        string
			locked                 int
		)
		if err := rows.Scan(&e.ID, &rawUser, &amount, &e.Note, &created, &period, &owner, &partner, &locked); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.UserID = ledger.UserID(rawUser)
		e.Locked = locked != 0

		var err error
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if e.SplitOwner, err = decimal.NewFromString(owner); err != nil {
			return nil, fmt.Errorf("parse split_owner: %w", err)
		}
		if e.SplitPartner, err = decimal.NewFromString(partner); err != nil {
			return nil, fmt.Errorf("parse split_partner: %w", err)
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if e.Period, err = ledger.ParsePeriodKey(period); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// PAYOUTS
// =============================================================================

func (s *Store) InsertPayout(ctx context.Context, p *ledger.Payout, audit ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO payouts (user_id, amount, date_paid, period, year)
		VALUES (?, ?, ?, ?, ?)`,
		int64(p.UserID), p.Amount.String(), formatTime(p.PaidAt), p.Period.Key(), p.Period.Year,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("payout id: %w", err)
	}

	audit.TargetID = p.ID
	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payout: %w", err)
	}
	return nil
}

func (s *Store) PayoutsForPeriod(ctx context.Context, userID ledger.UserID, p ledger.Period) ([]ledger.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, date_paid, period
		FROM payouts WHERE user_id = ? AND period = ? ORDER BY date_paid, id`,
		int64(userID), p.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("payouts for period: %w", err)
	}
	defer rows.Close()

	var payouts []ledger.Payout
	for rows.Next() {
		var (
			po        ledger.Payout
			rawUser   int64
			amount    string
			paid, key string
		)
		if err := rows.Scan(&po.ID, &rawUser, &amount, &paid, &key); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		po.UserID = ledger.UserID(rawUser)
		if po.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse payout amount: %w", err)
		}
		if po.PaidAt, err = parseTime(paid); err != nil {
			return nil, err
		}
		if po.Period, err = ledger.ParsePeriodKey(key); err != nil {
			return nil, err
		}
		payouts = append(payouts, po)
	}
	return payouts, rows.Err()
}

// =============================================================================
// STATEMENTS / PERIOD CLOSE
// =============================================================================

func (s *Store) ClosePeriod(ctx context.Context, stmt *ledger.Statement, audit ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Upsert keyed by (user, period). Re-closing replaces the totals;
	// the statement id is deterministic so it never changes.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements (user_id, period, year, total_commission, split_owner, split_partner, statement_id, closed, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(user_id, period) DO UPDATE SET
			total_commission = excluded.total_commission,
			split_owner = excluded.split_owner,
			split_partner = excluded.split_partner,
			generated_at = excluded.generated_at`,
		int64(stmt.UserID), stmt.Period.Key(), stmt.Period.Year,
		stmt.TotalCommission.String(), stmt.SplitOwner.String(), stmt.SplitPartner.String(),
		stmt.StatementID, formatTime(stmt.GeneratedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert statement: %w", err)
	}

	// Locking is one-way: nothing ever sets locked back to 0.
	_, err = tx.ExecContext(ctx,
		"UPDATE entries SET locked = 1 WHERE user_id = ? AND period = ?",
		int64(stmt.UserID), stmt.Period.Key(),
	)
	if err != nil {
		return fmt.Errorf("lock entries: %w", err)
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit close: %w", err)
	}
	return nil
}

const statementSelect = `
	SELECT user_id, period, total_commission, split_owner, split_partner, statement_id, closed, generated_at
	FROM statements`

func (s *Store) Statement(ctx context.Context, userID ledger.UserID, p ledger.Period) (*ledger.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		statementSelect+" WHERE user_id = ? AND period = ?",
		int64(userID), p.Key(),
	)
	if err != nil {
		return nil, fmt.Errorf("get statement: %w", err)
	}
	defer rows.Close()

	statements, err := scanStatements(rows)
	if err != nil {
		return nil, err
	}
	if len(statements) == 0 {
		return nil, nil
	}
	return &statements[0], nil
}

func (s *Store) StatementsForYear(ctx context.Context, userID ledger.UserID, year int) ([]ledger.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		statementSelect+" WHERE user_id = ? AND year = ? ORDER BY period",
		int64(userID), year,
	)
	if err != nil {
		return nil, fmt.Errorf("statements for year: %w", err)
	}
	defer rows.Close()
	return scanStatements(rows)
}

func scanStatements(rows *sql.Rows) ([]ledger.Statement, error) {
	var statements []ledger.Statement
	for rows.Next() {
		var (
			st                    ledger.Statement
			rawUser               int64
			period                string
			total, owner, partner string
			closed                int
			generated             string
		)
		if err := rows.Scan(&rawUser, &period, &total, &owner, &partner, &st.StatementID, &closed, &generated); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		st.UserID = ledger.UserID(rawUser)
		st.Closed = closed != 0

		var err error
		if st.Period, err = ledger.ParsePeriodKey(period); err != nil {
			return nil, err
		}
		if st.TotalCommission, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		if st.SplitOwner, err = decimal.NewFromString(owner); err != nil {
			return nil, fmt.Errorf("parse split_owner: %w", err)
		}
		if st.SplitPartner, err = decimal.NewFromString(partner); err != nil {
			return nil, fmt.Errorf("parse split_partner: %w", err)
		}
		if st.GeneratedAt, err = parseTime(generated); err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}
	return statements, rows.Err()
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

func insertAudit(ctx context.Context, tx *sql.Tx, a ledger.AuditRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, action_type, user_id, target_id, before_value, after_value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Action), int64(a.ActorID), a.TargetID, a.Before, a.After, formatTime(a.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *Store) AuditTrail(ctx context.Context, userID ledger.UserID, limit int) ([]ledger.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, action_type, user_id, target_id, before_value, after_value, timestamp
		FROM audit_logs WHERE user_id = ? ORDER BY timestamp DESC`
	args := []any{int64(userID)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	defer rows.Close()

	var records []ledger.AuditRecord
	for rows.Next() {
		var (
			rec      ledger.AuditRecord
			action   string
			rawUser  int64
			targetID sql.NullInt64
			before   sql.NullString
			after    sql.NullString
			ts       string
		)
		if err := rows.Scan(&rec.ID, &action, &rawUser, &targetID, &before, &after, &ts); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Action = ledger.AuditAction(action)
		rec.ActorID = ledger.UserID(rawUser)
		rec.TargetID = targetID.Int64
		rec.Before = before.String
		rec.After = after.String
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// AUTHORIZATION REGISTRY
// =============================================================================

func (s *Store) IsAuthorized(ctx context.Context, id ledger.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM authorized_users WHERE user_id = ?", int64(id),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check authorization: %w", err)
	}
	return count > 0, nil
}

func (s *Store) Authorize(ctx context.Context, id, by ledger.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authorized_users (user_id, authorized_at, authorized_by)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		int64(id), formatTime(time.Now()), int64(by),
	)
	if err != nil {
		return fmt.Errorf("authorize user: %w", err)
	}
	return nil
}

func (s *Store) Revoke(ctx context.Context, id ledger.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM authorized_users WHERE user_id = ?", int64(id)); err != nil {
		return fmt.Errorf("revoke user: %w", err)
	}
	return nil
}

func (s *Store) AuthorizedUsers(ctx context.Context) ([]auth.AuthorizedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, authorized_at, authorized_by FROM authorized_users ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list authorized users: %w", err)
	}
	defer rows.Close()

	var users []auth.AuthorizedUser
	for rows.Next() {
		var (
			rawID, rawBy int64
			at           string
		)
		if err := rows.Scan(&rawID, &at, &rawBy); err != nil {
			return nil, fmt.Errorf("scan authorized user: %w", err)
		}
		u := auth.AuthorizedUser{
			UserID:       ledger.UserID(rawID),
			AuthorizedBy: ledger.UserID(rawBy),
		}
		if u.AuthorizedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) AddPending(ctx context.Context, id ledger.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_authorizations (user_id, name, requested_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		int64(id), name, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("add pending authorization: %w", err)
	}
	return nil
}

func (s *Store) RemovePending(ctx context.Context, id ledger.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_authorizations WHERE user_id = ?", int64(id)); err != nil {
		return fmt.Errorf("remove pending authorization: %w", err)
	}
	return nil
}

func (s *Store) PendingRequests(ctx context.Context) ([]auth.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, name, requested_at FROM pending_authorizations ORDER BY requested_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("list pending authorizations: %w", err)
	}
	defer rows.Close()

	var pending []auth.PendingRequest
	for rows.Next() {
		var (
			rawID int64
			req   auth.PendingRequest
			at    string
		)
		if err := rows.Scan(&rawID, &req.Name, &at); err != nil {
			return nil, fmt.Errorf("scan pending authorization: %w", err)
		}
		req.UserID = ledger.UserID(rawID)
		if req.RequestedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		pending = append(pending, req)
	}
	return pending, rows.Err()
}

// =============================================================================
// ADMINISTRATIVE RESET
// =============================================================================

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []string{
		"audit_logs", "statements", "payouts", "entries",
		"pending_authorizations", "authorized_users", "users",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	// Restart generated identifiers.
	_, err = tx.ExecContext(ctx,
		"DELETE FROM sqlite_sequence WHERE name IN ('entries', 'payouts', 'statements', 'pending_authorizations')",
	)
	if err != nil {
		return fmt.Errorf("reset sequences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// =============================================================================
// TIME ENCODING
// =============================================================================

// Times are stored as RFC3339 UTC text so lexical ordering in SQL
// matches chronological ordering. Same-second ties break on row id.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}
