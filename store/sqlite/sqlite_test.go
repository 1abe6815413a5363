package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/store/sqlite"
)

const testUser ledger.UserID = 42

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.GetOrCreateUser(context.Background(), testUser, "Tester")
	require.NoError(t, err)
	return s
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func auditRec(action ledger.AuditAction, at time.Time) ledger.AuditRecord {
	return ledger.AuditRecord{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   testUser,
		Timestamp: at,
	}
}

// entryAt builds an entry for July 2025 with an even split.
func entryAt(amount string, at time.Time) *ledger.Entry {
	a := dec(amount)
	owner := a.Mul(dec("0.5")).Round(2)
	return &ledger.Entry{
		UserID:       testUser,
		Amount:       a,
		CreatedAt:    at,
		Period:       ledger.Period{Year: 2025, Month: time.July},
		SplitOwner:   owner,
		SplitPartner: a.Sub(owner),
	}
}

var baseTime = time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

// ===========================================================================
// USERS
// ===========================================================================

func TestGetOrCreateUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// GIVEN: An unknown user with no name
	// THEN: A placeholder name is generated
	u, err := s.GetOrCreateUser(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.UserID(7), u.ID)
	assert.Equal(t, "User_7", u.Name)

	// WHEN: The same user arrives with a real name
	// THEN: The record is updated, not duplicated
	u, err = s.GetOrCreateUser(ctx, 7, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2) // testUser from newStore plus user 7
}

// ===========================================================================
// ENTRIES
// ===========================================================================

func TestEntryRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := entryAt("1000.01", baseTime)
	e.Note = "big deal"
	require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, baseTime)))
	assert.Equal(t, int64(1), e.ID)

	got, err := s.GetEntry(ctx, e.ID, testUser)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, dec("1000.01").Equal(got.Amount), "got %s", got.Amount)
	assert.True(t, dec("500.01").Equal(got.SplitOwner))
	assert.True(t, dec("500").Equal(got.SplitPartner))
	assert.Equal(t, "big deal", got.Note)
	assert.Equal(t, "2025-07", got.Period.Key())
	assert.True(t, got.CreatedAt.Equal(baseTime))
	assert.False(t, got.Locked)
}

func TestGetEntry_WrongUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := entryAt("100", baseTime)
	require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, baseTime)))

	got, err := s.GetEntry(ctx, e.ID, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntriesForPeriod_Ordering(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// Inserted out of chronological order.
	second := entryAt("200", baseTime.Add(time.Hour))
	first := entryAt("100", baseTime)
	require.NoError(t, s.InsertEntry(ctx, second, auditRec(ledger.AuditAdd, baseTime)))
	require.NoError(t, s.InsertEntry(ctx, first, auditRec(ledger.AuditAdd, baseTime)))

	entries, err := s.EntriesForPeriod(ctx, testUser, ledger.Period{Year: 2025, Month: time.July})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, dec("100").Equal(entries[0].Amount))
	assert.True(t, dec("200").Equal(entries[1].Amount))
}

func TestEntriesSince(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	old := entryAt("100", baseTime.Add(-10*time.Minute))
	recent := entryAt("200", baseTime.Add(-30*time.Second))
	newest := entryAt("300", baseTime)
	for _, e := range []*ledger.Entry{old, recent, newest} {
		require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, e.CreatedAt)))
	}

	entries, err := s.EntriesSince(ctx, testUser, baseTime.Add(-2*time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.True(t, dec("300").Equal(entries[0].Amount))
	assert.True(t, dec("200").Equal(entries[1].Amount))
}

func TestLastEntry(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	none, err := s.LastEntry(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.InsertEntry(ctx, entryAt("100", baseTime), auditRec(ledger.AuditAdd, baseTime)))
	latest := entryAt("200", baseTime.Add(time.Minute))
	require.NoError(t, s.InsertEntry(ctx, latest, auditRec(ledger.AuditAdd, latest.CreatedAt)))

	got, err := s.LastEntry(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, dec("200").Equal(got.Amount))
}

func TestDeleteEntry(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := entryAt("100", baseTime)
	require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, baseTime)))

	err := s.DeleteEntry(ctx, e.ID, testUser, auditRec(ledger.AuditUndo, baseTime.Add(time.Second)))
	require.NoError(t, err)

	got, err := s.GetEntry(ctx, e.ID, testUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteEntry_Missing(t *testing.T) {
	s := newStore(t)

	err := s.DeleteEntry(context.Background(), 12345, testUser, auditRec(ledger.AuditUndo, baseTime))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteEntry_Locked(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := entryAt("100", baseTime)
	require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, baseTime)))
	closeJuly(t, s, "100")

	err := s.DeleteEntry(ctx, e.ID, testUser, auditRec(ledger.AuditUndo, baseTime))
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// The entry survives.
	got, err := s.GetEntry(ctx, e.ID, testUser)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Locked)
}

// ===========================================================================
// PAYOUTS
// ===========================================================================

func TestPayoutRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p := &ledger.Payout{
		UserID: testUser,
		Amount: dec("250.50"),
		PaidAt: baseTime,
		Period: ledger.Period{Year: 2025, Month: time.July},
	}
	require.NoError(t, s.InsertPayout(ctx, p, auditRec(ledger.AuditPayout, baseTime)))
	assert.Equal(t, int64(1), p.ID)

	payouts, err := s.PayoutsForPeriod(ctx, testUser, p.Period)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.True(t, dec("250.50").Equal(payouts[0].Amount))
	assert.True(t, payouts[0].PaidAt.Equal(baseTime))
	assert.Equal(t, "2025-07", payouts[0].Period.Key())
}

// ===========================================================================
// STATEMENTS / PERIOD CLOSE
// ===========================================================================

func closeJuly(t *testing.T, s *sqlite.Store, total string) {
	t.Helper()
	tot := dec(total)
	owner := tot.Mul(dec("0.5")).Round(2)
	p := ledger.Period{Year: 2025, Month: time.July}
	stmt := &ledger.Statement{
		StatementID:     ledger.StatementID(testUser, p),
		UserID:          testUser,
		Period:          p,
		TotalCommission: tot,
		SplitOwner:      owner,
		SplitPartner:    tot.Sub(owner),
		Closed:          true,
		GeneratedAt:     baseTime,
	}
	require.NoError(t, s.ClosePeriod(context.Background(), stmt, auditRec(ledger.AuditPeriodClose, baseTime)))
}

func TestClosePeriod_LocksAndStores(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	july := ledger.Period{Year: 2025, Month: time.July}

	require.NoError(t, s.InsertEntry(ctx, entryAt("700", baseTime), auditRec(ledger.AuditAdd, baseTime)))
	require.NoError(t, s.InsertEntry(ctx, entryAt("300", baseTime.Add(time.Minute)), auditRec(ledger.AuditAdd, baseTime)))

	closeJuly(t, s, "1000")

	stmt, err := s.Statement(ctx, testUser, july)
	require.NoError(t, err)
	require.NotNil(t, stmt)
	assert.Equal(t, "STMT-42-2025-07", stmt.StatementID)
	assert.True(t, dec("1000").Equal(stmt.TotalCommission))
	assert.True(t, stmt.Closed)

	entries, err := s.EntriesForPeriod(ctx, testUser, july)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.Locked, "entry %d should be locked", e.ID)
	}
}

func TestClosePeriod_UpsertOnReclose(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	closeJuly(t, s, "1000")
	closeJuly(t, s, "1200")

	statements, err := s.StatementsForYear(ctx, testUser, 2025)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.True(t, dec("1200").Equal(statements[0].TotalCommission))
	assert.Equal(t, "STMT-42-2025-07", statements[0].StatementID)
}

func TestStatement_Absent(t *testing.T) {
	s := newStore(t)

	stmt, err := s.Statement(context.Background(), testUser, ledger.Period{Year: 2025, Month: time.June})
	require.NoError(t, err)
	assert.Nil(t, stmt)
}

// ===========================================================================
// AUDIT TRAIL
// ===========================================================================

func TestAuditTrail_NewestFirstWithLimit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// Distinct seconds so the timestamp ordering is unambiguous.
	for i := 0; i < 3; i++ {
		at := baseTime.Add(time.Duration(i) * time.Second)
		e := entryAt("100", at)
		require.NoError(t, s.InsertEntry(ctx, e, auditRec(ledger.AuditAdd, at)))
	}

	trail, err := s.AuditTrail(ctx, testUser, 0)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.True(t, trail[0].Timestamp.After(trail[1].Timestamp))
	assert.True(t, trail[1].Timestamp.After(trail[2].Timestamp))
	assert.Equal(t, ledger.AuditAdd, trail[0].Action)

	limited, err := s.AuditTrail(ctx, testUser, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, trail[0].ID, limited[0].ID)
}

// ===========================================================================
// AUTHORIZATION REGISTRY
// ===========================================================================

func TestAuthorizationLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.IsAuthorized(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddPending(ctx, 99, "Bob"))
	require.NoError(t, s.AddPending(ctx, 99, "Bob")) // idempotent

	pending, err := s.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ledger.UserID(99), pending[0].UserID)
	assert.Equal(t, "Bob", pending[0].Name)

	require.NoError(t, s.Authorize(ctx, 99, testUser))
	require.NoError(t, s.RemovePending(ctx, 99))

	ok, err = s.IsAuthorized(ctx, 99)
	require.NoError(t, err)
	assert.True(t, ok)

	users, err := s.AuthorizedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, ledger.UserID(99), users[0].UserID)
	assert.Equal(t, testUser, users[0].AuthorizedBy)

	pending, err = s.PendingRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.Revoke(ctx, 99))
	ok, err = s.IsAuthorized(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ===========================================================================
// RESET
// ===========================================================================

func TestReset_ClearsDataAndRestartsIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := entryAt("100", baseTime)
	require.NoError(t, s.InsertEntry(ctx, first, auditRec(ledger.AuditAdd, baseTime)))
	second := entryAt("200", baseTime.Add(time.Second))
	require.NoError(t, s.InsertEntry(ctx, second, auditRec(ledger.AuditAdd, second.CreatedAt)))
	assert.Equal(t, int64(2), second.ID)
	require.NoError(t, s.Authorize(ctx, 99, testUser))

	require.NoError(t, s.Reset(ctx))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	ok, err := s.IsAuthorized(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	trail, err := s.AuditTrail(ctx, testUser, 0)
	require.NoError(t, err)
	assert.Empty(t, trail)

	// Identifiers restart from 1.
	_, err = s.GetOrCreateUser(ctx, testUser, "Tester")
	require.NoError(t, err)
	fresh := entryAt("300", baseTime)
	require.NoError(t, s.InsertEntry(ctx, fresh, auditRec(ledger.AuditAdd, baseTime)))
	assert.Equal(t, int64(1), fresh.ID)
}
