package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/ledger/store"
)

// recordingNotifier captures scheduler events for assertion.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, _ ledger.UserID, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) count(kind EventKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Kind == kind {
			c++
		}
	}
	return c
}

func newTestScheduler(t *testing.T, at time.Time) (*Scheduler, *store.Memory, *recordingNotifier) {
	t.Helper()

	mem := store.NewMemory()
	cfg := &config.Config{
		Timezone:          time.UTC,
		Split:             ledger.EvenSplit(),
		UndoWindow:        5 * time.Minute,
		DuplicateWindow:   2 * time.Minute,
		ExtremeMultiplier: decimal.NewFromInt(2),
		ZeroActivityDays:  7,
		PeriodLengthDays:  30,
		OwnerID:           ownerID,
	}
	svc := ledger.NewService(mem, cfg.LedgerConfig())
	_ = auth.NewService(mem, cfg.OwnerID)

	notifier := &recordingNotifier{}
	sched := NewScheduler(svc, mem, cfg, notifier)
	sched.now = func() time.Time { return at }

	_, err := mem.GetOrCreateUser(context.Background(), ownerID, "Owner")
	require.NoError(t, err)
	return sched, mem, notifier
}

func insertEntry(t *testing.T, mem *store.Memory, amount string, at time.Time) {
	t.Helper()
	a, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	owner := a.Mul(decimal.New(5, -1)).Round(2)
	e := &ledger.Entry{
		UserID:       ownerID,
		Amount:       a,
		CreatedAt:    at,
		Period:       ledger.PeriodOf(at, time.UTC),
		SplitOwner:   owner,
		SplitPartner: a.Sub(owner),
	}
	require.NoError(t, mem.InsertEntry(context.Background(), e, ledger.AuditRecord{
		ID: "test", Action: ledger.AuditAdd, ActorID: ownerID, Timestamp: at,
	}))
}

func TestScheduler_MonthEndClose(t *testing.T) {
	// July 31 2025 is a Thursday; 23:30 is inside the close window.
	at := time.Date(2025, time.July, 31, 23, 30, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "700", at.Add(-2*time.Hour))
	insertEntry(t, mem, "300", at.Add(-time.Hour))

	sched.RunNow()

	stmt, err := mem.Statement(context.Background(), ownerID, ledger.Period{Year: 2025, Month: time.July})
	require.NoError(t, err)
	require.NotNil(t, stmt)
	assert.Equal(t, "1000", stmt.TotalCommission.String())
	assert.Equal(t, 1, notifier.count(EventPeriodClosed))

	// A second sweep finds the statement and does not close again.
	sched.RunNow()
	assert.Equal(t, 1, notifier.count(EventPeriodClosed))
}

func TestScheduler_CatchUpClose(t *testing.T) {
	// Mid-month sweep after downtime across the boundary: June has
	// entries but no statement.
	at := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "500", time.Date(2025, time.June, 20, 10, 0, 0, 0, time.UTC))

	sched.RunNow()

	stmt, err := mem.Statement(context.Background(), ownerID, ledger.Period{Year: 2025, Month: time.June})
	require.NoError(t, err)
	require.NotNil(t, stmt)
	assert.Equal(t, "STMT-100-2025-06", stmt.StatementID)
	assert.Equal(t, 1, notifier.count(EventPeriodClosed))
}

func TestScheduler_WeeklySummaryOnce(t *testing.T) {
	// July 4 2025 is a Friday.
	at := time.Date(2025, time.July, 4, 19, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "100", at.Add(-time.Hour))

	sched.RunNow()
	sched.RunNow()
	assert.Equal(t, 1, notifier.count(EventWeeklySummary))
}

func TestScheduler_NewPeriodOnce(t *testing.T) {
	at := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "100", at.Add(-time.Hour))

	sched.RunNow()
	sched.RunNow()
	assert.Equal(t, 1, notifier.count(EventNewPeriod))
}

func TestScheduler_PayoutReminder(t *testing.T) {
	at := time.Date(2025, time.July, 28, 19, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	// 1000 recorded, nothing paid out: 500 owed.
	insertEntry(t, mem, "1000", at.Add(-time.Hour))

	sched.RunNow()
	sched.RunNow()
	assert.Equal(t, 1, notifier.count(EventPayoutReminder))
}

func TestScheduler_PayoutReminder_NothingOwed(t *testing.T) {
	at := time.Date(2025, time.July, 28, 19, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "1000", at.Add(-time.Hour))
	require.NoError(t, mem.InsertPayout(context.Background(), &ledger.Payout{
		UserID: ownerID,
		Amount: decimal.NewFromInt(500),
		PaidAt: at.Add(-30 * time.Minute),
		Period: ledger.Period{Year: 2025, Month: time.July},
	}, ledger.AuditRecord{ID: "test-payout", Action: ledger.AuditPayout, ActorID: ownerID, Timestamp: at}))

	sched.RunNow()
	assert.Equal(t, 0, notifier.count(EventPayoutReminder))
}

func TestScheduler_ZeroActivity(t *testing.T) {
	at := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	// Last entry ten days back; horizon is seven.
	insertEntry(t, mem, "100", at.AddDate(0, 0, -10))

	sched.RunNow()
	sched.RunNow()
	assert.Equal(t, 1, notifier.count(EventZeroActivity))
}

func TestScheduler_ZeroActivity_RecentEntry(t *testing.T) {
	at := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	sched, mem, notifier := newTestScheduler(t, at)

	insertEntry(t, mem, "100", at.AddDate(0, 0, -2))

	sched.RunNow()
	assert.Equal(t, 0, notifier.count(EventZeroActivity))
}
