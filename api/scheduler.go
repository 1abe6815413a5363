/*
scheduler.go - Automated period-close and reminder scheduler

PURPOSE:
  Periodically sweeps all users and runs the time-driven jobs: closing
  the period at month end, catching up closes missed during downtime,
  and sending the recurring reminders.

JOBS (all times in the configured accounting timezone):
  - Month-end close:  last day of the month from 23:00, closes the
                      current period for every user with entries
  - Catch-up close:   any sweep; closes the previous period if it has
                      entries but no statement yet (downtime recovery)
  - Weekly summary:   Friday from 18:00
  - New period:       1st of the month
  - Payout reminder:  28th from 18:00, only when something is owed
  - Zero activity:    daily, when a user has been inactive past the
                      configured horizon

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Period closes are idempotent through the store: a sweep that fires
    twice finds the statement already written and skips
  - Reminders are deduplicated with an in-memory fired set, keyed by
    job and period; a restart may repeat a reminder, never a close

USAGE:
  scheduler := NewScheduler(svc, store, cfg, notifier)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - ledger/close.go: ClosePeriod semantics
  - handlers.go: Manual close endpoint
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/settlement"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// EventKind labels a scheduler notification.
type EventKind string

const (
	EventWeeklySummary  EventKind = "weekly_summary"
	EventPeriodClosed   EventKind = "period_closed"
	EventNewPeriod      EventKind = "new_period"
	EventPayoutReminder EventKind = "payout_reminder"
	EventZeroActivity   EventKind = "zero_activity"
)

// Event is a scheduler notification for one user.
type Event struct {
	Kind   EventKind
	Period string
	Detail string
}

// Notifier delivers scheduler events to users. Implementations talk to
// whatever front is in use (bot, email, webhook).
type Notifier interface {
	Notify(ctx context.Context, userID ledger.UserID, ev Event) error
}

// LogNotifier writes events to the structured log. The default when no
// delivery channel is wired up.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID ledger.UserID, ev Event) error {
	slog.Info("notification",
		"user_id", int64(userID),
		"kind", string(ev.Kind),
		"period", ev.Period,
		"detail", ev.Detail,
	)
	return nil
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler handles automated period closes and reminders.
type Scheduler struct {
	Ledger        *ledger.Service
	Store         ledger.Store
	Cfg           *config.Config
	Notifier      Notifier
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex

	// now is swappable in tests.
	now func() time.Time

	// fired dedupes reminders within the process lifetime.
	firedMu sync.Mutex
	fired   map[string]bool
}

// NewScheduler creates a new scheduler.
func NewScheduler(svc *ledger.Service, store ledger.Store, cfg *config.Config, notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		Ledger:        svc,
		Store:         store,
		Cfg:           cfg,
		Notifier:      notifier,
		CheckInterval: 5 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
		now:           time.Now,
		fired:         make(map[string]bool),
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		slog.Info("scheduler disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	slog.Info("scheduler started", "check_interval", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		slog.Info("scheduler stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.checkAndProcess()

	for {
		select {
		case <-s.ticker.C:
			s.checkAndProcess()
		case <-s.stop:
			return
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	s.checkAndProcess()
}

func (s *Scheduler) checkAndProcess() {
	ctx := context.Background()
	now := s.now().In(s.Cfg.Timezone)

	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		slog.Error("scheduler: list users", "error", err)
		return
	}

	for _, u := range users {
		s.processUser(ctx, u.ID, now)
	}
}

func (s *Scheduler) processUser(ctx context.Context, userID ledger.UserID, now time.Time) {
	resolver := s.Ledger.Resolver()
	current := resolver.Current(now)

	s.catchUpClose(ctx, userID, current.Previous())

	if isLastDayOfMonth(now) && now.Hour() >= 23 {
		s.closePeriod(ctx, userID, current)
	}

	if now.Weekday() == time.Friday && now.Hour() >= 18 {
		s.weeklySummary(ctx, userID, current, now)
	}

	if now.Day() == 1 {
		s.notifyOnce(ctx, userID, Event{
			Kind:   EventNewPeriod,
			Period: current.Key(),
			Detail: fmt.Sprintf("new period %s started", current.Key()),
		}, "new-period:"+current.Key())
	}

	if now.Day() == 28 && now.Hour() >= 18 {
		s.payoutReminder(ctx, userID, current)
	}

	s.zeroActivity(ctx, userID, now)
}

// catchUpClose closes the previous period if entries exist without a
// statement. Covers downtime across the month boundary.
func (s *Scheduler) catchUpClose(ctx context.Context, userID ledger.UserID, prev ledger.Period) {
	stmt, err := s.Store.Statement(ctx, userID, prev)
	if err != nil {
		slog.Error("scheduler: load statement", "user_id", int64(userID), "error", err)
		return
	}
	if stmt != nil {
		return
	}

	entries, err := s.Store.EntriesForPeriod(ctx, userID, prev)
	if err != nil {
		slog.Error("scheduler: load entries", "user_id", int64(userID), "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	s.closePeriod(ctx, userID, prev)
}

func (s *Scheduler) closePeriod(ctx context.Context, userID ledger.UserID, p ledger.Period) {
	// Idempotence lives in the store: an existing statement means a
	// previous sweep already closed this period.
	stmt, err := s.Store.Statement(ctx, userID, p)
	if err != nil {
		slog.Error("scheduler: load statement", "user_id", int64(userID), "error", err)
		return
	}
	if stmt != nil {
		return
	}

	stmtID, err := s.Ledger.ClosePeriod(ctx, userID, p)
	if err != nil {
		slog.Error("scheduler: close period",
			"user_id", int64(userID), "period", p.Key(), "error", err)
		return
	}

	slog.Info("scheduler: period closed",
		"user_id", int64(userID), "period", p.Key(), "statement_id", stmtID)

	s.notify(ctx, userID, Event{
		Kind:   EventPeriodClosed,
		Period: p.Key(),
		Detail: "statement " + stmtID,
	})
}

func (s *Scheduler) weeklySummary(ctx context.Context, userID ledger.UserID, current ledger.Period, now time.Time) {
	year, week := now.ISOWeek()
	key := fmt.Sprintf("weekly:%d-%d", year, week)

	stats, ok := s.monthlyStats(ctx, userID, current)
	if !ok {
		return
	}

	s.notifyOnce(ctx, userID, Event{
		Kind:   EventWeeklySummary,
		Period: current.Key(),
		Detail: fmt.Sprintf("total=%s entries=%d", stats.TotalCommission, stats.EntriesCount),
	}, key)
}

func (s *Scheduler) payoutReminder(ctx context.Context, userID ledger.UserID, current ledger.Period) {
	stats, ok := s.monthlyStats(ctx, userID, current)
	if !ok {
		return
	}
	if !stats.OwedToPartner.IsPositive() {
		return
	}

	s.notifyOnce(ctx, userID, Event{
		Kind:   EventPayoutReminder,
		Period: current.Key(),
		Detail: "owed " + stats.OwedToPartner.String(),
	}, "payout:"+current.Key())
}

func (s *Scheduler) zeroActivity(ctx context.Context, userID ledger.UserID, now time.Time) {
	last, err := s.Store.LastEntry(ctx, userID)
	if err != nil {
		slog.Error("scheduler: load last entry", "user_id", int64(userID), "error", err)
		return
	}
	if last == nil {
		return
	}

	horizon := time.Duration(s.Cfg.ZeroActivityDays) * 24 * time.Hour
	idle := now.UTC().Sub(last.CreatedAt)
	if idle < horizon {
		return
	}

	days := int(idle.Hours() / 24)
	s.notifyOnce(ctx, userID, Event{
		Kind:   EventZeroActivity,
		Detail: fmt.Sprintf("no entries for %d days", days),
	}, "inactive:"+now.Format("2006-01-02"))
}

func (s *Scheduler) monthlyStats(ctx context.Context, userID ledger.UserID, p ledger.Period) (settlement.MonthlyStats, bool) {
	entries, err := s.Store.EntriesForPeriod(ctx, userID, p)
	if err != nil {
		slog.Error("scheduler: load entries", "user_id", int64(userID), "error", err)
		return settlement.MonthlyStats{}, false
	}
	payouts, err := s.Store.PayoutsForPeriod(ctx, userID, p)
	if err != nil {
		slog.Error("scheduler: load payouts", "user_id", int64(userID), "error", err)
		return settlement.MonthlyStats{}, false
	}
	return settlement.Monthly(entries, payouts, s.Cfg.PeriodLengthDays), true
}

func (s *Scheduler) notify(ctx context.Context, userID ledger.UserID, ev Event) {
	if err := s.Notifier.Notify(ctx, userID, ev); err != nil {
		slog.Error("scheduler: notify",
			"user_id", int64(userID), "kind", string(ev.Kind), "error", err)
	}
}

// notifyOnce suppresses repeats of the same event within the process
// lifetime. key must include the user-independent period component;
// the user id is appended here.
func (s *Scheduler) notifyOnce(ctx context.Context, userID ledger.UserID, ev Event, key string) {
	full := fmt.Sprintf("%s:%d", key, userID)

	s.firedMu.Lock()
	if s.fired[full] {
		s.firedMu.Unlock()
		return
	}
	s.fired[full] = true
	s.firedMu.Unlock()

	s.notify(ctx, userID, ev)
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}
