/*
Package settlement derives presentation-ready statistics from ledger
entries, payouts, and closed-period statements.

PURPOSE:
  Pure calculators, no persistence and no side effects: the caller loads
  the rows, settlement folds them into the numbers the boundary layer
  renders. All monetary sums are decimal; no floating-point accumulation
  anywhere a monetary value is summed.

SEE ALSO:
  - yearly.go: Cross-period aggregation over statements
*/
package settlement

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/ledger"
)

// =============================================================================
// MONTHLY STATISTICS
// =============================================================================

// MonthlyStats summarizes one period's entries and payouts.
type MonthlyStats struct {
	TotalCommission decimal.Decimal
	SplitOwner      decimal.Decimal
	SplitPartner    decimal.Decimal
	EntriesCount    int

	// Largest/Smallest are nil when there are no entries. Ties keep the
	// first entry encountered in input order.
	Largest  *ledger.Entry
	Smallest *ledger.Entry

	DailyTotals  map[string]decimal.Decimal // keyed "YYYY-MM-DD" (UTC)
	WeeklyTotals map[string]decimal.Decimal // keyed "Week N" (ISO week)

	DaysActive int
	// DaysInactive is periodLength - DaysActive. The period length is a
	// configuration constant, not the actual calendar month length - a
	// documented limitation carried for report stability.
	DaysInactive int

	AveragePerEntry decimal.Decimal // zero when no entries
	TotalPayouts    decimal.Decimal
	// OwedToPartner = SplitPartner - TotalPayouts. May be negative when
	// overpaid; deliberately not clamped.
	OwedToPartner decimal.Decimal
}

// Monthly folds entries and payouts into a MonthlyStats.
func Monthly(entries []ledger.Entry, payouts []ledger.Payout, periodLengthDays int) MonthlyStats {
	stats := MonthlyStats{
		TotalCommission: decimal.Zero,
		SplitOwner:      decimal.Zero,
		SplitPartner:    decimal.Zero,
		DailyTotals:     make(map[string]decimal.Decimal),
		WeeklyTotals:    make(map[string]decimal.Decimal),
		AveragePerEntry: decimal.Zero,
		TotalPayouts:    decimal.Zero,
	}

	activeDays := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		stats.TotalCommission = stats.TotalCommission.Add(e.Amount)
		stats.SplitOwner = stats.SplitOwner.Add(e.SplitOwner)
		stats.SplitPartner = stats.SplitPartner.Add(e.SplitPartner)

		if stats.Largest == nil || e.Amount.GreaterThan(stats.Largest.Amount) {
			stats.Largest = e
		}
		if stats.Smallest == nil || e.Amount.LessThan(stats.Smallest.Amount) {
			stats.Smallest = e
		}

		day := DayKey(e.CreatedAt)
		week := WeekKey(e.CreatedAt)
		stats.DailyTotals[day] = stats.DailyTotals[day].Add(e.Amount)
		stats.WeeklyTotals[week] = stats.WeeklyTotals[week].Add(e.Amount)
		activeDays[day] = struct{}{}
	}

	stats.EntriesCount = len(entries)
	stats.DaysActive = len(activeDays)
	stats.DaysInactive = periodLengthDays - stats.DaysActive
	if len(entries) > 0 {
		stats.AveragePerEntry = stats.TotalCommission.Div(decimal.NewFromInt(int64(len(entries))))
	}

	for _, p := range payouts {
		stats.TotalPayouts = stats.TotalPayouts.Add(p.Amount)
	}
	stats.OwedToPartner = stats.SplitPartner.Sub(stats.TotalPayouts)

	return stats
}

// DayKey buckets a UTC timestamp by calendar day.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey buckets a timestamp by ISO week, matching the report labels
// operators already know ("Week 33").
func WeekKey(t time.Time) string {
	_, week := t.ISOWeek()
	return fmt.Sprintf("Week %d", week)
}

// WeekTotal is one ranked week in a top-weeks listing.
type WeekTotal struct {
	Week  string
	Total decimal.Decimal
}

// rankWeeks sorts weekly totals by total descending, week label
// ascending on ties, and truncates to n.
func rankWeeks(weekly map[string]decimal.Decimal, n int) []WeekTotal {
	ranked := make([]WeekTotal, 0, len(weekly))
	for week, total := range weekly {
		ranked = append(ranked, WeekTotal{Week: week, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Week < ranked[j].Week
		}
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
