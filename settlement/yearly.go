/*
yearly.go - Cross-period aggregation over closed statements

PURPOSE:
  Folds a year's statements (and optionally the raw entries) into the
  yearly report: totals, best and worst months, average per active
  month, and the top five weeks by total. The week ranking comes only
  from entries actually supplied - with none, the list is empty, never
  fabricated.
*/
package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/ledger"
)

// =============================================================================
// YEARLY STATISTICS
// =============================================================================

// MonthTotal is one period's line in the yearly breakdown.
type MonthTotal struct {
	Period       ledger.Period
	Total        decimal.Decimal
	SplitOwner   decimal.Decimal
	SplitPartner decimal.Decimal
	StatementID  string
}

// YearlyStats summarizes a year of closed statements.
type YearlyStats struct {
	TotalCommission decimal.Decimal
	SplitOwner      decimal.Decimal
	SplitPartner    decimal.Decimal
	MonthsActive    int

	Breakdown []MonthTotal // ordered by period ascending

	// LargestMonth/SmallestMonth are nil with no statements. Ties keep
	// the first statement encountered in input order.
	LargestMonth  *ledger.Statement
	SmallestMonth *ledger.Statement

	AveragePerMonth decimal.Decimal // per active month; zero when none
	TotalEntries    int
	TopWeeks        []WeekTotal // top 5 by total; empty without entries
}

// Yearly folds statements and optional raw entries into a YearlyStats.
func Yearly(statements []ledger.Statement, entries []ledger.Entry) YearlyStats {
	stats := YearlyStats{
		TotalCommission: decimal.Zero,
		SplitOwner:      decimal.Zero,
		SplitPartner:    decimal.Zero,
		AveragePerMonth: decimal.Zero,
	}

	for i := range statements {
		s := &statements[i]
		stats.TotalCommission = stats.TotalCommission.Add(s.TotalCommission)
		stats.SplitOwner = stats.SplitOwner.Add(s.SplitOwner)
		stats.SplitPartner = stats.SplitPartner.Add(s.SplitPartner)

		stats.Breakdown = append(stats.Breakdown, MonthTotal{
			Period:       s.Period,
			Total:        s.TotalCommission,
			SplitOwner:   s.SplitOwner,
			SplitPartner: s.SplitPartner,
			StatementID:  s.StatementID,
		})

		if stats.LargestMonth == nil || s.TotalCommission.GreaterThan(stats.LargestMonth.TotalCommission) {
			stats.LargestMonth = s
		}
		if stats.SmallestMonth == nil || s.TotalCommission.LessThan(stats.SmallestMonth.TotalCommission) {
			stats.SmallestMonth = s
		}
	}

	sort.Slice(stats.Breakdown, func(i, j int) bool {
		a, b := stats.Breakdown[i].Period, stats.Breakdown[j].Period
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	stats.MonthsActive = len(statements)
	if len(statements) > 0 {
		stats.AveragePerMonth = stats.TotalCommission.Div(decimal.NewFromInt(int64(len(statements))))
	}

	if len(entries) > 0 {
		weekly := make(map[string]decimal.Decimal)
		for _, e := range entries {
			week := WeekKey(e.CreatedAt)
			weekly[week] = weekly[week].Add(e.Amount)
		}
		stats.TopWeeks = rankWeeks(weekly, 5)
	}
	stats.TotalEntries = len(entries)

	return stats
}
