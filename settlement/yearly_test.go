package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/settlement"
)

func statement(month time.Month, total string) ledger.Statement {
	p := ledger.Period{Year: 2025, Month: month}
	t := dec(total)
	owner := t.Mul(dec("0.5")).Round(2)
	return ledger.Statement{
		StatementID:     ledger.StatementID(1, p),
		UserID:          1,
		Period:          p,
		TotalCommission: t,
		SplitOwner:      owner,
		SplitPartner:    t.Sub(owner),
		Closed:          true,
	}
}

func TestYearly_TotalsAndExtremes(t *testing.T) {
	// GIVEN: January closed at 1000, February at 500
	// WHEN: Computing yearly stats
	// THEN: total 1500, largest January, average 750

	statements := []ledger.Statement{
		statement(time.February, "500"),
		statement(time.January, "1000"),
	}

	stats := settlement.Yearly(statements, nil)

	assert.True(t, dec("1500").Equal(stats.TotalCommission), "got %s", stats.TotalCommission)
	assert.Equal(t, 2, stats.MonthsActive)
	assert.True(t, dec("750").Equal(stats.AveragePerMonth), "got %s", stats.AveragePerMonth)

	require.NotNil(t, stats.LargestMonth)
	require.NotNil(t, stats.SmallestMonth)
	assert.Equal(t, "2025-01", stats.LargestMonth.Period.Key())
	assert.Equal(t, "2025-02", stats.SmallestMonth.Period.Key())
}

func TestYearly_BreakdownSortedByPeriod(t *testing.T) {
	statements := []ledger.Statement{
		statement(time.March, "300"),
		statement(time.January, "100"),
		statement(time.February, "200"),
	}

	stats := settlement.Yearly(statements, nil)

	require.Len(t, stats.Breakdown, 3)
	assert.Equal(t, "2025-01", stats.Breakdown[0].Period.Key())
	assert.Equal(t, "2025-02", stats.Breakdown[1].Period.Key())
	assert.Equal(t, "2025-03", stats.Breakdown[2].Period.Key())
	assert.Equal(t, "STMT-1-2025-01", stats.Breakdown[0].StatementID)
}

func TestYearly_SplitHalvesSumToTotal(t *testing.T) {
	statements := []ledger.Statement{
		statement(time.January, "1000.01"),
		statement(time.February, "333.33"),
	}

	stats := settlement.Yearly(statements, nil)

	assert.True(t, stats.SplitOwner.Add(stats.SplitPartner).Equal(stats.TotalCommission))
}

func TestYearly_TopWeeksOnlyWithEntries(t *testing.T) {
	// GIVEN: Statements but no raw entries
	// THEN: No fabricated week ranking

	stats := settlement.Yearly([]ledger.Statement{statement(time.January, "1000")}, nil)
	assert.Empty(t, stats.TopWeeks)
	assert.Equal(t, 0, stats.TotalEntries)

	// WHEN: Entries are supplied
	// THEN: Weeks ranked by total descending, capped at five
	entries := []ledger.Entry{
		entry(1, "100", 1),  // week 27
		entry(2, "500", 8),  // week 28
		entry(3, "200", 15), // week 29
	}

	stats = settlement.Yearly([]ledger.Statement{statement(time.July, "800")}, entries)

	require.Len(t, stats.TopWeeks, 3)
	assert.Equal(t, "Week 28", stats.TopWeeks[0].Week)
	assert.True(t, dec("500").Equal(stats.TopWeeks[0].Total))
	assert.Equal(t, "Week 29", stats.TopWeeks[1].Week)
	assert.Equal(t, "Week 27", stats.TopWeeks[2].Week)
	assert.Equal(t, 3, stats.TotalEntries)
}

func TestYearly_Empty(t *testing.T) {
	stats := settlement.Yearly(nil, nil)

	assert.True(t, stats.TotalCommission.IsZero())
	assert.Nil(t, stats.LargestMonth)
	assert.Nil(t, stats.SmallestMonth)
	assert.True(t, stats.AveragePerMonth.IsZero())
	assert.Empty(t, stats.Breakdown)
}
