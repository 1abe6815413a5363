package settlement_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/settlement"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// entry builds a 50/50 split entry at the given day of July 2025.
func entry(id int64, amount string, day int) ledger.Entry {
	a := dec(amount)
	owner := a.Mul(dec("0.5")).Round(2)
	return ledger.Entry{
		ID:           id,
		UserID:       1,
		Amount:       a,
		CreatedAt:    time.Date(2025, time.July, day, 10, 0, 0, 0, time.UTC),
		Period:       ledger.Period{Year: 2025, Month: time.July},
		SplitOwner:   owner,
		SplitPartner: a.Sub(owner),
	}
}

func payout(amount string, day int) ledger.Payout {
	return ledger.Payout{
		UserID: 1,
		Amount: dec(amount),
		PaidAt: time.Date(2025, time.July, day, 18, 0, 0, 0, time.UTC),
		Period: ledger.Period{Year: 2025, Month: time.July},
	}
}

func TestMonthly_TotalsAndOwed(t *testing.T) {
	// GIVEN: Entries of 700 and 300 and a 200 payout
	// WHEN: Computing monthly stats
	// THEN: total 1000, partner share 500, owed 300

	entries := []ledger.Entry{entry(1, "700", 3), entry(2, "300", 10)}
	payouts := []ledger.Payout{payout("200", 15)}

	stats := settlement.Monthly(entries, payouts, 30)

	assert.True(t, dec("1000").Equal(stats.TotalCommission), "got %s", stats.TotalCommission)
	assert.True(t, dec("500").Equal(stats.SplitOwner))
	assert.True(t, dec("500").Equal(stats.SplitPartner))
	assert.True(t, dec("200").Equal(stats.TotalPayouts))
	assert.True(t, dec("300").Equal(stats.OwedToPartner), "got %s", stats.OwedToPartner)
	assert.Equal(t, 2, stats.EntriesCount)
}

func TestMonthly_OverpaidGoesNegative(t *testing.T) {
	// Overpayment is reported as a negative balance, not clamped.
	entries := []ledger.Entry{entry(1, "100", 3)}
	payouts := []ledger.Payout{payout("80", 5)}

	stats := settlement.Monthly(entries, payouts, 30)

	assert.True(t, dec("-30").Equal(stats.OwedToPartner), "got %s", stats.OwedToPartner)
}

func TestMonthly_LargestSmallestAndAverage(t *testing.T) {
	entries := []ledger.Entry{
		entry(1, "250", 2),
		entry(2, "1000", 5),
		entry(3, "100", 9),
	}

	stats := settlement.Monthly(entries, nil, 30)

	require.NotNil(t, stats.Largest)
	require.NotNil(t, stats.Smallest)
	assert.Equal(t, int64(2), stats.Largest.ID)
	assert.Equal(t, int64(3), stats.Smallest.ID)
	assert.True(t, dec("450").Equal(stats.AveragePerEntry), "got %s", stats.AveragePerEntry)
}

func TestMonthly_TiesKeepFirstEntry(t *testing.T) {
	entries := []ledger.Entry{entry(1, "500", 2), entry(2, "500", 8)}

	stats := settlement.Monthly(entries, nil, 30)

	assert.Equal(t, int64(1), stats.Largest.ID)
	assert.Equal(t, int64(1), stats.Smallest.ID)
}

func TestMonthly_DailyGroupingAndActivity(t *testing.T) {
	// GIVEN: Three entries over two distinct days
	// THEN: Two daily buckets; 2 active days, 28 inactive of 30

	entries := []ledger.Entry{
		entry(1, "100", 3),
		entry(2, "200", 3),
		entry(3, "50", 20),
	}

	stats := settlement.Monthly(entries, nil, 30)

	require.Len(t, stats.DailyTotals, 2)
	assert.True(t, dec("300").Equal(stats.DailyTotals["2025-07-03"]))
	assert.True(t, dec("50").Equal(stats.DailyTotals["2025-07-20"]))
	assert.Equal(t, 2, stats.DaysActive)
	assert.Equal(t, 28, stats.DaysInactive)
}

func TestMonthly_WeeklyGrouping(t *testing.T) {
	// July 3 2025 falls in ISO week 27, July 20 in week 29.
	entries := []ledger.Entry{
		entry(1, "100", 3),
		entry(2, "200", 20),
	}

	stats := settlement.Monthly(entries, nil, 30)

	assert.True(t, dec("100").Equal(stats.WeeklyTotals["Week 27"]))
	assert.True(t, dec("200").Equal(stats.WeeklyTotals["Week 29"]))
}

func TestMonthly_EmptyPeriod(t *testing.T) {
	stats := settlement.Monthly(nil, nil, 30)

	assert.True(t, stats.TotalCommission.IsZero())
	assert.Nil(t, stats.Largest)
	assert.Nil(t, stats.Smallest)
	assert.True(t, stats.AveragePerEntry.IsZero())
	assert.Equal(t, 0, stats.DaysActive)
	assert.Equal(t, 30, stats.DaysInactive)
	assert.True(t, stats.OwedToPartner.IsZero())
}

func TestMonthly_ExactDecimalAccumulation(t *testing.T) {
	// 0.1 summed ten times must be exactly 1, the float-free guarantee.
	var entries []ledger.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, entry(int64(i+1), "0.1", 5))
	}

	stats := settlement.Monthly(entries, nil, 30)

	assert.True(t, dec("1").Equal(stats.TotalCommission), "got %s", stats.TotalCommission)
}
