/*
anomaly.go - Advisory anomaly checks for entry recording

PURPOSE:
  Detects suspicious but not invalid input: a duplicate of a recent
  amount, or an amount far above the current period's average. Both
  checks run before the write commits but never block it; the flags ride
  along on the successful result for the boundary layer to surface.

DUPLICATE DETECTION:
  An entry is a duplicate if another entry for the same user has the
  identical amount and was created within the configured window of now
  (inclusive). Candidates come from a strict time-window store query,
  not a fixed-count recent slice, so high entry volume inside the window
  cannot hide a duplicate.

EXTREME DETECTION:
  An amount is extreme if it exceeds multiplier x the average of the
  user's entries in the current open period. An empty period has no
  average, so nothing is extreme against it.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnomalyFlags are advisory signals attached to a successful write.
type AnomalyFlags struct {
	Duplicate    bool
	Extreme      bool
	ExtremeRatio decimal.Decimal // amount / period average, zero unless computable
}

// detectDuplicate reports whether amount matches any candidate entry
// created within window of now. Candidates are expected to already be
// limited to the window by the store query; the time check here keeps
// the predicate correct even if the caller passes a wider slice.
func detectDuplicate(amount decimal.Decimal, candidates []Entry, now time.Time, window time.Duration) bool {
	for _, e := range candidates {
		if !e.Amount.Equal(amount) {
			continue
		}
		if age := now.Sub(e.CreatedAt); age >= 0 && age <= window {
			return true
		}
	}
	return false
}

// detectExtreme reports whether amount exceeds multiplier x the average
// of periodEntries, and the ratio of amount to that average.
func detectExtreme(amount decimal.Decimal, periodEntries []Entry, multiplier decimal.Decimal) (bool, decimal.Decimal) {
	if len(periodEntries) == 0 {
		return false, decimal.Zero
	}
	total := decimal.Zero
	for _, e := range periodEntries {
		total = total.Add(e.Amount)
	}
	if total.IsZero() {
		return false, decimal.Zero
	}
	avg := total.Div(decimal.NewFromInt(int64(len(periodEntries))))
	ratio := amount.Div(avg)
	return amount.GreaterThan(avg.Mul(multiplier)), ratio
}
