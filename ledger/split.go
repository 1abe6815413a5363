/*
split.go - Owner/partner split policy

PURPOSE:
  Divides a commission amount between owner and partner according to a
  configured ratio pair, or 100/0 under the solo override.

PRECISION:
  The owner share is the ratio product rounded to the currency's minor
  unit (2 dp); the partner share is computed by subtraction. This keeps
  the invariant SplitOwner + SplitPartner == Amount exact for every
  input, with no rounding drift.
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitPolicy holds the owner/partner ratio pair. The pair must sum to
// exactly 1; NewSplitPolicy enforces this at configuration time.
type SplitPolicy struct {
	Owner   decimal.Decimal
	Partner decimal.Decimal
}

// NewSplitPolicy validates that the ratios are non-negative and sum to 1.
func NewSplitPolicy(owner, partner decimal.Decimal) (SplitPolicy, error) {
	if owner.IsNegative() || partner.IsNegative() {
		return SplitPolicy{}, fmt.Errorf("split ratios must be non-negative, got %s/%s", owner, partner)
	}
	if !owner.Add(partner).Equal(decimal.NewFromInt(1)) {
		return SplitPolicy{}, fmt.Errorf("split ratios must sum to 1, got %s + %s = %s",
			owner, partner, owner.Add(partner))
	}
	return SplitPolicy{Owner: owner, Partner: partner}, nil
}

// EvenSplit is the default 50/50 arrangement.
func EvenSplit() SplitPolicy {
	half := decimal.New(5, -1)
	return SplitPolicy{Owner: half, Partner: half}
}

// Split divides amount between owner and partner. Under the solo
// override the owner keeps 100%.
func (p SplitPolicy) Split(amount decimal.Decimal, solo bool) (owner, partner decimal.Decimal) {
	if solo {
		return amount, decimal.Zero
	}
	owner = amount.Mul(p.Owner).Round(2)
	partner = amount.Sub(owner)
	return owner, partner
}
