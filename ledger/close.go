/*
close.go - Period closing and partner payouts

PURPOSE:
  Closing turns an open period into an immutable statement: aggregate
  the period's entries, upsert the statement row, lock every entry, and
  audit - one transaction. The state machine is Open -> Closed with no
  way back; closing is the only operation allowed to touch the locked
  flag, and nothing may clear it.

IDEMPOTENCE:
  The statement id is a pure function of user + period, and the upsert
  recomputes totals from whatever entries exist at close time. Closing
  the same period twice yields the same id, and in steady state (entries
  already locked) the recompute is a no-op. Scheduled closes can be
  retried freely.

PAYOUTS:
  A payout is accepted against the current open period or any closed
  period. Anything else is rejected naming the current period, so the
  operator learns what would have been valid.
*/
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementID derives the immutable statement identifier for
// (user, period). Deterministic, never random: repeated closes of the
// same period always produce the same id.
func StatementID(userID UserID, p Period) string {
	return fmt.Sprintf("STMT-%d-%s", userID, p.Key())
}

// =============================================================================
// CLOSE PERIOD
// =============================================================================

// ClosePeriod closes and locks the period, returning the statement id.
func (s *Service) ClosePeriod(ctx context.Context, userID UserID, p Period) (string, error) {
	entries, err := s.store.EntriesForPeriod(ctx, userID, p)
	if err != nil {
		return "", fmt.Errorf("load entries for %s: %w", p.Key(), err)
	}

	total, owner, partner := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
		owner = owner.Add(e.SplitOwner)
		partner = partner.Add(e.SplitPartner)
	}

	now := s.now().UTC()
	stmt := &Statement{
		StatementID:     StatementID(userID, p),
		UserID:          userID,
		Period:          p,
		TotalCommission: total,
		SplitOwner:      owner,
		SplitPartner:    partner,
		Closed:          true,
		GeneratedAt:     now,
	}

	audit := AuditRecord{
		ID:        uuid.NewString(),
		Action:    AuditPeriodClose,
		ActorID:   userID,
		After:     fmt.Sprintf("period=%s, statement_id=%s, total=%s", p.Key(), stmt.StatementID, total),
		Timestamp: now,
	}

	if err := s.store.ClosePeriod(ctx, stmt, audit); err != nil {
		return "", fmt.Errorf("close period %s: %w", p.Key(), err)
	}
	return stmt.StatementID, nil
}

// =============================================================================
// RECORD PAYOUT
// =============================================================================

// RecordPayout records a payment to the partner. An empty periodText
// means the current open period; otherwise the text is resolved by the
// configured resolver (strict or fallback).
func (s *Service) RecordPayout(ctx context.Context, userID UserID, amountText, periodText string) (*Payout, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	current := s.cfg.Resolver.Current(now)
	p, err := s.cfg.Resolver.Parse(periodText, now)
	if err != nil {
		return nil, err
	}

	if p != current {
		stmt, err := s.store.Statement(ctx, userID, p)
		if err != nil {
			return nil, fmt.Errorf("load statement for %s: %w", p.Key(), err)
		}
		if stmt == nil {
			return nil, &PeriodNotClosedError{Period: p, CurrentPeriod: current}
		}
	}

	payout := &Payout{
		UserID: userID,
		Amount: amount,
		PaidAt: now,
		Period: p,
	}

	audit := AuditRecord{
		ID:        uuid.NewString(),
		Action:    AuditPayout,
		ActorID:   userID,
		After:     fmt.Sprintf("amount=%s, period=%s", amount, p.Key()),
		Timestamp: now,
	}

	if err := s.store.InsertPayout(ctx, payout, audit); err != nil {
		return nil, fmt.Errorf("insert payout: %w", err)
	}
	return payout, nil
}
