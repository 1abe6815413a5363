/*
ledger.go - Entry recording and deletion

PURPOSE:
  The Service is the write path of the engine. RecordEntry validates and
  splits an amount, runs the advisory anomaly checks, persists the entry
  with its audit record, and arms the undo register. DeleteEntry is the
  only way an entry leaves the ledger, and only while unlocked.

NEAR-BOUNDARY ENTRIES:
  When the caller detects a near-midnight timestamp it holds the entry
  pending its own confirmation step, then records it with the period
  frozen at submission time via RecordEntryInPeriod. The pending state
  never lives in this package.
*/
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE
// =============================================================================

// Config carries the tunables the engine needs at runtime. All windows
// are validated positive by the config package before they get here.
type Config struct {
	Split             SplitPolicy
	Resolver          Resolver
	UndoWindow        time.Duration
	DuplicateWindow   time.Duration
	ExtremeMultiplier decimal.Decimal
}

// Service owns all mutating ledger operations for any user.
type Service struct {
	store Store
	cfg   Config
	undo  *UndoRegister

	// now is swappable in tests.
	now func() time.Time
}

func NewService(store Store, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		undo:  NewUndoRegister(),
		now:   time.Now,
	}
}

// Resolver exposes the configured period resolver for callers that need
// boundary detection or period parsing.
func (s *Service) Resolver() Resolver { return s.cfg.Resolver }

// CurrentPeriod returns the current open period.
func (s *Service) CurrentPeriod() Period { return s.cfg.Resolver.Current(s.now()) }

// EnsureUser creates the user on first interaction.
func (s *Service) EnsureUser(ctx context.Context, id UserID, name string) (*User, error) {
	return s.store.GetOrCreateUser(ctx, id, name)
}

// =============================================================================
// AMOUNT PARSING
// =============================================================================

// ParseAmount parses operator text into a positive decimal, stripping
// currency punctuation ("1,000.50" and "KES 1000" both work). Rejects
// non-positive or unparsable input.
func ParseAmount(text string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, c := range text {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Decimal{}, &InvalidAmountError{Input: text}
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, &InvalidAmountError{Input: text}
	}
	return amount, nil
}

// =============================================================================
// RECORD ENTRY
// =============================================================================

// RecordResult is a created entry plus its advisory anomaly flags.
type RecordResult struct {
	Entry *Entry
	AnomalyFlags
}

// RecordEntry records a commission in the current open period.
func (s *Service) RecordEntry(ctx context.Context, userID UserID, amountText, note string, solo bool) (*RecordResult, error) {
	return s.RecordEntryInPeriod(ctx, userID, amountText, note, solo, s.CurrentPeriod())
}

// RecordEntryInPeriod records a commission into an explicit period. Used
// by the caller-owned near-boundary confirmation flow, where the period
// was resolved (and confirmed) at submission time.
func (s *Service) RecordEntryInPeriod(ctx context.Context, userID UserID, amountText, note string, solo bool, p Period) (*RecordResult, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetOrCreateUser(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	now := s.now().UTC()
	owner, partner := s.cfg.Split.Split(amount, solo)

	// Advisory checks. They run before the commit but never block it.
	var flags AnomalyFlags
	recent, err := s.store.EntriesSince(ctx, userID, now.Add(-s.cfg.DuplicateWindow))
	if err != nil {
		return nil, fmt.Errorf("load recent entries: %w", err)
	}
	flags.Duplicate = detectDuplicate(amount, recent, now, s.cfg.DuplicateWindow)

	periodEntries, err := s.store.EntriesForPeriod(ctx, userID, s.CurrentPeriod())
	if err != nil {
		return nil, fmt.Errorf("load period entries: %w", err)
	}
	flags.Extreme, flags.ExtremeRatio = detectExtreme(amount, periodEntries, s.cfg.ExtremeMultiplier)

	entry := &Entry{
		UserID:       userID,
		Amount:       amount,
		Note:         note,
		CreatedAt:    now,
		Period:       p,
		SplitOwner:   owner,
		SplitPartner: partner,
	}

	audit := AuditRecord{
		ID:        uuid.NewString(),
		Action:    AuditAdd,
		ActorID:   userID,
		After:     fmt.Sprintf("amount=%s, split_owner=%s, split_partner=%s", amount, owner, partner),
		Timestamp: now,
	}

	if err := s.store.InsertEntry(ctx, entry, audit); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	// Arm undo. Last write wins: a new entry overwrites the user's
	// previous token even if it was never used.
	s.undo.Put(userID, UndoToken{EntryID: entry.ID, CreatedAt: now})

	return &RecordResult{Entry: entry, AnomalyFlags: flags}, nil
}

// PreviewFlags runs the anomaly checks for an amount without recording
// anything. Callers that hold entries pending confirmation use this to
// decide whether to ask before committing.
func (s *Service) PreviewFlags(ctx context.Context, userID UserID, amountText string) (AnomalyFlags, error) {
	var flags AnomalyFlags

	amount, err := ParseAmount(amountText)
	if err != nil {
		return flags, err
	}

	now := s.now().UTC()
	recent, err := s.store.EntriesSince(ctx, userID, now.Add(-s.cfg.DuplicateWindow))
	if err != nil {
		return flags, fmt.Errorf("load recent entries: %w", err)
	}
	flags.Duplicate = detectDuplicate(amount, recent, now, s.cfg.DuplicateWindow)

	periodEntries, err := s.store.EntriesForPeriod(ctx, userID, s.CurrentPeriod())
	if err != nil {
		return flags, fmt.Errorf("load period entries: %w", err)
	}
	flags.Extreme, flags.ExtremeRatio = detectExtreme(amount, periodEntries, s.cfg.ExtremeMultiplier)

	return flags, nil
}

// =============================================================================
// DELETE ENTRY
// =============================================================================

// DeleteEntry removes an unlocked entry owned by userID and returns its
// pre-deletion values. Absent, foreign, and locked entries all fail with
// ErrNotFound.
func (s *Service) DeleteEntry(ctx context.Context, entryID int64, userID UserID) (*Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if entry == nil || entry.Locked {
		return nil, fmt.Errorf("%w: entry %d", ErrNotFound, entryID)
	}

	audit := AuditRecord{
		ID:        uuid.NewString(),
		Action:    AuditUndo,
		ActorID:   userID,
		TargetID:  entryID,
		Before:    fmt.Sprintf("amount=%s, split_owner=%s, split_partner=%s", entry.Amount, entry.SplitOwner, entry.SplitPartner),
		Timestamp: s.now().UTC(),
	}

	if err := s.store.DeleteEntry(ctx, entryID, userID, audit); err != nil {
		return nil, err
	}
	return entry, nil
}
