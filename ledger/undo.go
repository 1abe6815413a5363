/*
undo.go - Bounded-window reversal of the most recent entry

PURPOSE:
  Each user has at most one reversible entry: the last one recorded.
  The register holds its id and creation time; Undo deletes it if the
  window has not elapsed.

TOKEN LIFECYCLE:
  - Recording an entry overwrites the user's token (last write wins)
  - A successful undo consumes the token
  - An expired attempt discards the token and fails with UndoExpired
  - A failed delete (entry already gone) keeps the token so the caller
    can observe why the undo failed

PROCESS SCOPE:
  The register is process-local by design. Tokens are minutes-lived
  per-operator hints, not ledger state; engine instances sharing one
  database do not share them, and losing a token on restart only means
  the undo shortcut is unavailable - the entry itself is untouched.
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// =============================================================================
// UNDO REGISTER
// =============================================================================

// UndoToken marks the last entry eligible for reversal.
type UndoToken struct {
	EntryID   int64
	CreatedAt time.Time
}

// UndoRegister is a per-user token map. Safe for concurrent use.
type UndoRegister struct {
	mu     sync.Mutex
	tokens map[UserID]UndoToken
}

func NewUndoRegister() *UndoRegister {
	return &UndoRegister{tokens: make(map[UserID]UndoToken)}
}

// Put stores the user's token, replacing any previous one.
func (r *UndoRegister) Put(userID UserID, token UndoToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = token
}

// Peek returns the user's token without consuming it.
func (r *UndoRegister) Peek(userID UserID) (UndoToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[userID]
	return token, ok
}

// Drop discards the user's token.
func (r *UndoRegister) Drop(userID UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID)
}

// =============================================================================
// UNDO OPERATION
// =============================================================================

// Undo reverses the user's most recent entry if it is still inside the
// undo window. Returns the deleted entry on success.
func (s *Service) Undo(ctx context.Context, userID UserID) (*Entry, error) {
	token, ok := s.undo.Peek(userID)
	if !ok {
		return nil, ErrNoRecentEntry
	}

	elapsed := s.now().UTC().Sub(token.CreatedAt)
	if elapsed > s.cfg.UndoWindow {
		s.undo.Drop(userID)
		return nil, &UndoExpiredError{Elapsed: elapsed, Window: s.cfg.UndoWindow}
	}

	entry, err := s.DeleteEntry(ctx, token.EntryID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Entry gone for some other reason; keep the token so the
			// caller can see what it pointed at.
			return nil, &UndoFailedError{EntryID: token.EntryID, Cause: err}
		}
		return nil, fmt.Errorf("undo entry %d: %w", token.EntryID, err)
	}

	s.undo.Drop(userID)
	return entry, nil
}
