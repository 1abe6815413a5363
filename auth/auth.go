/*
Package auth implements the authorization registry.

PURPOSE:
  Gates every ledger operation behind an allow-list of user ids. The
  owner account is always authorized and is the only account that can
  approve or revoke others. Unknown callers are parked in a pending
  queue until the owner decides.

AUTHORIZATION MODEL:
  - The owner id comes from configuration and is implicitly authorized.
  - Any other caller must appear in the authorized registry.
  - A denied caller may request access; the request sits in the pending
    queue until approved or rejected by the owner.

SEE ALSO:
  - store/sqlite/sqlite.go: Persistent registry implementation
  - api/handlers.go: Per-request authorization checks
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/commission-engine/ledger"
)

// ErrNotOwner is returned when a non-owner attempts an owner-only action.
var ErrNotOwner = errors.New("only the owner can manage authorization")

// PendingRequest is an access request awaiting the owner's decision.
type PendingRequest struct {
	UserID      ledger.UserID `json:"user_id"`
	Name        string        `json:"name"`
	RequestedAt time.Time     `json:"requested_at"`
}

// AuthorizedUser is an approved registry entry.
type AuthorizedUser struct {
	UserID       ledger.UserID `json:"user_id"`
	AuthorizedAt time.Time     `json:"authorized_at"`
	AuthorizedBy ledger.UserID `json:"authorized_by"`
}

// Store persists the authorization registry.
type Store interface {
	// IsAuthorized reports whether id appears in the registry.
	IsAuthorized(ctx context.Context, id ledger.UserID) (bool, error)

	// Authorize adds id to the registry. Idempotent.
	Authorize(ctx context.Context, id, by ledger.UserID) error

	// Revoke removes id from the registry. Removing an absent id is a no-op.
	Revoke(ctx context.Context, id ledger.UserID) error

	// AuthorizedUsers lists the registry ordered by user id.
	AuthorizedUsers(ctx context.Context) ([]AuthorizedUser, error)

	// AddPending queues an access request. Re-requesting is a no-op.
	AddPending(ctx context.Context, id ledger.UserID, name string) error

	// RemovePending drops a queued request whether or not it exists.
	RemovePending(ctx context.Context, id ledger.UserID) error

	// PendingRequests lists queued requests ordered by request time.
	PendingRequests(ctx context.Context) ([]PendingRequest, error)
}

// Service layers the owner rules on top of the registry store.
type Service struct {
	store Store
	owner ledger.UserID
}

// NewService creates an authorization service. owner is always authorized.
func NewService(store Store, owner ledger.UserID) *Service {
	return &Service{store: store, owner: owner}
}

// Owner returns the configured owner id.
func (s *Service) Owner() ledger.UserID {
	return s.owner
}

// IsAuthorized reports whether id may use the engine.
func (s *Service) IsAuthorized(ctx context.Context, id ledger.UserID) (bool, error) {
	if id == s.owner {
		return true, nil
	}
	return s.store.IsAuthorized(ctx, id)
}

// RequestAccess queues an access request for an unauthorized caller.
// Requesting while already authorized is a no-op.
func (s *Service) RequestAccess(ctx context.Context, id ledger.UserID, name string) error {
	ok, err := s.IsAuthorized(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.store.AddPending(ctx, id, name); err != nil {
		return fmt.Errorf("queue access request: %w", err)
	}
	return nil
}

// Approve moves a pending request into the registry. Owner only.
func (s *Service) Approve(ctx context.Context, actor, id ledger.UserID) error {
	if actor != s.owner {
		return ErrNotOwner
	}
	if err := s.store.Authorize(ctx, id, actor); err != nil {
		return fmt.Errorf("authorize user: %w", err)
	}
	if err := s.store.RemovePending(ctx, id); err != nil {
		return fmt.Errorf("clear pending request: %w", err)
	}
	return nil
}

// Reject discards a pending request without authorizing. Owner only.
func (s *Service) Reject(ctx context.Context, actor, id ledger.UserID) error {
	if actor != s.owner {
		return ErrNotOwner
	}
	return s.store.RemovePending(ctx, id)
}

// Revoke removes a user from the registry. Owner only; the owner
// cannot revoke themselves.
func (s *Service) Revoke(ctx context.Context, actor, id ledger.UserID) error {
	if actor != s.owner {
		return ErrNotOwner
	}
	if id == s.owner {
		return errors.New("cannot revoke the owner")
	}
	return s.store.Revoke(ctx, id)
}

// Pending lists queued access requests. Owner only.
func (s *Service) Pending(ctx context.Context, actor ledger.UserID) ([]PendingRequest, error) {
	if actor != s.owner {
		return nil, ErrNotOwner
	}
	return s.store.PendingRequests(ctx)
}

// Authorized lists the registry. Owner only.
func (s *Service) Authorized(ctx context.Context, actor ledger.UserID) ([]AuthorizedUser, error) {
	if actor != s.owner {
		return nil, ErrNotOwner
	}
	return s.store.AuthorizedUsers(ctx)
}
