// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/commission-engine/auth"
	"github.com/warp/commission-engine/ledger"
)

var (
	_ ledger.Store = (*Memory)(nil)
	_ auth.Store   = (*Memory)(nil)
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.Store and auth.Store with plain maps. The
// single mutex makes every composite operation trivially atomic, which
// is exactly the contract the SQLite store provides with transactions.
type Memory struct {
	mu         sync.RWMutex
	users      map[ledger.UserID]*ledger.User
	entries    map[int64]*ledger.Entry
	payouts    map[int64]*ledger.Payout
	statements map[stmtKey]*ledger.Statement
	audits     []ledger.AuditRecord
	authorized map[ledger.UserID]auth.AuthorizedUser
	pending    map[ledger.UserID]auth.PendingRequest

	nextEntryID  int64
	nextPayoutID int64
}

type stmtKey struct {
	UserID ledger.UserID
	Period ledger.Period
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[ledger.UserID]*ledger.User),
		entries:    make(map[int64]*ledger.Entry),
		payouts:    make(map[int64]*ledger.Payout),
		statements: make(map[stmtKey]*ledger.Statement),
		authorized: make(map[ledger.UserID]auth.AuthorizedUser),
		pending:    make(map[ledger.UserID]auth.PendingRequest),
	}
}

func (m *Memory) GetOrCreateUser(_ context.Context, id ledger.UserID, name string) (*ledger.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		if name != "" && u.Name != name {
			u.Name = name
		}
		cp := *u
		return &cp, nil
	}
	if name == "" {
		name = fmt.Sprintf("User_%d", id)
	}
	u := &ledger.User{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	m.users[id] = u
	cp := *u
	return &cp, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]ledger.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) InsertEntry(_ context.Context, e *ledger.Entry, audit ledger.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextEntryID++
	e.ID = m.nextEntryID
	cp := *e
	m.entries[e.ID] = &cp

	audit.TargetID = e.ID
	m.audits = append(m.audits, audit)
	return nil
}

func (m *Memory) GetEntry(_ context.Context, entryID int64, userID ledger.UserID) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[entryID]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *Memory) DeleteEntry(_ context.Context, entryID int64, userID ledger.UserID, audit ledger.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok || e.UserID != userID || e.Locked {
		return fmt.Errorf("%w: entry %d", ledger.ErrNotFound, entryID)
	}
	delete(m.entries, entryID)
	m.audits = append(m.audits, audit)
	return nil
}

func (m *Memory) EntriesForPeriod(_ context.Context, userID ledger.UserID, p ledger.Period) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Entry
	for _, e := range m.entries {
		if e.UserID == userID && e.Period == p {
			result = append(result, *e)
		}
	}
	sortEntriesAsc(result)
	return result, nil
}

func (m *Memory) EntriesForYear(_ context.Context, userID ledger.UserID, year int) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Entry
	for _, e := range m.entries {
		if e.UserID == userID && e.Period.Year == year {
			result = append(result, *e)
		}
	}
	sortEntriesAsc(result)
	return result, nil
}

func (m *Memory) EntriesSince(_ context.Context, userID ledger.UserID, since time.Time) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Entry
	for _, e := range m.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) LastEntry(_ context.Context, userID ledger.UserID) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *ledger.Entry
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if last == nil || e.CreatedAt.After(last.CreatedAt) {
			last = e
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (m *Memory) InsertPayout(_ context.Context, p *ledger.Payout, audit ledger.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPayoutID++
	p.ID = m.nextPayoutID
	cp := *p
	m.payouts[p.ID] = &cp

	audit.TargetID = p.ID
	m.audits = append(m.audits, audit)
	return nil
}

func (m *Memory) PayoutsForPeriod(_ context.Context, userID ledger.UserID, period ledger.Period) ([]ledger.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Payout
	for _, p := range m.payouts {
		if p.UserID == userID && p.Period == period {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaidAt.Before(result[j].PaidAt) })
	return result, nil
}

func (m *Memory) ClosePeriod(_ context.Context, stmt *ledger.Statement, audit ledger.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *stmt
	m.statements[stmtKey{UserID: stmt.UserID, Period: stmt.Period}] = &cp

	for _, e := range m.entries {
		if e.UserID == stmt.UserID && e.Period == stmt.Period {
			e.Locked = true
		}
	}

	m.audits = append(m.audits, audit)
	return nil
}

func (m *Memory) Statement(_ context.Context, userID ledger.UserID, p ledger.Period) (*ledger.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stmt, ok := m.statements[stmtKey{UserID: userID, Period: p}]
	if !ok {
		return nil, nil
	}
	cp := *stmt
	return &cp, nil
}

func (m *Memory) StatementsForYear(_ context.Context, userID ledger.UserID, year int) ([]ledger.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Statement
	for k, stmt := range m.statements {
		if k.UserID == userID && k.Period.Year == year {
			result = append(result, *stmt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period.Month < result[j].Period.Month })
	return result, nil
}

func (m *Memory) AuditTrail(_ context.Context, userID ledger.UserID, limit int) ([]ledger.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.AuditRecord
	for i := len(m.audits) - 1; i >= 0; i-- {
		if m.audits[i].ActorID != userID {
			continue
		}
		result = append(result, m.audits[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// =============================================================================
// AUTHORIZATION REGISTRY
// =============================================================================

func (m *Memory) IsAuthorized(_ context.Context, id ledger.UserID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.authorized[id]
	return ok, nil
}

func (m *Memory) Authorize(_ context.Context, id, by ledger.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authorized[id]; ok {
		return nil
	}
	m.authorized[id] = auth.AuthorizedUser{
		UserID:       id,
		AuthorizedAt: time.Now().UTC(),
		AuthorizedBy: by,
	}
	return nil
}

func (m *Memory) Revoke(_ context.Context, id ledger.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.authorized, id)
	return nil
}

func (m *Memory) AuthorizedUsers(_ context.Context) ([]auth.AuthorizedUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]auth.AuthorizedUser, 0, len(m.authorized))
	for _, u := range m.authorized {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (m *Memory) AddPending(_ context.Context, id ledger.UserID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[id]; ok {
		return nil
	}
	m.pending[id] = auth.PendingRequest{
		UserID:      id,
		Name:        name,
		RequestedAt: time.Now().UTC(),
	}
	return nil
}

func (m *Memory) RemovePending(_ context.Context, id ledger.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, id)
	return nil
}

func (m *Memory) PendingRequests(_ context.Context) ([]auth.PendingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pending := make([]auth.PendingRequest, 0, len(m.pending))
	for _, p := range m.pending {
		pending = append(pending, p)
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].RequestedAt.Equal(pending[j].RequestedAt) {
			return pending[i].UserID < pending[j].UserID
		}
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})
	return pending, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[ledger.UserID]*ledger.User)
	m.entries = make(map[int64]*ledger.Entry)
	m.payouts = make(map[int64]*ledger.Payout)
	m.statements = make(map[stmtKey]*ledger.Statement)
	m.audits = nil
	m.authorized = make(map[ledger.UserID]auth.AuthorizedUser)
	m.pending = make(map[ledger.UserID]auth.PendingRequest)
	m.nextEntryID = 0
	m.nextPayoutID = 0
	return nil
}

func (m *Memory) Close() error { return nil }

func sortEntriesAsc(entries []ledger.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
