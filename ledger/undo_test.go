package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/ledger"
)

func TestUndo_WithinWindow(t *testing.T) {
	// GIVEN: An entry recorded 3 minutes ago (window: 5)
	// WHEN: Undoing
	// THEN: The entry is deleted and returned

	svc, mem, clock := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordEntry(ctx, testUser, "1000", "", false)
	require.NoError(t, err)

	*clock = clock.Add(3 * time.Minute)

	undone, err := svc.Undo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, res.Entry.ID, undone.ID)

	gone, err := mem.GetEntry(ctx, res.Entry.ID, testUser)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUndo_TokenConsumedOnSuccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordEntry(ctx, testUser, "1000", "", false)
	require.NoError(t, err)

	_, err = svc.Undo(ctx, testUser)
	require.NoError(t, err)

	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrNoRecentEntry, "second undo finds no token")
}

func TestUndo_ExpiredWindowDiscardsToken(t *testing.T) {
	// GIVEN: An entry recorded 6 minutes ago (window: 5)
	// WHEN: Undoing
	// THEN: UndoExpired; the entry survives; the token is gone

	svc, mem, clock := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordEntry(ctx, testUser, "1000", "", false)
	require.NoError(t, err)

	*clock = clock.Add(6 * time.Minute)

	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrUndoExpired)

	var expired *ledger.UndoExpiredError
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, 6*time.Minute, expired.Elapsed)
	assert.Equal(t, 5*time.Minute, expired.Window)

	// Entry untouched, token discarded.
	still, err := mem.GetEntry(ctx, res.Entry.ID, testUser)
	require.NoError(t, err)
	assert.NotNil(t, still)

	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrNoRecentEntry)
}

func TestUndo_NothingToUndo(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Undo(context.Background(), testUser)
	assert.ErrorIs(t, err, ledger.ErrNoRecentEntry)
}

func TestUndo_EntryLockedKeepsToken(t *testing.T) {
	// GIVEN: The period closed right after recording
	// WHEN: Undoing inside the window
	// THEN: UndoFailed; the token survives so a retry reports the same

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordEntry(ctx, testUser, "1000", "", false)
	require.NoError(t, err)

	_, err = svc.ClosePeriod(ctx, testUser, res.Entry.Period)
	require.NoError(t, err)

	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrUndoFailed)

	var failed *ledger.UndoFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, res.Entry.ID, failed.EntryID)

	// Token kept: the retry fails the same way, not with NoRecentEntry.
	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrUndoFailed)
}

func TestUndo_LastWriteWins(t *testing.T) {
	// GIVEN: Two entries recorded back to back
	// WHEN: Undoing once
	// THEN: Only the second is reversible; the first needs no token

	svc, mem, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordEntry(ctx, testUser, "100", "", false)
	require.NoError(t, err)

	*clock = clock.Add(time.Minute)

	second, err := svc.RecordEntry(ctx, testUser, "200", "", false)
	require.NoError(t, err)

	undone, err := svc.Undo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, second.Entry.ID, undone.ID)

	// First entry still present and no longer undoable.
	still, err := mem.GetEntry(ctx, first.Entry.ID, testUser)
	require.NoError(t, err)
	assert.NotNil(t, still)

	_, err = svc.Undo(ctx, testUser)
	assert.ErrorIs(t, err, ledger.ErrNoRecentEntry)
}
