// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhtran/opsboard/internal/users/auth"
)

// memoryLockoutStore is an in-memory LockoutRepository for tests.
type memoryLockoutStore struct {
	mu      sync.Mutex
	records map[string]*auth.LockoutRecord
}

func newMemoryLockoutStore() *memoryLockoutStore {
	return &memoryLockoutStore{records: map[string]*auth.LockoutRecord{}}
}

func (store *memoryLockoutStore) Get(_ context.Context, principal string) (*auth.LockoutRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[principal]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (store *memoryLockoutStore) Increment(_ context.Context, principal string, at time.Time) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[principal]
	if !ok {
		record = &auth.LockoutRecord{}
		store.records[principal] = record
	}
	record.FailedAttempts++
	record.LastFailureAt = at
	return record.FailedAttempts, nil
}

func (store *memoryLockoutStore) Lock(_ context.Context, principal string, until time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[principal]
	if !ok {
		record = &auth.LockoutRecord{}
		store.records[principal] = record
	}
	record.LockedUntil = until
	return nil
}

func (store *memoryLockoutStore) Delete(_ context.Context, principal string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.records, principal)
	return nil
}

/*
TestLockoutTracker_ThresholdTriggersLock verifies the counter accumulates
without locking until the configured maximum, then stamps the lock window.
*/
func TestLockoutTracker_ThresholdTriggersLock(t *testing.T) {
	store := newMemoryLockoutStore()
	tracker := auth.NewLockoutTracker(store, 5, 15*time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// 1. Four failures accumulate without a lock
	for i := 0; i < 4; i++ {
		record, err := tracker.RecordFailure(ctx, "alice", now)
		require.NoError(t, err)
		assert.True(t, record.LockedUntil.IsZero())

		state, err := tracker.Check(ctx, "alice", now)
		require.NoError(t, err)
		assert.False(t, state.IsLocked)
	}

	// 2. Fifth failure triggers the lock at now + duration
	record, err := tracker.RecordFailure(ctx, "alice", now)
	require.NoError(t, err)
	assert.Equal(t, 5, record.FailedAttempts)
	assert.Equal(t, now.Add(15*time.Minute), record.LockedUntil)

	// 3. Subsequent checks report locked
	state, err := tracker.Check(ctx, "alice", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, state.IsLocked)
	assert.Equal(t, now.Add(15*time.Minute), state.LockedUntil)
}

/*
TestLockoutTracker_ExpiredLockClears verifies the lazy Expired-Lock → Clean
transition: a check after the window deletes the record.
*/
func TestLockoutTracker_ExpiredLockClears(t *testing.T) {
	store := newMemoryLockoutStore()
	tracker := auth.NewLockoutTracker(store, 5, 15*time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordFailure(ctx, "alice", now)
		require.NoError(t, err)
	}

	// 1. Still locked one second before expiry
	state, err := tracker.Check(ctx, "alice", now.Add(15*time.Minute-time.Second))
	require.NoError(t, err)
	assert.True(t, state.IsLocked)

	// 2. At expiry the lock clears and the record vanishes
	state, err = tracker.Check(ctx, "alice", now.Add(15*time.Minute))
	require.NoError(t, err)
	assert.False(t, state.IsLocked)

	record, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, record)

	// 3. The next failure starts a fresh count
	fresh, err := tracker.RecordFailure(ctx, "alice", now.Add(16*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.FailedAttempts)
}

/*
TestLockoutTracker_ClearOnSuccess verifies a successful sign-in resets the
principal to Clean.
*/
func TestLockoutTracker_ClearOnSuccess(t *testing.T) {
	store := newMemoryLockoutStore()
	tracker := auth.NewLockoutTracker(store, 5, 15*time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tracker.RecordFailure(ctx, "alice", now)
		require.NoError(t, err)
	}

	require.NoError(t, tracker.Clear(ctx, "alice"))

	record, err := tracker.RecordFailure(ctx, "alice", now)
	require.NoError(t, err)
	assert.Equal(t, 1, record.FailedAttempts)
}

/*
TestLockoutTracker_PrincipalIsolation verifies counters never bleed between
different principals.
*/
func TestLockoutTracker_PrincipalIsolation(t *testing.T) {
	store := newMemoryLockoutStore()
	tracker := auth.NewLockoutTracker(store, 5, 15*time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordFailure(ctx, "alice", now)
		require.NoError(t, err)
	}

	aliceState, err := tracker.Check(ctx, "alice", now)
	require.NoError(t, err)
	assert.True(t, aliceState.IsLocked)

	bobState, err := tracker.Check(ctx, "bob", now)
	require.NoError(t, err)
	assert.False(t, bobState.IsLocked)
}

/*
TestLockMessage verifies the remaining-time rounding and pluralization.
The message discloses a rounded estimate only, never attempt counters.
*/
func TestLockMessage(t *testing.T) {
	lockedUntil := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "one minute in",
			now:  lockedUntil.Add(-14 * time.Minute),
			want: "Too many failed sign-in attempts. Try again in about 14 minutes.",
		},
		{
			name: "partial minutes round up",
			now:  lockedUntil.Add(-13*time.Minute - 30*time.Second),
			want: "Too many failed sign-in attempts. Try again in about 14 minutes.",
		},
		{
			name: "singular minute",
			now:  lockedUntil.Add(-time.Minute),
			want: "Too many failed sign-in attempts. Try again in about 1 minute.",
		},
		{
			name: "seconds left floor to one minute",
			now:  lockedUntil.Add(-10 * time.Second),
			want: "Too many failed sign-in attempts. Try again in about 1 minute.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.LockMessage(lockedUntil, tc.now))
		})
	}
}
