// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"
)

// # Lockout Tracking

// LockoutState is the answer to "may this principal attempt to sign in?".
type LockoutState struct {
	IsLocked    bool
	LockedUntil time.Time
}

// LockoutTracker enforces the per-principal failure throttle.
//
// # State Machine
//
// Each principal is in one of four states: Clean (no record), Accumulating
// (1..threshold-1 failures), Locked (locked-until in the future), or
// Expired-Lock (locked-until in the past). Expired-Lock collapses to Clean
// lazily, on the next [LockoutTracker.Check].
//
// The tracker holds no in-process state: counters live in the lockout
// store and are updated atomically per key, so any number of API instances
// can share them.
type LockoutTracker struct {
	store           LockoutRepository
	maxAttempts     int
	lockoutDuration time.Duration
}

// NewLockoutTracker constructs a tracker over the given store.
//
// Non-positive knobs fall back to the package defaults.
func NewLockoutTracker(store LockoutRepository, maxAttempts int, lockoutDuration time.Duration) *LockoutTracker {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxFailedAttempts
	}
	if lockoutDuration <= 0 {
		lockoutDuration = DefaultLockoutDuration
	}

	return &LockoutTracker{
		store:           store,
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
	}
}

/*
Check reports whether the principal is currently locked out.

Description: This MUST run before any credential comparison so a locked-out
principal never reaches the hasher. An expired lock is treated as cleared:
the stored record is deleted as a side effect and not-locked is reported
(the lazy Expired-Lock → Clean transition).

Parameters:
  - context: context.Context
  - principal: string (normalized username)
  - now: time.Time

Returns:
  - *LockoutState: Lock status plus expiry when locked
  - error: Store failures
*/
func (tracker *LockoutTracker) Check(context context.Context, principal string, now time.Time) (*LockoutState, error) {
	record, err := tracker.store.Get(context, principal)
	if err != nil {
		return nil, fmt.Errorf("lockout_check_failed: %w", err)
	}

	// Clean, or Accumulating below the threshold.
	if record == nil || record.LockedUntil.IsZero() {
		return &LockoutState{}, nil
	}

	// Expired-Lock: reset to Clean on read.
	if !record.LockedUntil.After(now) {
		if err := tracker.store.Delete(context, principal); err != nil {
			return nil, fmt.Errorf("lockout_expiry_clear_failed: %w", err)
		}
		return &LockoutState{}, nil
	}

	return &LockoutState{IsLocked: true, LockedUntil: record.LockedUntil}, nil
}

/*
RecordFailure counts one failed attempt and triggers the lock at the threshold.

Description: The increment is delegated to the store's atomic per-key
operation. When the new count reaches the configured maximum, locked-until
is set to now + lockout duration. The updated record is returned so the
caller can compose audit detail.

Parameters:
  - context: context.Context
  - principal: string
  - now: time.Time

Returns:
  - *LockoutRecord: Post-increment state (LockedUntil set if just triggered)
  - error: Store failures
*/
func (tracker *LockoutTracker) RecordFailure(context context.Context, principal string, now time.Time) (*LockoutRecord, error) {
	count, err := tracker.store.Increment(context, principal, now)
	if err != nil {
		return nil, fmt.Errorf("lockout_increment_failed: %w", err)
	}

	record := &LockoutRecord{
		FailedAttempts: count,
		LastFailureAt:  now,
	}

	if count >= tracker.maxAttempts {
		until := now.Add(tracker.lockoutDuration)
		if err := tracker.store.Lock(context, principal, until); err != nil {
			return nil, fmt.Errorf("lockout_trigger_failed: %w", err)
		}
		record.LockedUntil = until
	}

	return record, nil
}

/*
Clear resets the principal to Clean after a successful authentication.

Parameters:
  - context: context.Context
  - principal: string

Returns:
  - error: Store failures
*/
func (tracker *LockoutTracker) Clear(context context.Context, principal string) error {
	if err := tracker.store.Delete(context, principal); err != nil {
		return fmt.Errorf("lockout_clear_failed: %w", err)
	}
	return nil
}

// # User Messaging

// RemainingMinutes returns the whole minutes until the lock expires,
// rounded up, with a floor of one minute.
func RemainingMinutes(lockedUntil, now time.Time) int {
	remaining := lockedUntil.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// LockMessage renders the client-facing lockout message.
//
// It discloses only a rounded remaining-time estimate — never the internal
// attempt counters — and pluralizes correctly.
func LockMessage(lockedUntil, now time.Time) string {
	minutes := RemainingMinutes(lockedUntil, now)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Too many failed sign-in attempts. Try again in about %d %s.", minutes, unit)
}
