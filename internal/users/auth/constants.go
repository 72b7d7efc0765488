// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultSessionLifetime is the duration a session token remains valid.
	// Eight hours: one working day, after which a fresh sign-in is required.
	DefaultSessionLifetime = 8 * time.Hour

	// DefaultMaxFailedAttempts is the number of consecutive failures that
	// triggers a lockout.
	DefaultMaxFailedAttempts = 5

	// DefaultLockoutDuration is how long a triggered lockout lasts.
	DefaultLockoutDuration = 15 * time.Minute

	// LockoutRecordRetention caps how long an abandoned failure counter may
	// linger in the lockout store. It is a storage-hygiene bound only; the
	// state machine never relies on it for correctness.
	LockoutRecordRetention = 24 * time.Hour

	// MinPasswordLength is the minimum accepted secret length.
	MinPasswordLength = 8

	// bootstrapSaltTag namespaces the deterministic salt used for seeded
	// bootstrap credentials.
	bootstrapSaltTag = "opsboard-bootstrap"
)
