// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByUsername returns the account with the given normalized username.

		Parameters:
		  - context: context.Context
		  - username: string (canonical form, see pkg/principal)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Constraint violations or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		List returns a page of accounts ordered by creation, plus the total count.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []User: Page of accounts
		  - int: Total number of accounts
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]User, int, error)

	/*
		UpdateRole replaces the account's role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.Role

		Returns:
		  - error: Persistence failures
	*/
	UpdateRole(context context.Context, userID string, role sec.Role) error

	/*
		SetActive flips the account between active and suspended.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, userID string, active bool) error

	/*
		UpdatePassword replaces only the account's credential hash.

		Credential hashes are immutable values: they are re-issued whole,
		never edited in place.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		TouchLastSeen stamps the account's last successful sign-in time.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastSeen(context context.Context, userID string) error
}

// # Lockout Data Access

// LockoutRepository defines the contract for per-principal failure counters.
//
// # Atomicity
//
// Increment must be atomic per key: the service may run as multiple
// concurrent instances, and the counter's correctness relies on the store
// performing the read-increment-write without interleaving.
type LockoutRepository interface {

	/*
		Get reads the current record for a principal.

		Parameters:
		  - context: context.Context
		  - principal: string (normalized username)

		Returns:
		  - *LockoutRecord: nil when no record exists
		  - error: Retrieval failures
	*/
	Get(context context.Context, principal string) (*LockoutRecord, error)

	/*
		Increment atomically adds one failure and stamps the failure time.

		Parameters:
		  - context: context.Context
		  - principal: string
		  - at: time.Time

		Returns:
		  - int: The new failure count
		  - error: Persistence failures
	*/
	Increment(context context.Context, principal string, at time.Time) (int, error)

	/*
		Lock sets the principal's locked-until timestamp.

		Parameters:
		  - context: context.Context
		  - principal: string
		  - until: time.Time

		Returns:
		  - error: Persistence failures
	*/
	Lock(context context.Context, principal string, until time.Time) error

	/*
		Delete removes the principal's record entirely (transition to Clean).

		Parameters:
		  - context: context.Context
		  - principal: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, principal string) error
}

// # Audit Sink

// AuditRepository is the append-only sink for audit facts.
//
// Appends are fire-and-forget from the core's perspective: a failure to
// record a fact is logged but never blocks the authentication result it
// describes.
type AuditRepository interface {

	/*
		Append persists a single audit fact.

		Parameters:
		  - context: context.Context
		  - entry: *AuditEntry

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, entry *AuditEntry) error
}

// # Clock

// Clock supplies the current time. Injected so that token expiry and
// lockout windows are testable without sleeping.
type Clock func() time.Time
