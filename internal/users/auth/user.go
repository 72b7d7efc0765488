// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

/*
Package auth implements the authentication, session, and lockout core.

It defines the domain entities (User, LockoutRecord, AuditEntry) and the
orchestration logic that turns credentials into trusted sessions.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
external dependencies and encapsulate all business rules related to
identity: how secrets are verified, how repeated failures throttle a
principal, and which facts get recorded for audit.
*/
package auth

import (
	"time"

	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account on the Opsboard portal.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"` // Stored in normalized (canonical) form.
	DisplayName    string    `json:"display_name"`
	CredentialHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Role           sec.Role  `json:"role"`
	IsActive       bool      `json:"is_active"`
	LastSeenAt     time.Time `json:"last_seen_at,omitzero"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LockoutRecord is the per-principal failure counter held by the lockout
// store.
//
// # Lifecycle
//
// Created lazily on the first failure, updated on every attempt, cleared
// on success or after the lock expires. A zero LockedUntil means the
// principal is accumulating failures but not yet locked.
type LockoutRecord struct {
	FailedAttempts int       `json:"failed_attempts"`
	LastFailureAt  time.Time `json:"last_failure_at"`
	LockedUntil    time.Time `json:"locked_until,omitzero"`
}

// AuditEntry is a single immutable audit fact emitted by the core.
//
// ActorID is nil for facts without an authenticated actor (failed sign-in
// attempts, bootstrap seeding).
type AuditEntry struct {
	ID        string    `json:"id"`
	ActorID   *string   `json:"actor_id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// # Audit Actions

// Audit fact identifiers recorded by the auth and account services.
const (
	AuditSignInSuccess     = "signin.success"
	AuditSignInFailure     = "signin.failure"
	AuditSignOut           = "signin.signout"
	AuditPasswordChanged   = "user.password_changed"
	AuditUserCreated       = "user.created"
	AuditUserRoleCycled    = "user.role_cycled"
	AuditUserStatusChanged = "user.status_changed"
	AuditPasswordReset     = "user.password_reset"
)

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldRole            = "role"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldToken           = "token"
)
