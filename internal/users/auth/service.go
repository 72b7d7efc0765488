// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/pkg/principal"
	"github.com/huynhtran/opsboard/pkg/uuid"
)

// # Service

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to the sign-in flow,
// lockout handling, or session resolution must be reviewed by the security
// team.
type Service struct {
	users    UserRepository
	lockouts *LockoutTracker
	audits   AuditRepository
	codec    *sec.SessionCodec
	logger   *slog.Logger
	clock    Clock
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	users UserRepository,
	lockouts *LockoutTracker,
	audits AuditRepository,
	codec *sec.SessionCodec,
	logger *slog.Logger,
	clock Clock,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		users:    users,
		lockouts: lockouts,
		audits:   audits,
		codec:    codec,
		logger:   logger,
		clock:    clock,
	}
}

// # Sign-In Flow

// SignInInput defines credentials for an authentication attempt.
type SignInInput struct {
	Username string
	Password string
}

// Session represents a successfully established user session.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
SignIn validates credentials against the principal store and issues a
session token.

Description: The lockout state is checked BEFORE any account lookup or
credential comparison, so a locked-out principal costs no hashing work and
leaks nothing about whether the account exists. Every failure path — unknown
principal, suspended account, wrong secret — collapses into the same generic
Unauthorized message to prevent account enumeration.

Parameters:
  - context: context.Context
  - input: SignInInput

Returns:
  - *Session: Transport-ready session token plus the account
  - error: apperr.Unauthorized, apperr.Locked, or internal failures
*/
func (service *Service) SignIn(context context.Context, input SignInInput) (*Session, error) {
	now := service.clock()
	canonical := principal.Normalize(input.Username)

	// ── 1. Lockout Gate ───────────────────────────────────────────────────
	state, err := service.lockouts.Check(context, canonical, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if state.IsLocked {
		service.recordAudit(context, nil, AuditSignInFailure, canonical,
			fmt.Sprintf(`{"reason":"locked","locked_until":%q}`, state.LockedUntil.Format(time.RFC3339)))
		return nil, apperr.Locked(LockMessage(state.LockedUntil, now), state.LockedUntil)
	}

	// ── 2. Principal Lookup ───────────────────────────────────────────────
	user, err := service.users.FindByUsername(context, canonical)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, service.failAttempt(context, canonical, now, "unknown_principal")
		}
		return nil, apperr.Internal(err)
	}

	// Suspended accounts fail exactly like a bad secret.
	if !user.IsActive {
		return nil, service.failAttempt(context, canonical, now, "suspended")
	}

	// ── 3. Credential Verification ────────────────────────────────────────
	if !sec.VerifySecret(input.Password, user.CredentialHash) {
		return nil, service.failAttempt(context, canonical, now, "bad_secret")
	}

	// ── 4. Success Bookkeeping ────────────────────────────────────────────
	// A successful sign-in must leave the principal Clean; if the reset
	// fails, the sign-in fails rather than leave a stale counter behind.
	if err := service.lockouts.Clear(context, canonical); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := service.users.TouchLastSeen(context, user.ID); err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_touch_last_seen_failed: %w", err))
	}
	user.LastSeenAt = now

	// ── 5. Token Issuance ─────────────────────────────────────────────────
	token, err := service.codec.Issue(user.ID, now)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_issue_failed: %w", err))
	}

	service.recordAudit(context, &user.ID, AuditSignInSuccess, canonical, "")

	return &Session{
		Token:     token,
		ExpiresAt: now.Add(service.codec.Lifetime()),
		User:      user,
	}, nil
}

// failAttempt records one failed attempt, emits the audit fact, and returns
// the generic credentials error.
//
// The attempt that crosses the lockout threshold still returns the generic
// message; the lock is only disclosed on the NEXT attempt. The audit fact,
// however, carries the new locked-until so operators see the transition.
func (service *Service) failAttempt(context context.Context, canonical string, now time.Time, reason string) error {
	record, err := service.lockouts.RecordFailure(context, canonical, now)
	if err != nil {
		return apperr.Internal(err)
	}

	details := fmt.Sprintf(`{"reason":%q,"failed_attempts":%d}`, reason, record.FailedAttempts)
	if !record.LockedUntil.IsZero() {
		details = fmt.Sprintf(`{"reason":%q,"failed_attempts":%d,"locked_until":%q}`,
			reason, record.FailedAttempts, record.LockedUntil.Format(time.RFC3339))
	}
	service.recordAudit(context, nil, AuditSignInFailure, canonical, details)

	return apperr.Unauthorized("Invalid credentials")
}

// # Session Resolution

/*
ResolveSession verifies a session token and loads the acting principal.

Description: The token carries only the subject ID, so the account's
CURRENT role and status are read from the store on every call. A role
change or suspension therefore takes effect on the holder's next request,
not at token expiry.

Parameters:
  - context: context.Context
  - token: string (attacker-controlled)

Returns:
  - *sec.Identity: Resolved acting principal
  - error: sec.ErrMalformedToken, sec.ErrExpiredToken, apperr.Unauthorized,
    or apperr.Internal when the principal store fails
*/
func (service *Service) ResolveSession(context context.Context, token string) (*sec.Identity, error) {
	claims, err := service.codec.Verify(token, service.clock())
	if err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(context, claims.Subject)
	if err != nil {
		// A verified token for a vanished subject is still a rejection.
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid session token")
		}
		// A store fault is not an authentication verdict.
		return nil, apperr.Internal(fmt.Errorf("auth_service_resolve_lookup_failed: %w", err))
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is suspended")
	}

	return &sec.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// # Sign-Out

/*
SignOut records the voluntary end of a session.

Description: Sessions are stateless, so there is nothing to revoke
server-side; the client discards the token. The call exists to emit the
audit fact.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - error: Always nil today; kept for interface stability
*/
func (service *Service) SignOut(context context.Context, identity *sec.Identity) error {
	service.recordAudit(context, &identity.UserID, AuditSignOut, identity.Username, "")
	return nil
}

// # Password Management

/*
ChangeOwnPassword lets an authenticated user rotate their own secret.

Description: Requires proof of the current secret before accepting the new
one. The new secret is hashed with a fresh random salt.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized (current secret wrong), ValidationError, or storage failures
*/
func (service *Service) ChangeOwnPassword(context context.Context, identity *sec.Identity, currentPassword, newPassword string) error {
	user, err := service.users.FindByID(context, identity.UserID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_change_password_lookup_failed: %w", err))
	}

	// Re-prove the current secret before anything else.
	if !sec.VerifySecret(currentPassword, user.CredentialHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	if len(newPassword) < MinPasswordLength {
		return apperr.ValidationError("New password is too short", apperr.FieldError{
			Field:   FieldNewPassword,
			Message: fmt.Sprintf("Must be at least %d characters", MinPasswordLength),
		})
	}

	newHash, err := sec.HashSecret(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	if err := service.users.UpdatePassword(context, user.ID, newHash); err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_update_password_failed: %w", err))
	}

	service.recordAudit(context, &identity.UserID, AuditPasswordChanged, user.Username, "")
	return nil
}

// # Bootstrap

/*
SeedOwner guarantees an owner account exists at startup.

Description: Idempotent. If the bootstrap username already exists, nothing
happens. Otherwise the account is created with a deterministic salt derived
from the username, so repeated cold starts against an empty database
converge on the same credential hash.

Parameters:
  - context: context.Context
  - username: string (bootstrap owner username)
  - passphrase: string (bootstrap owner passphrase)

Returns:
  - *User: The existing or freshly created owner
  - error: Hashing or persistence failures
*/
func (service *Service) SeedOwner(context context.Context, username, passphrase string) (*User, error) {
	canonical := principal.Normalize(username)

	existing, err := service.users.FindByUsername(context, canonical)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_seed_lookup_failed: %w", err)
	}

	// Deterministic salt keeps the seeding idempotent across instances.
	salt := sha256.Sum256([]byte(canonical + ":" + bootstrapSaltTag))
	hash, err := sec.HashSecretWithSalt(passphrase, salt[:16])
	if err != nil {
		return nil, fmt.Errorf("auth_service_seed_hash_failed: %w", err)
	}

	owner := &User{
		ID:             uuid.New(),
		Username:       canonical,
		DisplayName:    "Workspace Owner",
		CredentialHash: hash,
		Role:           sec.RoleOwner,
		IsActive:       true,
	}

	if err := service.users.Create(context, owner); err != nil {
		return nil, fmt.Errorf("auth_service_seed_create_failed: %w", err)
	}

	service.recordAudit(context, nil, AuditUserCreated, canonical, `{"bootstrap":true}`)
	service.logger.Info("bootstrap owner account created", slog.String("username", canonical))

	return owner, nil
}

// recordAudit appends an audit fact without letting a sink failure affect
// the operation that produced it.
func (service *Service) recordAudit(context context.Context, actorID *string, action, target, details string) {
	entry := &AuditEntry{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		Details:   details,
		CreatedAt: service.clock(),
	}

	if err := service.audits.Append(context, entry); err != nil {
		service.logger.Warn("audit append failed",
			slog.String("action", action),
			slog.String("target", target),
			slog.Any("error", err))
	}
}
