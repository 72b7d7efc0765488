// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/internal/users/auth"
	"github.com/huynhtran/opsboard/internal/users/authz"
	"github.com/huynhtran/opsboard/pkg/pagination"
	"github.com/huynhtran/opsboard/pkg/principal"
	"github.com/huynhtran/opsboard/pkg/uuid"
)

// # Service Layer

// Service orchestrates user-management use cases on behalf of owner/admin
// principals.
//
// Authorization is decided by the authz policy BEFORE any storage write,
// and every mutation lands in the audit trail.
type Service struct {
	users    auth.UserRepository
	audits   auth.AuditRepository
	auditLog AuditLogRepository
	logger   *slog.Logger
	clock    auth.Clock
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	users auth.UserRepository,
	audits auth.AuditRepository,
	auditLog AuditLogRepository,
	logger *slog.Logger,
	clock auth.Clock,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		users:    users,
		audits:   audits,
		auditLog: auditLog,
		logger:   logger,
		clock:    clock,
	}
}

// actorOf converts a resolved identity into the policy's actor shape.
func actorOf(identity *sec.Identity) authz.Actor {
	return authz.Actor{ID: identity.UserID, Role: identity.Role}
}

// # Account Creation

// CreateUserInput holds the data required to enroll a new account.
type CreateUserInput struct {
	Username    string
	DisplayName string
	Password    string
	Role        sec.Role
}

/*
CreateUser enrolls a new account on behalf of an owner/admin actor.

Description: The desired role is checked against the actor's ceiling before
anything else. The username is normalized to its canonical form and must be
unique. New accounts start active.

Parameters:
  - context: context.Context
  - actor: *sec.Identity
  - input: CreateUserInput

Returns:
  - *auth.User: Created account
  - error: Forbidden, Conflict, or storage failures
*/
func (service *Service) CreateUser(context context.Context, actor *sec.Identity, input CreateUserInput) (*auth.User, error) {

	// ── 1. Policy Gate ────────────────────────────────────────────────────
	if err := authz.AuthorizeCreate(actorOf(actor), input.Role); err != nil {
		return nil, err
	}

	// ── 2. Canonical Username & Uniqueness ────────────────────────────────
	canonical := principal.Normalize(input.Username)

	_, err := service.users.FindByUsername(context, canonical)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if !apperr.IsNotFound(err) {
		return nil, apperr.Internal(fmt.Errorf("account_service_create_lookup_failed: %w", err))
	}

	// ── 3. Credential Hashing ─────────────────────────────────────────────
	hash, err := sec.HashSecret(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	// ── 4. Persistence ────────────────────────────────────────────────────
	user := &auth.User{
		ID:             uuid.New(),
		Username:       canonical,
		DisplayName:    input.DisplayName,
		CredentialHash: hash,
		Role:           input.Role,
		IsActive:       true,
	}

	if err := service.users.Create(context, user); err != nil {
		// The store classifies constraint races as Conflict; keep those.
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.Internal(fmt.Errorf("account_service_create_failed: %w", err))
	}

	service.recordAudit(context, actor, auth.AuditUserCreated, canonical,
		fmt.Sprintf(`{"role":%q}`, user.Role))
	service.logger.Info("user_created",
		slog.String("actor_id", actor.UserID),
		slog.String("username", canonical),
		slog.String("role", string(user.Role)))

	return user, nil
}

// # Role Rotation

/*
CycleRole advances the target's role one step in the fixed forward rotation
(viewer → editor → admin → owner → viewer).

Description: The policy authorizes both the target's current role and the
computed result before the change is committed.

Parameters:
  - context: context.Context
  - actor: *sec.Identity
  - targetID: string

Returns:
  - *auth.User: Target with the new role applied
  - error: Forbidden, NotFound, or storage failures
*/
func (service *Service) CycleRole(context context.Context, actor *sec.Identity, targetID string) (*auth.User, error) {
	target, err := service.users.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	nextRole, err := authz.CycleRole(actorOf(actor), authz.Target{ID: target.ID, Role: target.Role})
	if err != nil {
		return nil, err
	}

	if err := service.users.UpdateRole(context, target.ID, nextRole); err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_cycle_role_failed: %w", err))
	}

	service.recordAudit(context, actor, auth.AuditUserRoleCycled, target.Username,
		fmt.Sprintf(`{"from":%q,"to":%q}`, target.Role, nextRole))

	target.Role = nextRole
	return target, nil
}

// # Status Management

/*
SetActive toggles the target between active and suspended.

Description: Suspension takes effect on the target's next request, because
session resolution reads the status on every call. Lockout counters are
independent of suspension and are not touched here.

Parameters:
  - context: context.Context
  - actor: *sec.Identity
  - targetID: string
  - active: bool

Returns:
  - *auth.User: Target with the new status applied
  - error: Forbidden, NotFound, or storage failures
*/
func (service *Service) SetActive(context context.Context, actor *sec.Identity, targetID string, active bool) (*auth.User, error) {
	target, err := service.users.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	err = authz.Authorize(actorOf(actor), authz.Target{ID: target.ID, Role: target.Role}, authz.ActionChangeStatus)
	if err != nil {
		return nil, err
	}

	if err := service.users.SetActive(context, target.ID, active); err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_set_active_failed: %w", err))
	}

	service.recordAudit(context, actor, auth.AuditUserStatusChanged, target.Username,
		fmt.Sprintf(`{"active":%t}`, active))

	target.IsActive = active
	return target, nil
}

// # Credential Reset

/*
ResetPassword re-issues the target's credential hash on the management path.

Description: Unlike self-service password change, no proof of the current
secret is required; the policy decides instead. The new secret gets a fresh
random salt.

Parameters:
  - context: context.Context
  - actor: *sec.Identity
  - targetID: string
  - newPassword: string

Returns:
  - error: Forbidden, NotFound, ValidationError, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, actor *sec.Identity, targetID, newPassword string) error {
	target, err := service.users.FindByID(context, targetID)
	if err != nil {
		return err
	}

	err = authz.Authorize(actorOf(actor), authz.Target{ID: target.ID, Role: target.Role}, authz.ActionResetPassword)
	if err != nil {
		return err
	}

	if len(newPassword) < auth.MinPasswordLength {
		return apperr.ValidationError("New password is too short", apperr.FieldError{
			Field:   auth.FieldNewPassword,
			Message: fmt.Sprintf("Must be at least %d characters", auth.MinPasswordLength),
		})
	}

	hash, err := sec.HashSecret(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	if err := service.users.UpdatePassword(context, target.ID, hash); err != nil {
		return apperr.Internal(fmt.Errorf("account_service_reset_password_failed: %w", err))
	}

	service.recordAudit(context, actor, auth.AuditPasswordReset, target.Username, "")
	service.logger.Info("user_password_reset",
		slog.String("actor_id", actor.UserID),
		slog.String("target", target.Username))

	return nil
}

// # Read Surface

/*
List returns a page of accounts ordered by creation time.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.User: Page of accounts
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]auth.User, pagination.Meta, error) {
	users, total, err := service.users.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(fmt.Errorf("account_service_list_failed: %w", err))
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
AuditLog returns a page of recorded audit facts, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.AuditEntry: Page of facts
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) AuditLog(context context.Context, params pagination.Params) ([]auth.AuditEntry, pagination.Meta, error) {
	entries, total, err := service.auditLog.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(fmt.Errorf("account_service_audit_log_failed: %w", err))
	}
	return entries, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// recordAudit appends an audit fact without letting a sink failure affect
// the mutation it describes.
func (service *Service) recordAudit(context context.Context, actor *sec.Identity, action, target, details string) {
	entry := &auth.AuditEntry{
		ID:        uuid.New(),
		ActorID:   &actor.UserID,
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
