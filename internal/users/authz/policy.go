// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

/*
Package authz implements the role-based authorization policy for user
management.

It is a pure decision layer: given the acting principal, the target
principal, and the intended action, it either allows the operation or
returns a [apperr.Forbidden] carrying the human-readable reason.

# Rule Ordering

Rules evaluate in a fixed order and the first violation wins, so the
reported reason is deterministic:

 1. Only owner/admin actors may manage users at all.
 2. No actor may change their own role or active status.
 3. Admin actors may only touch viewer/editor targets; owners touch anyone.
 4. Admin actors may not create owner/admin accounts.
 5. When cycling a role, the resulting role must also sit under the
    actor's ceiling, not just the target's current role.

Self-service password changes do not pass through this policy: they are
authorized by identity (the account holder proves the current secret), not
by role.
*/
package authz

import (
	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// # Vocabulary

// Action identifies a mutating user-management operation.
type Action string

const (
	// ActionChangeRole cycles the target's role forward.
	ActionChangeRole Action = "change_role"

	// ActionChangeStatus toggles the target between active and suspended.
	ActionChangeStatus Action = "change_status"

	// ActionResetPassword re-issues the target's credential hash.
	ActionResetPassword Action = "reset_password"
)

// Actor is the principal attempting a management operation.
type Actor struct {
	ID   string
	Role sec.Role
}

// Target is the principal being acted upon.
type Target struct {
	ID   string
	Role sec.Role
}

// Denial reasons. These strings are client-visible.
const (
	reasonNotManager   = "Only owner/admin accounts can manage users"
	reasonSelfMutation = "Cannot change your own role/status"
	reasonPeerTarget   = "Cannot modify owner/admin users"
	reasonPeerCreation = "Admins cannot create owner/admin accounts"
	reasonPeerResult   = "Cannot assign owner/admin roles"
)

// # Decisions

/*
Authorize decides whether the actor may perform the action on the target.

Parameters:
  - actor: Actor (resolved from the session)
  - target: Target (current state from the principal store)
  - action: Action

Returns:
  - error: nil to allow, or apperr.Forbidden with the first violated rule's reason
*/
func Authorize(actor Actor, target Target, action Action) error {

	// Rule 1: management is restricted to owner/admin actors.
	if actor.Role != sec.RoleOwner && actor.Role != sec.RoleAdmin {
		return apperr.Forbidden(reasonNotManager)
	}

	// Rule 2: no self-mutation of role or status. Password self-service
	// lives on a separate path that never reaches this policy.
	if actor.ID == target.ID && (action == ActionChangeRole || action == ActionChangeStatus) {
		return apperr.Forbidden(reasonSelfMutation)
	}

	// Rule 3: admins stop at the admin ceiling; owners touch anyone.
	if actor.Role == sec.RoleAdmin && target.Role.AtLeast(sec.RoleAdmin) {
		return apperr.Forbidden(reasonPeerTarget)
	}

	return nil
}

/*
AuthorizeCreate decides whether the actor may create an account with the
desired role.

Returns:
  - error: nil to allow, or apperr.Forbidden (rules 1 and 4)
*/
func AuthorizeCreate(actor Actor, desiredRole sec.Role) error {

	// Rule 1 applies to creation as well.
	if actor.Role != sec.RoleOwner && actor.Role != sec.RoleAdmin {
		return apperr.Forbidden(reasonNotManager)
	}

	// Rule 4: admins cannot mint peers or superiors.
	if actor.Role == sec.RoleAdmin && desiredRole.AtLeast(sec.RoleAdmin) {
		return apperr.Forbidden(reasonPeerCreation)
	}

	return nil
}

/*
CycleRole computes the target's next role in the fixed forward rotation
(viewer → editor → admin → owner → viewer) and authorizes the transition.

Description: Rule 3 covers the target's current role; this additionally
enforces rule 5, checking the computed result against the actor's ceiling
before anything is committed.

Returns:
  - sec.Role: The role to commit
  - error: apperr.Forbidden if any rule denies the rotation
*/
func CycleRole(actor Actor, target Target) (sec.Role, error) {
	if err := Authorize(actor, target, ActionChangeRole); err != nil {
		return "", err
	}

	nextRole := target.Role.Next()

	// Rule 5: the resulting role must also sit under an admin actor's ceiling.
	if actor.Role == sec.RoleAdmin && nextRole.AtLeast(sec.RoleAdmin) {
		return "", apperr.Forbidden(reasonPeerResult)
	}

	return nextRole, nil
}
