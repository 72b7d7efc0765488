// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/internal/users/authz"
)

func actor(id string, role sec.Role) authz.Actor {
	return authz.Actor{ID: id, Role: role}
}

func target(id string, role sec.Role) authz.Target {
	return authz.Target{ID: id, Role: role}
}

/*
TestAuthorize_RuleOrdering verifies each rule fires in order and carries its
own client-visible reason.
*/
func TestAuthorize_RuleOrdering(t *testing.T) {
	cases := []struct {
		name       string
		actor      authz.Actor
		target     authz.Target
		action     authz.Action
		wantReason string
	}{
		{
			name:       "viewer cannot manage",
			actor:      actor("a", sec.RoleViewer),
			target:     target("b", sec.RoleViewer),
			action:     authz.ActionChangeRole,
			wantReason: "Only owner/admin accounts can manage users",
		},
		{
			name:       "editor cannot manage",
			actor:      actor("a", sec.RoleEditor),
			target:     target("b", sec.RoleViewer),
			action:     authz.ActionChangeStatus,
			wantReason: "Only owner/admin accounts can manage users",
		},
		{
			name:       "owner cannot change own role",
			actor:      actor("a", sec.RoleOwner),
			target:     target("a", sec.RoleOwner),
			action:     authz.ActionChangeRole,
			wantReason: "Cannot change your own role/status",
		},
		{
			name:       "admin cannot suspend self",
			actor:      actor("a", sec.RoleAdmin),
			target:     target("a", sec.RoleAdmin),
			action:     authz.ActionChangeStatus,
			wantReason: "Cannot change your own role/status",
		},
		{
			name:       "admin cannot touch admin",
			actor:      actor("a", sec.RoleAdmin),
			target:     target("b", sec.RoleAdmin),
			action:     authz.ActionChangeRole,
			wantReason: "Cannot modify owner/admin users",
		},
		{
			name:       "admin cannot touch owner",
			actor:      actor("a", sec.RoleAdmin),
			target:     target("b", sec.RoleOwner),
			action:     authz.ActionResetPassword,
			wantReason: "Cannot modify owner/admin users",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.Authorize(tc.actor, tc.target, tc.action)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "FORBIDDEN", appError.Code)
			assert.Equal(t, tc.wantReason, appError.Message)
		})
	}
}

/*
TestAuthorize_Allowed verifies the permitted combinations pass cleanly.
*/
func TestAuthorize_Allowed(t *testing.T) {
	cases := []struct {
		name   string
		actor  authz.Actor
		target authz.Target
		action authz.Action
	}{
		{"admin manages viewer", actor("a", sec.RoleAdmin), target("b", sec.RoleViewer), authz.ActionChangeRole},
		{"admin manages editor", actor("a", sec.RoleAdmin), target("b", sec.RoleEditor), authz.ActionChangeStatus},
		{"owner manages admin", actor("a", sec.RoleOwner), target("b", sec.RoleAdmin), authz.ActionChangeRole},
		{"owner manages owner", actor("a", sec.RoleOwner), target("b", sec.RoleOwner), authz.ActionChangeStatus},
		{"owner resets own password via policy", actor("a", sec.RoleOwner), target("a", sec.RoleOwner), authz.ActionResetPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, authz.Authorize(tc.actor, tc.target, tc.action))
		})
	}
}

/*
TestAuthorizeCreate verifies the creation ceiling: owners mint anything,
admins stop below admin.
*/
func TestAuthorizeCreate(t *testing.T) {
	owner := actor("a", sec.RoleOwner)
	admin := actor("a", sec.RoleAdmin)

	// 1. Owner may create any role
	for _, role := range []sec.Role{sec.RoleViewer, sec.RoleEditor, sec.RoleAdmin, sec.RoleOwner} {
		assert.NoError(t, authz.AuthorizeCreate(owner, role))
	}

	// 2. Admin may create viewer/editor only
	assert.NoError(t, authz.AuthorizeCreate(admin, sec.RoleViewer))
	assert.NoError(t, authz.AuthorizeCreate(admin, sec.RoleEditor))

	err := authz.AuthorizeCreate(admin, sec.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "Admins cannot create owner/admin accounts", apperr.As(err).Message)

	err = authz.AuthorizeCreate(admin, sec.RoleOwner)
	require.Error(t, err)

	// 3. Non-managers cannot create at all
	err = authz.AuthorizeCreate(actor("a", sec.RoleEditor), sec.RoleViewer)
	require.Error(t, err)
	assert.Equal(t, "Only owner/admin accounts can manage users", apperr.As(err).Message)
}

/*
TestCycleRole verifies the forward rotation plus the post-computation
ceiling: the RESULT of the rotation must also sit under an admin's ceiling.
*/
func TestCycleRole(t *testing.T) {
	owner := actor("a", sec.RoleOwner)
	admin := actor("a", sec.RoleAdmin)

	// 1. Owner rotates through the full cycle
	next, err := authz.CycleRole(owner, target("b", sec.RoleViewer))
	require.NoError(t, err)
	assert.Equal(t, sec.RoleEditor, next)

	next, err = authz.CycleRole(owner, target("b", sec.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, sec.RoleOwner, next)

	// 2. Wrap: owner target rotates back to viewer
	next, err = authz.CycleRole(owner, target("b", sec.RoleOwner))
	require.NoError(t, err)
	assert.Equal(t, sec.RoleViewer, next)

	// 3. Admin may rotate viewer → editor
	next, err = authz.CycleRole(admin, target("b", sec.RoleViewer))
	require.NoError(t, err)
	assert.Equal(t, sec.RoleEditor, next)

	// 4. Admin may NOT rotate editor → admin: result breaches the ceiling
	_, err = authz.CycleRole(admin, target("b", sec.RoleEditor))
	require.Error(t, err)
	assert.Equal(t, "Cannot assign owner/admin roles", apperr.As(err).Message)

	// 5. Admin may NOT rotate an admin target at all (current role rule)
	_, err = authz.CycleRole(admin, target("b", sec.RoleAdmin))
	require.Error(t, err)
	assert.Equal(t, "Cannot modify owner/admin users", apperr.As(err).Message)
}
