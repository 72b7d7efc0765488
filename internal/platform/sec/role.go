// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package sec

import "fmt"

// # Account Roles

// Role represents the authorization level granted to an account.
//
// Roles form a total order: viewer < editor < admin < owner.
type Role string

const (
	// Read-only access to the portal
	RoleViewer Role = "viewer"

	// Can modify operational content
	RoleEditor Role = "editor"

	// Can manage viewer/editor accounts
	RoleAdmin Role = "admin"

	// Unrestricted access, including other admins and owners
	RoleOwner Role = "owner"
)

// roleOrder lists all roles from lowest to highest privilege. The rotation
// used by [Role.Next] follows this order and wraps.
var roleOrder = []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}

// ParseRole converts a stored string into a [Role], rejecting unknown values.
func ParseRole(value string) (Role, error) {
	for _, role := range roleOrder {
		if string(role) == value {
			return role, nil
		}
	}
	return "", fmt.Errorf("sec: unknown role %q", value)
}

// IsValid reports whether the role is one of the four known values.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.Level() >= target.Level()
}

// Level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) Level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleOwner:
		return 40
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}

// Next returns the successor role in the fixed forward rotation
// viewer → editor → admin → owner → viewer.
func (r Role) Next() Role {
	for i, role := range roleOrder {
		if role == r {
			return roleOrder[(i+1)%len(roleOrder)]
		}
	}
	// Unknown roles rotate to the least-privileged position.
	return RoleViewer
}
