// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

/*
Package account implements the user-management surface of the portal.

It lets owner/admin principals create accounts, rotate roles, suspend and
reinstate users, and reset credentials, with every mutation gated by the
authorization policy and recorded as an audit fact.

# Architecture

  - Entities: This package depends on the auth package for the User entity.
  - Policy: Every mutation consults [authz.Authorize] (or its creation and
    cycling variants) before touching storage.
  - Audit: Mutations emit immutable facts via [auth.AuditRepository].
*/
package account

import (
	"context"

	"github.com/huynhtran/opsboard/internal/users/auth"
)

// # Repository Contracts

// AuditLogRepository defines the read contract over recorded audit facts.
//
// Appending facts is the auth package's concern; this side only lists them
// for the operator view.
type AuditLogRepository interface {
	/*
		List returns a page of audit facts newest-first, plus the total count.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []auth.AuditEntry: Page of facts
		  - int: Total fact count
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]auth.AuditEntry, int, error)
}
