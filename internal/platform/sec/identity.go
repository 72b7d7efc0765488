// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package sec

// Identity is the resolved acting principal for an authenticated request.
//
// # Why not embed this in the token?
//
// Session tokens carry only {sub, iat, exp}, so a role change takes effect
// on the holder's very next request instead of surviving until token
// expiry. The middleware resolves the subject against the principal store
// and injects this struct into the request context.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
