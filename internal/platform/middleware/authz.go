// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/huynhtran/opsboard/internal/platform/apperr"
	"github.com/huynhtran/opsboard/internal/platform/ctxutil"
	"github.com/huynhtran/opsboard/internal/platform/respond"
	"github.com/huynhtran/opsboard/internal/platform/sec"
)

// SessionResolver turns a bearer token into a resolved acting principal.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the auth
// service implementation, allowing us to easily inject fakes during unit
// testing. The resolver verifies the token signature/expiry and then loads
// the subject's current role and status from the principal store.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the session token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify via [SessionResolver].
//  4. Inject [*sec.Identity] into the request context for downstream use.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			identity, err := resolver.ResolveSession(request.Context(), parts[1])
			if err != nil {
				// Expiry gets its own phrasing; every other failure is generic.
				if errors.Is(err, sec.ErrExpiredToken) {
					respond.Error(writer, request, apperr.Unauthorized("Session expired, please sign in again"))
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid session token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the acting principal doesn't hold at least
// the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
