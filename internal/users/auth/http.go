// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

/*
HTTP delivery for the authentication lifecycle.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Extracts the acting principal injected by the middleware.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huynhtran/opsboard/internal/platform/middleware"
	requestutil "github.com/huynhtran/opsboard/internal/platform/request"
	"github.com/huynhtran/opsboard/internal/platform/respond"
	"github.com/huynhtran/opsboard/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /sign-in  : Authenticates and returns a session token.
//   - POST /sign-out : Records the end of the session.
//   - GET  /session  : Returns the acting principal for the presented token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/sign-in", handler.signIn)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/sign-out", handler.signOut)
		r.Get("/session", handler.session)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
SignIn authenticates a user and establishes a session.

POST /api/v1/auth/sign-in

Description: Verifies credentials behind the lockout gate and returns a
signed session token together with the account profile.

Request:
  - Body: signInRequest (Username, Password)

Response:
  - 200: Session token, expiry, and user profile
  - 401: ErrUnauthorized: Invalid credentials (deliberately generic)
  - 423: ErrLocked: Account temporarily locked out
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SignIn(request.Context(), SignInInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"user":       session.User,
	})
}

/*
SignOut records the voluntary end of the current session.

POST /api/v1/auth/sign-out

Description: Sessions are stateless; the client discards the token. The
endpoint exists so the sign-out fact lands in the audit trail.

Response:
  - 204: No Content: Session ended
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SignOut(request.Context(), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Session returns the acting principal resolved from the presented token.

GET /api/v1/auth/session

Description: Lets clients confirm who they are and which role the server
currently sees, without re-authenticating.

Response:
  - 200: Identity: Resolved principal (id, username, role)
  - 401: ErrUnauthorized: Missing, malformed, or expired token
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success message
  - 400: ErrInvalidJSON: Weak password or validation failure
  - 401: ErrUnauthorized: Session invalid or current password wrong
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangeOwnPassword(
		request.Context(),
		identity,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"message": "Password changed successfully",
	})
}
