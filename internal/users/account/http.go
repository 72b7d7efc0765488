// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huynhtran/opsboard/internal/platform/middleware"
	requestutil "github.com/huynhtran/opsboard/internal/platform/request"
	"github.com/huynhtran/opsboard/internal/platform/respond"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/internal/platform/validate"
	"github.com/huynhtran/opsboard/internal/users/auth"
	"github.com/huynhtran/opsboard/pkg/pagination"
	"github.com/huynhtran/opsboard/pkg/pointer"
)

// # Definitions & Constructors

// Handler implements user-management HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with user-management routes.
//
// # Endpoints
//   - GET  /me                    : Own profile (any authenticated user).
//   - GET  /                      : Paginated account list (admin+).
//   - POST /                      : Create an account (admin+).
//   - GET  /audit-log             : Paginated audit facts (admin+).
//   - POST /{id}/cycle-role       : Rotate the target's role (admin+).
//   - POST /{id}/toggle-active    : Suspend or reinstate (admin+).
//   - POST /{id}/reset-password   : Re-issue the target's credential (admin+).
//
// The middleware guard is coarse; the fine-grained ceiling rules live in
// the authz policy inside the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Get("/audit-log", handler.auditLog)
		r.Post("/{id}/cycle-role", handler.cycleRole)
		r.Post("/{id}/toggle-active", handler.toggleActive)
		r.Post("/{id}/reset-password", handler.resetPassword)
	})

	return router
}

// # Request Payloads

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type toggleActiveRequest struct {
	Active *bool `json:"active"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

/*
Me returns the authenticated user's own profile.

GET /api/v1/users/me

Response:
  - 200: User: Full profile of the acting principal
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
List returns a paginated view of all accounts.

GET /api/v1/users?page=N&limit=M

Response:
  - 200: []User with paging metadata
  - 403: ErrForbidden: Insufficient role
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, meta, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
Create enrolls a new account.

POST /api/v1/users

Request:
  - Body: createUserRequest (Username, DisplayName, Password, Role)

Response:
  - 201: User: Created account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: ErrForbidden: Desired role above the actor's ceiling
  - 409: ErrConflict: Username already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.Username).
		Username(auth.FieldUsername, input.Username).
		Required(auth.FieldDisplayName, input.DisplayName).
		MaxLen(auth.FieldDisplayName, input.DisplayName, 100).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, auth.MinPasswordLength).
		Required(auth.FieldRole, input.Role).
		OneOf(auth.FieldRole, input.Role,
			string(sec.RoleViewer), string(sec.RoleEditor), string(sec.RoleAdmin), string(sec.RoleOwner))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, _ := sec.ParseRole(input.Role)

	user, err := handler.accountService.CreateUser(request.Context(), identity, CreateUserInput{
		Username:    input.Username,
		DisplayName: input.DisplayName,
		Password:    input.Password,
		Role:        role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
CycleRole advances the target's role one step in the fixed rotation.

POST /api/v1/users/{id}/cycle-role

Response:
  - 200: User: Target with the new role
  - 403: ErrForbidden: Policy denial with the violated rule's reason
  - 404: ErrNotFound: Unknown target
*/
func (handler *Handler) cycleRole(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", targetID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.CycleRole(request.Context(), identity, targetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ToggleActive suspends or reinstates the target account.

POST /api/v1/users/{id}/toggle-active

Request:
  - Body: toggleActiveRequest (Active)

Response:
  - 200: User: Target with the new status
  - 400: ErrInvalidJSON: Missing active flag
  - 403: ErrForbidden: Policy denial
  - 404: ErrNotFound: Unknown target
*/
func (handler *Handler) toggleActive(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := requestutil.Param(request, "id")

	var input toggleActiveRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", targetID).
		Custom("active", input.Active == nil, "is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.SetActive(request.Context(), identity, targetID, pointer.Val(input.Active))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ResetPassword re-issues the target's credential on the management path.

POST /api/v1/users/{id}/reset-password

Request:
  - Body: resetPasswordRequest (NewPassword)

Response:
  - 200: Success message
  - 400: ErrInvalidJSON: Weak password
  - 403: ErrForbidden: Policy denial
  - 404: ErrNotFound: Unknown target
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID := requestutil.Param(request, "id")

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", targetID).
		Required(auth.FieldNewPassword, input.NewPassword).
		MinLen(auth.FieldNewPassword, input.NewPassword, auth.MinPasswordLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ResetPassword(request.Context(), identity, targetID, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"message": "Password reset successfully",
	})
}

/*
AuditLog returns a paginated, newest-first view of recorded audit facts.

GET /api/v1/users/audit-log?page=N&limit=M

Response:
  - 200: []AuditEntry with paging metadata
  - 403: ErrForbidden: Insufficient role
*/
func (handler *Handler) auditLog(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, meta, err := handler.accountService.AuditLog(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, meta)
}
