package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/audit"
	"wagebook/internal/domain/auth"
	"wagebook/internal/transport/http/api"
	"wagebook/internal/transport/http/middleware"
	"wagebook/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, username, password string) (auth.LoginResult, error)
	ListUsers(ctx context.Context) ([]auth.User, error)
	CreateUser(ctx context.Context, in auth.NewUser) (auth.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SetAccess(ctx context.Context, actor auth.Scope, id int64, permissions []string, branchIDs []int64) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   middleware.AuditRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

// RegisterPublicRoutes mounts the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermViewUsers, h.Perms))
		r.Get("/", h.handleListUsers)
		r.With(middleware.Audited(h.Audit, audit.ActionUserCreate, "user", "")).Post("/", h.handleCreateUser)
		r.With(middleware.Audited(h.Audit, audit.ActionUserDelete, "user", "userID")).Delete("/{userID}", h.handleDeleteUser)
		r.With(middleware.Audited(h.Audit, audit.ActionUserAccess, "user", "userID")).Put("/{userID}/permissions", h.handleSetAccess)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accessRequest struct {
	Permissions []string `json:"permissions"`
	BranchIDs   []int64  `json:"branchIds"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("username", payload.Username, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, scope, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload auth.NewUser
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("username", payload.Username, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if payload.IsAdmin {
		if scope, _ := middleware.GetScope(r.Context()); !scope.IsAdmin {
			api.Fail(w, http.StatusForbidden, "forbidden", "only admins can create admins", middleware.GetRequestID(r.Context()))
			return
		}
	}

	user, err := h.Service.CreateUser(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	if scope, _ := middleware.GetScope(r.Context()); scope.UserID == id {
		api.Fail(w, http.StatusConflict, "self_delete", "cannot delete the signed in user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "userID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return
	}
	var payload accessRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	scope, _ := middleware.GetScope(r.Context())
	if err := h.Service.SetAccess(r.Context(), scope, id, payload.Permissions, payload.BranchIDs); err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"id": id, "permissions": payload.Permissions, "branchIds": payload.BranchIDs}, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	case errors.Is(err, auth.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, auth.ErrUserExists):
		api.Fail(w, http.StatusConflict, "user_exists", "username already taken", requestID)
	case errors.Is(err, auth.ErrLastAdmin):
		api.Fail(w, http.StatusConflict, "last_admin", "cannot delete the last admin", requestID)
	case errors.Is(err, auth.ErrAdminRequired):
		api.Fail(w, http.StatusForbidden, "forbidden", "admin privileges required", requestID)
	case errors.Is(err, auth.ErrUnknownPermission):
		api.Fail(w, http.StatusBadRequest, "unknown_permission", err.Error(), requestID)
	default:
		slog.Error("auth request failed", "path", r.URL.Path, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
