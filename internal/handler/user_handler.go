package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/service"
)

// UserHandler handles platform user HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), actorFromContext(r.Context()), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondCreated(w, service.NewUserResponse(user))
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	data := make([]*service.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, service.NewUserResponse(u))
	}
	respondSuccess(w, data)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewUserResponse(user))
}

// UpdateUser handles PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondNoContent(w)
}
