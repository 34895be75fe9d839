package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blendaura/api/internal/platform/httpx"
	"github.com/blendaura/api/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

// AuthHandlers exposes registration and login endpoints.
type AuthHandlers struct {
	users services.UserService
}

// NewAuthHandlers constructs a new AuthHandlers instance.
func NewAuthHandlers(users services.UserService) *AuthHandlers {
	return &AuthHandlers{users: users}
}

// Routes registers the /auth endpoints.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/admin/login", h.adminLogin)
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	result, err := h.users.Register(ctx, services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token: result.Token,
		User:  buildUserPayload(result.User),
	})
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, false)
}

func (h *AuthHandlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, true)
}

func (h *AuthHandlers) handleLogin(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	var (
		result services.AuthResult
		err    error
	)
	if admin {
		result, err = h.users.AdminLogin(ctx, req.Email, req.Password)
	} else {
		result, err = h.users.Login(ctx, req.Email, req.Password)
	}
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token: result.Token,
		User:  buildUserPayload(result.User),
	})
}

func writeUserError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrUserEmailTaken):
		httpx.WriteError(ctx, w, httpx.NewError("email_taken", "email is already registered", http.StatusConflict))
	case errors.Is(err, services.ErrUserInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "invalid email or password", http.StatusUnauthorized))
	case errors.Is(err, services.ErrUserForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_role", "admin access required", http.StatusUnauthorized))
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("user_not_found", "user not found", http.StatusNotFound))
	case errors.Is(err, services.ErrUserUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "user service temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("user_error", "failed to process request", http.StatusInternalServerError))
	}
}
