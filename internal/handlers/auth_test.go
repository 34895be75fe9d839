package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/services"
)

type stubUserService struct {
	registerFn   func(ctx context.Context, input services.RegisterInput) (services.AuthResult, error)
	loginFn      func(ctx context.Context, email, password string) (services.AuthResult, error)
	adminLoginFn func(ctx context.Context, email, password string) (services.AuthResult, error)
	getFn        func(ctx context.Context, userID string) (domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, input services.RegisterInput) (services.AuthResult, error) {
	if s.registerFn == nil {
		return services.AuthResult{}, errors.New("unexpected Register call")
	}
	return s.registerFn(ctx, input)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (services.AuthResult, error) {
	if s.loginFn == nil {
		return services.AuthResult{}, errors.New("unexpected Login call")
	}
	return s.loginFn(ctx, email, password)
}

func (s *stubUserService) AdminLogin(ctx context.Context, email, password string) (services.AuthResult, error) {
	if s.adminLoginFn == nil {
		return services.AuthResult{}, errors.New("unexpected AdminLogin call")
	}
	return s.adminLoginFn(ctx, email, password)
}

func (s *stubUserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if s.getFn == nil {
		return domain.User{}, errors.New("unexpected GetUser call")
	}
	return s.getFn(ctx, userID)
}

func newAuthServer(t *testing.T, svc services.UserService) *httptest.Server {
	t.Helper()
	handlers := NewAuthHandlers(svc)
	router := NewRouter(WithAuthRoutes(func(r chi.Router) { handlers.Routes(r) }))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &stubUserService{
		registerFn: func(ctx context.Context, input services.RegisterInput) (services.AuthResult, error) {
			return services.AuthResult{
				Token: "signed-token",
				User:  domain.User{ID: "usr_1", Name: input.Name, Email: input.Email, Role: domain.RoleUser},
			}, nil
		},
	}
	server := newAuthServer(t, svc)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "", map[string]any{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"password": "longenough",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body authResponse
	decodeBody(t, resp, &body)
	if body.Token != "signed-token" {
		t.Fatalf("token = %q, want signed-token", body.Token)
	}
	if body.User.Role != "user" {
		t.Fatalf("role = %q, want user", body.User.Role)
	}
}

func TestRegisterDuplicateEmailMapsTo409(t *testing.T) {
	svc := &stubUserService{
		registerFn: func(ctx context.Context, input services.RegisterInput) (services.AuthResult, error) {
			return services.AuthResult{}, services.ErrUserEmailTaken
		},
	}
	server := newAuthServer(t, svc)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "", map[string]any{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "longenough",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["error"] != "email_taken" {
		t.Fatalf("error = %v, want email_taken", body["error"])
	}
}

func TestLoginInvalidCredentialsMapsTo401(t *testing.T) {
	svc := &stubUserService{
		loginFn: func(ctx context.Context, email, password string) (services.AuthResult, error) {
			return services.AuthResult{}, services.ErrUserInvalidCredentials
		},
	}
	server := newAuthServer(t, svc)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["error"] != "invalid_credentials" {
		t.Fatalf("error = %v, want invalid_credentials", body["error"])
	}
}

func TestAdminLoginRoleMismatchMapsTo401(t *testing.T) {
	svc := &stubUserService{
		adminLoginFn: func(ctx context.Context, email, password string) (services.AuthResult, error) {
			return services.AuthResult{}, services.ErrUserForbidden
		},
	}
	server := newAuthServer(t, svc)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/admin/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "opensesame",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["error"] != "insufficient_role" {
		t.Fatalf("error = %v, want insufficient_role", body["error"])
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	server := newAuthServer(t, &stubUserService{})

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/auth/login", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
