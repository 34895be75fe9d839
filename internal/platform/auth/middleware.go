package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Verifier verifies bearer tokens and returns the embedded identity.
type Verifier interface {
	Verify(tokenStr string) (Identity, error)
}

// Authenticator wires bearer token verification into HTTP middleware.
type Authenticator struct {
	verifier Verifier
}

// NewAuthenticator constructs an Authenticator for middleware composition.
func NewAuthenticator(verifier Verifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// RequireAuth verifies the Authorization bearer token and, when roles are
// supplied, ensures the identity carries one of them. Role mismatches return
// 401, matching the upstream policy of hiding admin surfaces.
func (a *Authenticator) RequireAuth(allowedRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		role = normaliseRole(role)
		if role == "" {
			continue
		}
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondAuthError(w, http.StatusUnauthorized, "unauthenticated", "authorization header missing or invalid")
				return
			}
			if a == nil || a.verifier == nil {
				respondAuthError(w, http.StatusUnauthorized, "unauthenticated", "authorization service unavailable")
				return
			}

			identity, err := a.verifier.Verify(tokenStr)
			if err != nil {
				respondVerificationError(w, err)
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[normaliseRole(identity.Role)]; !ok {
					respondAuthError(w, http.StatusUnauthorized, "insufficient_role", "identity does not have required role")
					return
				}
			}

			ctx := WithIdentity(r.Context(), &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}

	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

func respondAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	})
}

func respondVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		respondAuthError(w, http.StatusUnauthorized, "token_expired", "bearer token expired")
	default:
		respondAuthError(w, http.StatusUnauthorized, "invalid_token", "bearer token verification failed")
	}
}
