package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	token, err := issuer.Issue(Identity{ID: "usr_1", Email: "asha@example.com", Role: "Admin"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	identity, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.ID != "usr_1" {
		t.Fatalf("id = %q, want usr_1", identity.ID)
	}
	if identity.Email != "asha@example.com" {
		t.Fatalf("email = %q, want asha@example.com", identity.Email)
	}
	if identity.Role != RoleAdmin {
		t.Fatalf("role = %q, want normalised admin", identity.Role)
	}
}

func TestIssueRequiresIdentityID(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := issuer.Issue(Identity{Role: "user"}); err == nil {
		t.Fatal("expected error for identity without id")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	past := func() time.Time { return now.Add(-30 * 24 * time.Hour) }

	signer, err := NewTokenIssuer("test-secret", WithClock(past))
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := signer.Issue(Identity{ID: "usr_1", Role: "user"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier, err := NewTokenIssuer("test-secret", WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, err := NewTokenIssuer("secret-a")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := signer.Issue(Identity{ID: "usr_1", Role: "user"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier, err := NewTokenIssuer("secret-b")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyDefaultsMissingRoleToUser(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := issuer.Issue(Identity{ID: "usr_1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	identity, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.Role != RoleUser {
		t.Fatalf("role = %q, want user default", identity.Role)
	}
}

func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "user",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "usr_1"},
	})
	token, err := raw.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr_1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := raw.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	issuer, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
