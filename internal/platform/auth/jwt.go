package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenExpired signals that the provided bearer token has expired.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid signals that the provided bearer token is invalid for other reasons.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims carries the identity payload embedded in issued tokens.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// IssuerOption customises TokenIssuer behaviour.
type IssuerOption func(*TokenIssuer)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(ttl time.Duration) IssuerOption {
	return func(t *TokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) IssuerOption {
	return func(t *TokenIssuer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTokenIssuer constructs a TokenIssuer using the supplied signing secret.
func NewTokenIssuer(secret string, opts ...IssuerOption) (*TokenIssuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	issuer := &TokenIssuer{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(issuer)
		}
	}
	return issuer, nil
}

// Issue signs a token for the given identity.
func (t *TokenIssuer) Issue(identity Identity) (string, error) {
	if strings.TrimSpace(identity.ID) == "" {
		return "", errors.New("auth: identity id is required")
	}

	now := t.clock().UTC()
	claims := Claims{
		Role:  normaliseRole(identity.Role),
		Email: strings.TrimSpace(identity.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the embedded identity. Time-based
// claims are checked against the issuer's clock instead of the package-level
// time source so verification stays deterministic under an injected clock.
func (t *TokenIssuer) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrTokenInvalid
	}

	now := t.clock().UTC()
	if claims.ExpiresAt == nil {
		return Identity{}, fmt.Errorf("%w: missing expiry", ErrTokenInvalid)
	}
	if !claims.VerifyExpiresAt(now, true) {
		return Identity{}, ErrTokenExpired
	}
	if !claims.VerifyNotBefore(now, false) {
		return Identity{}, ErrTokenInvalid
	}

	role := normaliseRole(claims.Role)
	if role == "" {
		role = RoleUser
	}

	return Identity{
		ID:    strings.TrimSpace(claims.Subject),
		Email: strings.TrimSpace(claims.Email),
		Role:  role,
	}, nil
}

func normaliseRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
