package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/repositories"
)

const (
	userIDPrefix      = "usr_"
	minPasswordLength = 8
)

var (
	// ErrUserInvalidInput signals the caller provided invalid data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrUserEmailTaken indicates the address is already registered.
	ErrUserEmailTaken = errors.New("user: email already registered")
	// ErrUserInvalidCredentials indicates a failed login. It never reveals
	// whether the account exists.
	ErrUserInvalidCredentials = errors.New("user: invalid credentials")
	// ErrUserNotFound indicates the account could not be located.
	ErrUserNotFound = errors.New("user: not found")
	// ErrUserForbidden indicates the account lacks the required role.
	ErrUserForbidden = errors.New("user: forbidden")
	// ErrUserUnavailable indicates a transient backend failure.
	ErrUserUnavailable = errors.New("user: unavailable")
)

// TokenIssuer mints signed tokens for authenticated identities.
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

// UserServiceDeps bundles collaborators required to construct the user service.
type UserServiceDeps struct {
	Users       repositories.UserRepository
	Tokens      TokenIssuer
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
	// BcryptCost overrides the hashing cost, primarily to speed up tests.
	BcryptCost int
}

type userService struct {
	users      repositories.UserRepository
	tokens     TokenIssuer
	clock      func() time.Time
	newID      func() string
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService validates dependencies and returns a UserService.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("user service: token issuer is required")
	}

	service := &userService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		clock:      deps.Clock,
		newID:      deps.IDGenerator,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
	}
	if service.clock == nil {
		service.clock = func() time.Time { return time.Now().UTC() }
	}
	if service.newID == nil {
		service.newID = func() string { return userIDPrefix + ulid.Make().String() }
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.bcryptCost == 0 {
		service.bcryptCost = bcrypt.DefaultCost
	}
	return service, nil
}

// Register creates an account with the user role and returns a signed token.
func (s *userService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return AuthResult{}, fmt.Errorf("%w: name is required", ErrUserInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return AuthResult{}, fmt.Errorf("%w: invalid email address", ErrUserInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrUserInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("user service: hash password: %w", err)
	}

	now := s.clock().UTC()
	user := domain.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if repositories.IsConflict(err) {
			return AuthResult{}, fmt.Errorf("%w: %s", ErrUserEmailTaken, email)
		}
		return AuthResult{}, s.wrapRepositoryError(err)
	}

	return s.issueToken(user)
}

// Login authenticates any account by email and password.
func (s *userService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return s.login(ctx, email, password, false)
}

// AdminLogin authenticates an account and additionally requires the admin role.
func (s *userService) AdminLogin(ctx context.Context, email, password string) (AuthResult, error) {
	return s.login(ctx, email, password, true)
}

// GetUser fetches one account.
func (s *userService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, s.wrapRepositoryError(err)
	}
	return user, nil
}

func (s *userService) login(ctx context.Context, email, password string, requireAdmin bool) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrUserInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return AuthResult{}, ErrUserInvalidCredentials
		}
		return AuthResult{}, s.wrapRepositoryError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrUserInvalidCredentials
	}
	if requireAdmin && user.Role != domain.RoleAdmin {
		return AuthResult{}, fmt.Errorf("%w: admin role required", ErrUserForbidden)
	}

	return s.issueToken(user)
}

func (s *userService) issueToken(user domain.User) (AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("user service: issue token: %w", err)
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *userService) wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case repositories.IsUnavailable(err):
		return fmt.Errorf("%w: %v", ErrUserUnavailable, err)
	default:
		return err
	}
}
