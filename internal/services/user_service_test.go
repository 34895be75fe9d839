package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/auth"
)

type repoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e repoError) Error() string       { return "repository error" }
func (e repoError) IsNotFound() bool    { return e.notFound }
func (e repoError) IsConflict() bool    { return e.conflict }
func (e repoError) IsUnavailable() bool { return e.unavailable }

type stubTokenIssuer struct {
	issued []auth.Identity
	err    error
}

func (s *stubTokenIssuer) Issue(identity auth.Identity) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, identity)
	return "token-" + identity.ID, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newTestUserService(t *testing.T, users *stubUserRepo, tokens *stubTokenIssuer) UserService {
	t.Helper()
	if tokens == nil {
		tokens = &stubTokenIssuer{}
	}
	svc, err := NewUserService(UserServiceDeps{
		Users:       users,
		Tokens:      tokens,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "usr_TEST" },
		BcryptCost:  bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	return svc
}

func TestRegisterIssuesUserToken(t *testing.T) {
	var inserted domain.User
	users := &stubUserRepo{
		insertFn: func(ctx context.Context, user domain.User) error {
			inserted = user
			return nil
		},
	}
	tokens := &stubTokenIssuer{}
	svc := newTestUserService(t, users, tokens)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Asha Rao ",
		Email:    " asha@example.com ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.Token != "token-usr_TEST" {
		t.Fatalf("token = %q, want token-usr_TEST", result.Token)
	}
	if inserted.Name != "Asha Rao" || inserted.Email != "asha@example.com" {
		t.Fatalf("inserted %q/%q, want trimmed values", inserted.Name, inserted.Email)
	}
	if inserted.Role != domain.RoleUser {
		t.Fatalf("role = %q, want user", inserted.Role)
	}
	if inserted.PasswordHash == "correct horse" || inserted.PasswordHash == "" {
		t.Fatal("password was not hashed")
	}
	if len(tokens.issued) != 1 || tokens.issued[0].Role != "user" {
		t.Fatalf("issued identities = %+v, want one with role user", tokens.issued)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "longenough"}},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "longenough"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestUserService(t, &stubUserRepo{}, nil)
			_, err := svc.Register(context.Background(), tc.input)
			if !errors.Is(err, ErrUserInvalidInput) {
				t.Fatalf("err = %v, want ErrUserInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &stubUserRepo{
		insertFn: func(ctx context.Context, user domain.User) error {
			return repoError{conflict: true}
		},
	}
	svc := newTestUserService(t, users, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "longenough",
	})
	if !errors.Is(err, ErrUserEmailTaken) {
		t.Fatalf("err = %v, want ErrUserEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	hash := mustHash(t, "opensesame")
	users := &stubUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			if email != "asha@example.com" {
				return domain.User{}, repoError{notFound: true}
			}
			return domain.User{ID: "usr_1", Email: email, PasswordHash: hash, Role: domain.RoleUser}, nil
		},
	}
	svc := newTestUserService(t, users, nil)

	result, err := svc.Login(context.Background(), "asha@example.com", "opensesame")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}

	if _, err := svc.Login(context.Background(), "asha@example.com", "wrong"); !errors.Is(err, ErrUserInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrUserInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "opensesame"); !errors.Is(err, ErrUserInvalidCredentials) {
		t.Fatalf("unknown account err = %v, want ErrUserInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("blank credentials err = %v, want ErrUserInvalidInput", err)
	}
}

func TestAdminLoginRequiresAdminRole(t *testing.T) {
	hash := mustHash(t, "opensesame")
	role := domain.RoleUser
	users := &stubUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			return domain.User{ID: "usr_1", Email: email, PasswordHash: hash, Role: role}, nil
		},
	}
	svc := newTestUserService(t, users, nil)

	if _, err := svc.AdminLogin(context.Background(), "asha@example.com", "opensesame"); !errors.Is(err, ErrUserForbidden) {
		t.Fatalf("user role err = %v, want ErrUserForbidden", err)
	}

	role = domain.RoleAdmin
	if _, err := svc.AdminLogin(context.Background(), "asha@example.com", "opensesame"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	users := &stubUserRepo{
		findByIDFn: func(ctx context.Context, userID string) (domain.User, error) {
			if userID != "usr_1" {
				return domain.User{}, repoError{notFound: true}
			}
			return domain.User{ID: userID, Name: "Asha"}, nil
		},
	}
	svc := newTestUserService(t, users, nil)

	user, err := svc.GetUser(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Name != "Asha" {
		t.Fatalf("name = %q, want Asha", user.Name)
	}

	if _, err := svc.GetUser(context.Background(), "usr_nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing account err = %v, want ErrUserNotFound", err)
	}
	if _, err := svc.GetUser(context.Background(), " "); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("blank id err = %v, want ErrUserInvalidInput", err)
	}
}
