package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/blendaura/api/internal/domain"
	pfirestore "github.com/blendaura/api/internal/platform/firestore"
)

const (
	usersCollection      = "users"
	userEmailsCollection = "userEmails"
)

// emailIndexDocument reserves a lowercase email for exactly one account.
type emailIndexDocument struct {
	UserID    string    `firestore:"userId"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// UserRepository implements repositories.UserRepository backed by Firestore.
// Email uniqueness is enforced through an index collection keyed by the
// lowercase address.
type UserRepository struct {
	provider *pfirestore.Provider
	users    *pfirestore.BaseRepository[userDocument]
	emails   *pfirestore.BaseRepository[emailIndexDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	return &UserRepository{
		provider: provider,
		users:    pfirestore.NewBaseRepository[userDocument](provider, usersCollection),
		emails:   pfirestore.NewBaseRepository[emailIndexDocument](provider, userEmailsCollection),
	}, nil
}

// Insert stores the account and its email reservation in one transaction. A
// taken email surfaces as a conflict.
func (r *UserRepository) Insert(ctx context.Context, user domain.User) error {
	if r == nil || r.provider == nil {
		return errors.New("user repository not initialised")
	}
	if strings.TrimSpace(user.ID) == "" {
		return errors.New("users: user id is required")
	}
	emailKey := strings.ToLower(strings.TrimSpace(user.Email))
	if emailKey == "" {
		return errors.New("users: email is required")
	}

	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		userRef, err := r.users.DocumentRef(ctx, user.ID)
		if err != nil {
			return err
		}
		emailRef, err := r.emails.DocumentRef(ctx, emailKey)
		if err != nil {
			return err
		}
		if err := tx.Create(emailRef, emailIndexDocument{
			UserID:    user.ID,
			CreatedAt: user.CreatedAt.UTC(),
		}); err != nil {
			return err
		}
		return tx.Create(userRef, newUserDocument(user))
	})
	return pfirestore.WrapError("users.insert", err)
}

// FindByID fetches one account.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if r == nil || r.users == nil {
		return domain.User{}, errors.New("user repository not initialised")
	}
	doc, err := r.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// FindByEmail resolves an account by its address, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if r == nil || r.emails == nil {
		return domain.User{}, errors.New("user repository not initialised")
	}
	emailKey := strings.ToLower(strings.TrimSpace(email))
	index, err := r.emails.Get(ctx, emailKey)
	if err != nil {
		return domain.User{}, err
	}
	return r.FindByID(ctx, index.Data.UserID)
}

// FindByIDs resolves multiple accounts, skipping IDs that no longer exist.
func (r *UserRepository) FindByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	if r == nil || r.users == nil {
		return nil, errors.New("user repository not initialised")
	}

	users := make(map[string]domain.User, len(userIDs))
	for _, userID := range userIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, seen := users[userID]; seen {
			continue
		}
		doc, err := r.users.Get(ctx, userID)
		if err != nil {
			var repoErr *pfirestore.Error
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				continue
			}
			return nil, err
		}
		users[userID] = doc.Data.toDomain(doc.ID)
	}
	return users, nil
}
