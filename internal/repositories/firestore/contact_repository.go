package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/blendaura/api/internal/domain"
	pfirestore "github.com/blendaura/api/internal/platform/firestore"
)

const contactMessagesCollection = "contactMessages"

// ContactRepository implements repositories.ContactRepository backed by Firestore.
type ContactRepository struct {
	messages *pfirestore.BaseRepository[contactDocument]
}

// NewContactRepository constructs a Firestore-backed contact repository.
func NewContactRepository(provider *pfirestore.Provider) (*ContactRepository, error) {
	if provider == nil {
		return nil, errors.New("contact repository requires firestore provider")
	}
	return &ContactRepository{
		messages: pfirestore.NewBaseRepository[contactDocument](provider, contactMessagesCollection),
	}, nil
}

// Insert stores a contact form submission.
func (r *ContactRepository) Insert(ctx context.Context, message domain.ContactMessage) error {
	if r == nil || r.messages == nil {
		return errors.New("contact repository not initialised")
	}
	if strings.TrimSpace(message.ID) == "" {
		return errors.New("contacts: message id is required")
	}
	_, err := r.messages.Create(ctx, message.ID, newContactDocument(message))
	return err
}

// List returns all submissions, newest first.
func (r *ContactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	if r == nil || r.messages == nil {
		return nil, errors.New("contact repository not initialised")
	}
	docs, err := r.messages.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	messages := make([]domain.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, doc.Data.toDomain(doc.ID))
	}
	return messages, nil
}
