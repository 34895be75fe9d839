package firestore

import (
	"context"
	"errors"

	"google.golang.org/api/iterator"

	pfirestore "github.com/blendaura/api/internal/platform/firestore"
)

// HealthRepository verifies Firestore connectivity with a minimal read.
type HealthRepository struct {
	provider *pfirestore.Provider
}

// NewHealthRepository constructs a Firestore-backed health repository.
func NewHealthRepository(provider *pfirestore.Provider) (*HealthRepository, error) {
	if provider == nil {
		return nil, errors.New("health repository requires firestore provider")
	}
	return &HealthRepository{provider: provider}, nil
}

// Ping issues a one-document probe against the backing store.
func (r *HealthRepository) Ping(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return errors.New("health repository not initialised")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	iter := client.Collections(ctx)
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return pfirestore.WrapError("health.ping", err)
	}
	return nil
}
