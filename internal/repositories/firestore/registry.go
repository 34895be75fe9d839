package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/blendaura/api/internal/platform/firestore"
	"github.com/blendaura/api/internal/repositories"
)

// Registry bundles the Firestore-backed repositories behind the
// repositories.Registry interface.
type Registry struct {
	provider *pfirestore.Provider

	products *ProductRepository
	orders   *OrderRepository
	users    *UserRepository
	contacts *ContactRepository
	counters *CounterRepository
	health   *HealthRepository
}

// NewRegistry wires every repository against the shared provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}
	contacts, err := NewContactRepository(provider)
	if err != nil {
		return nil, err
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, err
	}
	health, err := NewHealthRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider: provider,
		products: products,
		orders:   orders,
		users:    users,
		contacts: contacts,
		counters: counters,
		health:   health,
	}, nil
}

// Close releases the shared Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Products returns the product repository.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// Orders returns the order repository.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Users returns the user repository.
func (r *Registry) Users() repositories.UserRepository { return r.users }

// Contacts returns the contact repository.
func (r *Registry) Contacts() repositories.ContactRepository { return r.contacts }

// Counters returns the counter repository.
func (r *Registry) Counters() repositories.CounterRepository { return r.counters }

// Health returns the health repository.
func (r *Registry) Health() repositories.HealthRepository { return r.health }
