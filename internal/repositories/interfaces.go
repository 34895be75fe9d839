package repositories

import (
	"context"
	"time"

	domain "github.com/blendaura/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Orders() OrderRepository
	Users() UserRepository
	Contacts() ContactRepository
	Counters() CounterRepository
	Health() HealthRepository
}

// ProductListFilter narrows product listings.
type ProductListFilter struct {
	// Category matches case-insensitively when set.
	Category string
}

// ProductPatch carries optional field updates applied to an existing product.
// Nil fields are left unchanged.
type ProductPatch struct {
	Name        *string
	Price       *int64
	Stock       *int
	Category    *string
	Description *string
	Image       *domain.ProductImage
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Patch(ctx context.Context, productID string, patch ProductPatch, now time.Time) (domain.Product, error)
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
}

// PlaceOrderRequest groups the inputs for transactional order placement.
type PlaceOrderRequest struct {
	Order domain.Order
	Now   time.Time
}

// OrderRepository persists orders. Place atomically verifies and decrements
// product stock before inserting the order; on any failure no stock changes.
type OrderRepository interface {
	Place(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SubmitPayment(ctx context.Context, orderID, paymentRef string, now time.Time) (domain.Order, error)
	MarkPaid(ctx context.Context, orderID, paymentRef string, now time.Time) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, now time.Time) (domain.Order, error)
}

// UserRepository persists accounts. Insert enforces email uniqueness and
// reports violations as conflicts.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, message domain.ContactMessage) error
	List(ctx context.Context) ([]domain.ContactMessage, error)
}

// CounterRepository issues monotonically increasing sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string) (int64, error)
}

// HealthRepository verifies backing store connectivity.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
