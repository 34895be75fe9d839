package services

import (
	"context"
	"io"

	domain "github.com/blendaura/api/internal/domain"
)

// Caller identifies the authenticated principal performing an operation.
// Services enforce capability checks against it; handlers never pre-filter.
type Caller struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// CreateOrderItemInput is one requested cart line.
type CreateOrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order. Prices are
// never accepted from the caller.
type CreateOrderInput struct {
	Items         []CreateOrderItemInput
	Shipping      domain.ShippingDetails
	PaymentMethod domain.PaymentMethod
}

// OrderWithCustomer pairs an order with the resolved account details for
// admin listings.
type OrderWithCustomer struct {
	Order         domain.Order
	CustomerName  string
	CustomerEmail string
}

// OrderService exposes order placement and lifecycle management.
type OrderService interface {
	CreateOrder(ctx context.Context, caller Caller, input CreateOrderInput) (domain.Order, error)
	GetOrder(ctx context.Context, caller Caller, orderID string) (domain.Order, error)
	ListMyOrders(ctx context.Context, caller Caller) ([]domain.Order, error)
	ListAllOrders(ctx context.Context, caller Caller) ([]OrderWithCustomer, error)
	SubmitPaymentReference(ctx context.Context, caller Caller, orderID, reference string) (domain.Order, error)
	MarkPaid(ctx context.Context, caller Caller, orderID, paymentRef string) (domain.Order, error)
	UpdateStatus(ctx context.Context, caller Caller, orderID string, status domain.OrderStatus) (domain.Order, error)
}

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	Name        string
	Price       int64
	Stock       int
	Category    string
	Description string
}

// UpdateProductInput carries optional catalog updates; nil fields are ignored.
type UpdateProductInput struct {
	Name        *string
	Price       *int64
	Stock       *int
	Category    *string
	Description *string
}

// ProductImageUpload is an incoming image payload.
type ProductImageUpload struct {
	ContentType string
	Body        io.Reader
}

// CatalogService manages the product catalog.
type CatalogService interface {
	CreateProduct(ctx context.Context, caller Caller, input CreateProductInput, image *ProductImageUpload) (domain.Product, error)
	UpdateProduct(ctx context.Context, caller Caller, productID string, input UpdateProductInput, image *ProductImageUpload) (domain.Product, error)
	DeleteProduct(ctx context.Context, caller Caller, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
}

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult pairs the issued token with the account it belongs to.
type AuthResult struct {
	Token string
	User  domain.User
}

// UserService handles registration and login.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (AuthResult, error)
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// ContactInput carries a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactService records and lists contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (domain.ContactMessage, error)
	List(ctx context.Context, caller Caller) ([]domain.ContactMessage, error)
}

// SystemService reports process and dependency health.
type SystemService interface {
	Health(ctx context.Context) error
}
