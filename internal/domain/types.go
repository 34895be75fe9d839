package domain

import (
	"time"
)

// PaymentMethod enumerates supported payment channels.
type PaymentMethod string

const (
	// PaymentMethodUPI indicates a manual UPI bank transfer confirmed via UTR.
	PaymentMethodUPI PaymentMethod = "UPI"
	// PaymentMethodCOD indicates cash on delivery.
	PaymentMethodCOD PaymentMethod = "COD"
)

// PaymentStatus describes the payment progression of an order.
type PaymentStatus string

const (
	// PaymentStatusPending indicates no payment reference has been submitted yet.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusVerificationPending indicates a UTR awaits admin verification.
	PaymentStatusVerificationPending PaymentStatus = "verification_pending"
	// PaymentStatusPaid indicates an admin confirmed the payment.
	PaymentStatusPaid PaymentStatus = "paid"
)

// OrderStatus describes the fulfillment progression of an order, independent
// of its payment status.
type OrderStatus string

const (
	// OrderStatusPending indicates the order has been placed but not processed.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order left the warehouse.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
)

// Role enumerates account authorisation levels.
type Role string

const (
	// RoleUser is the default role for registered customers.
	RoleUser Role = "user"
	// RoleAdmin grants access to catalog and order management.
	RoleAdmin Role = "admin"
)

// ProductImage references an externally hosted product image.
type ProductImage struct {
	URL        string
	ObjectName string
}

// Product is a catalog entry. Stock is mutated only by order creation and
// never drops below zero once an order has committed.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Stock       int
	Category    string
	Description string
	Image       ProductImage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem snapshots one cart line at the moment the order was placed.
// Name, UnitPrice, and Image are captured server-side at creation time; later
// catalog changes never affect them.
type OrderItem struct {
	ProductRef string
	Name       string
	Quantity   int
	UnitPrice  int64
	Image      string
}

// ShippingDetails carries the destination contact block of an order.
type ShippingDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Order is created exactly once and mutated field-by-field afterwards; no
// exposed operation deletes it.
type Order struct {
	ID            string
	OrderNumber   string
	UserID        string
	Items         []OrderItem
	Total         int64
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	PaymentRef    string
	Status        OrderStatus
	Shipping      ShippingDetails
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User is an account record. PasswordHash is a bcrypt digest and never leaves
// the repository layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContactMessage stores a submission from the public contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// ValidOrderStatus reports whether the supplied value is one of the
// enumerated fulfillment statuses.
func ValidOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether the supplied value is a known payment
// channel.
func ValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentMethodUPI, PaymentMethodCOD:
		return true
	}
	return false
}
