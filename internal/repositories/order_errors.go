package repositories

import "fmt"

// OrderErrorCode categorises order placement failures.
type OrderErrorCode string

const (
	// OrderErrorProductNotFound indicates a referenced product does not exist.
	OrderErrorProductNotFound OrderErrorCode = "product_not_found"
	// OrderErrorInsufficientStock indicates a line requested more units than available.
	OrderErrorInsufficientStock OrderErrorCode = "insufficient_stock"
	// OrderErrorUnknown covers uncategorised placement failures.
	OrderErrorUnknown OrderErrorCode = "unknown"
)

// OrderError reports a placement failure for a specific product line.
type OrderError struct {
	Code       OrderErrorCode
	ProductRef string
	Message    string
	cause      error
}

// NewOrderError constructs an OrderError.
func NewOrderError(code OrderErrorCode, productRef, message string, cause error) *OrderError {
	return &OrderError{Code: code, ProductRef: productRef, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *OrderError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *OrderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsNotFound implements RepositoryError.
func (e *OrderError) IsNotFound() bool {
	return e != nil && e.Code == OrderErrorProductNotFound
}

// IsConflict implements RepositoryError.
func (e *OrderError) IsConflict() bool {
	return e != nil && e.Code == OrderErrorInsufficientStock
}

// IsUnavailable implements RepositoryError.
func (e *OrderError) IsUnavailable() bool {
	return false
}
