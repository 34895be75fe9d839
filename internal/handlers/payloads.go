package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/platform/httpx"
	"github.com/blendaura/api/internal/services"
)

const maxJSONBodySize = 64 * 1024

var errBodyTooLarge = errors.New("request body too large")

type productPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func buildProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		Description: product.Description,
		ImageURL:    product.Image.URL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

type orderItemPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image,omitempty"`
}

type shippingPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"order_number"`
	Items         []orderItemPayload `json:"items"`
	Total         int64              `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	PaymentRef    string             `json:"payment_ref,omitempty"`
	Status        string             `json:"status"`
	Shipping      shippingPayload    `json:"shipping"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ProductID: item.ProductRef,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
		})
	}
	return orderPayload{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Items:         items,
		Total:         order.Total,
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		PaymentRef:    order.PaymentRef,
		Status:        string(order.Status),
		Shipping: shippingPayload{
			Name:    order.Shipping.Name,
			Email:   order.Shipping.Email,
			Phone:   order.Shipping.Phone,
			Address: order.Shipping.Address,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func buildAdminOrderPayload(entry services.OrderWithCustomer) orderPayload {
	payload := buildOrderPayload(entry.Order)
	payload.CustomerName = entry.CustomerName
	payload.CustomerEmail = entry.CustomerEmail
	return payload
}

type userPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

func buildUserPayload(user domain.User) userPayload {
	return userPayload{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     string(user.Role),
		Verified: user.Verified,
	}
}

type contactPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func buildContactPayload(message domain.ContactMessage) contactPayload {
	return contactPayload{
		ID:        message.ID,
		Name:      message.Name,
		Email:     message.Email,
		Message:   message.Message,
		CreatedAt: message.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodySize+1))
	if err != nil {
		return err
	}
	if len(body) > maxJSONBodySize {
		return errBodyTooLarge
	}
	if len(body) == 0 {
		return errors.New("request body is required")
	}
	return json.Unmarshal(body, dst)
}

func writeDecodeError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
}

// callerFromContext converts the middleware-stored identity into a service
// caller. The bool result is false when the request is unauthenticated.
func callerFromContext(ctx context.Context) (services.Caller, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return services.Caller{}, false
	}
	return services.Caller{
		ID:   identity.ID,
		Role: domain.Role(identity.Role),
	}, true
}

func writeUnauthenticated(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
}
