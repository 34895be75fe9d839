package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/invoice"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/platform/httpx"
	"github.com/blendaura/api/internal/services"
)

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items         []createOrderItemRequest `json:"items"`
	Shipping      shippingPayload          `json:"shipping"`
	PaymentMethod string                   `json:"payment_method"`
}

type submitPaymentRequest struct {
	Reference string `json:"reference"`
}

// OrderHandlers exposes order endpoints for authenticated customers.
type OrderHandlers struct {
	authn    *auth.Authenticator
	orders   services.OrderService
	invoices *invoice.Renderer
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService, invoices *invoice.Renderer) *OrderHandlers {
	return &OrderHandlers{
		authn:    authn,
		orders:   orders,
		invoices: invoices,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listMyOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}/payment", h.submitPayment)
	// Invoice downloads are an admin surface despite living under /orders.
	r.Get("/{orderID}/invoice", h.downloadInvoice)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	items := make([]services.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(ctx, caller, services.CreateOrderInput{
		Items: items,
		Shipping: domain.ShippingDetails{
			Name:    req.Shipping.Name,
			Email:   req.Shipping.Email,
			Phone:   req.Shipping.Phone,
			Address: req.Shipping.Address,
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) listMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	orders, err := h.orders.ListMyOrders(ctx, caller)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payloads := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, buildOrderPayload(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": payloads})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, caller, chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) submitPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	var req submitPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	order, err := h.orders.SubmitPaymentReference(ctx, caller, chi.URLParam(r, "orderID"), req.Reference)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) downloadInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	if !caller.IsAdmin() {
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_role", "identity does not have required role", http.StatusUnauthorized))
		return
	}
	if h.invoices == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invoice_unavailable", "invoice rendering unavailable", http.StatusServiceUnavailable))
		return
	}

	order, err := h.orders.GetOrder(ctx, caller, chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	pdf, err := h.invoices.Render(order)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invoice_error", "failed to render invoice", http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename(order)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *OrderHandlers) caller(ctx context.Context, w http.ResponseWriter) (services.Caller, bool) {
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return services.Caller{}, false
	}
	caller, ok := callerFromContext(ctx)
	if !ok {
		writeUnauthenticated(ctx, w)
		return services.Caller{}, false
	}
	return caller, true
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "insufficient permissions", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "order service temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
