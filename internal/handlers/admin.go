package handlers

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/platform/httpx"
	"github.com/blendaura/api/internal/services"
)

const maxImageUploadSize = 10 << 20

type markPaidRequest struct {
	PaymentRef string `json:"payment_ref"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// AdminHandlers exposes catalog and order management for admins.
type AdminHandlers struct {
	authn    *auth.Authenticator
	catalog  services.CatalogService
	orders   services.OrderService
	contacts services.ContactService
}

// NewAdminHandlers constructs a new AdminHandlers instance.
func NewAdminHandlers(authn *auth.Authenticator, catalog services.CatalogService, orders services.OrderService, contacts services.ContactService) *AdminHandlers {
	return &AdminHandlers{
		authn:    authn,
		catalog:  catalog,
		orders:   orders,
		contacts: contacts,
	}
}

// Routes registers the /admin endpoints.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleAdmin))
	}
	r.Post("/products", h.createProduct)
	r.Patch("/products/{productID}", h.updateProduct)
	r.Delete("/products/{productID}", h.deleteProduct)
	r.Get("/orders", h.listOrders)
	r.Post("/orders/{orderID}/paid", h.markPaid)
	r.Patch("/orders/{orderID}/status", h.updateStatus)
	r.Get("/contact", h.listContacts)
}

func (h *AdminHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	input, image, err := h.readProductForm(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	defer closeUpload(image)

	product, err := h.catalog.CreateProduct(ctx, caller, services.CreateProductInput{
		Name:        input.name,
		Price:       input.price,
		Stock:       input.stock,
		Category:    input.category,
		Description: input.description,
	}, uploadFrom(image))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, buildProductPayload(product))
}

func (h *AdminHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	patch, image, err := h.readProductPatchForm(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	defer closeUpload(image)

	product, err := h.catalog.UpdateProduct(ctx, caller, chi.URLParam(r, "productID"), patch, uploadFrom(image))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildProductPayload(product))
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(ctx, caller, chi.URLParam(r, "productID")); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	entries, err := h.orders.ListAllOrders(ctx, caller)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payloads := make([]orderPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, buildAdminOrderPayload(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": payloads})
}

func (h *AdminHandlers) markPaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	// Body is optional; an empty request falls back to the submitted reference.
	var req markPaidRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeDecodeError(ctx, w, err)
			return
		}
	}

	order, err := h.orders.MarkPaid(ctx, caller, chi.URLParam(r, "orderID"), req.PaymentRef)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *AdminHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	order, err := h.orders.UpdateStatus(ctx, caller, chi.URLParam(r, "orderID"), domain.OrderStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildOrderPayload(order))
}

func (h *AdminHandlers) listContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service unavailable", http.StatusServiceUnavailable))
		return
	}

	messages, err := h.contacts.List(ctx, caller)
	if err != nil {
		writeContactError(ctx, w, err)
		return
	}

	payloads := make([]contactPayload, 0, len(messages))
	for _, message := range messages {
		payloads = append(payloads, buildContactPayload(message))
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": payloads})
}

type productFormInput struct {
	name        string
	price       int64
	stock       int
	category    string
	description string
}

type imageUpload struct {
	file        multipart.File
	contentType string
}

// readProductForm parses either a JSON body or a multipart form with an
// optional image part.
func (h *AdminHandlers) readProductForm(r *http.Request) (productFormInput, *imageUpload, error) {
	if !isMultipart(r) {
		var req struct {
			Name        string `json:"name"`
			Price       int64  `json:"price"`
			Stock       int    `json:"stock"`
			Category    string `json:"category"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return productFormInput{}, nil, err
		}
		return productFormInput{
			name:        req.Name,
			price:       req.Price,
			stock:       req.Stock,
			category:    req.Category,
			description: req.Description,
		}, nil, nil
	}

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		return productFormInput{}, nil, errors.New("invalid multipart form")
	}

	price, err := parseFormInt64(r.FormValue("price"))
	if err != nil {
		return productFormInput{}, nil, errors.New("price must be an integer amount in paise")
	}
	stock, err := parseFormInt(r.FormValue("stock"))
	if err != nil {
		return productFormInput{}, nil, errors.New("stock must be an integer")
	}

	input := productFormInput{
		name:        r.FormValue("name"),
		price:       price,
		stock:       stock,
		category:    r.FormValue("category"),
		description: r.FormValue("description"),
	}
	image, err := formImage(r)
	if err != nil {
		return productFormInput{}, nil, err
	}
	return input, image, nil
}

func (h *AdminHandlers) readProductPatchForm(r *http.Request) (services.UpdateProductInput, *imageUpload, error) {
	if !isMultipart(r) {
		var req struct {
			Name        *string `json:"name"`
			Price       *int64  `json:"price"`
			Stock       *int    `json:"stock"`
			Category    *string `json:"category"`
			Description *string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return services.UpdateProductInput{}, nil, err
		}
		return services.UpdateProductInput{
			Name:        req.Name,
			Price:       req.Price,
			Stock:       req.Stock,
			Category:    req.Category,
			Description: req.Description,
		}, nil, nil
	}

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		return services.UpdateProductInput{}, nil, errors.New("invalid multipart form")
	}

	var patch services.UpdateProductInput
	if values, ok := r.MultipartForm.Value["name"]; ok && len(values) > 0 {
		patch.Name = &values[0]
	}
	if values, ok := r.MultipartForm.Value["price"]; ok && len(values) > 0 {
		price, err := parseFormInt64(values[0])
		if err != nil {
			return services.UpdateProductInput{}, nil, errors.New("price must be an integer amount in paise")
		}
		patch.Price = &price
	}
	if values, ok := r.MultipartForm.Value["stock"]; ok && len(values) > 0 {
		stock, err := parseFormInt(values[0])
		if err != nil {
			return services.UpdateProductInput{}, nil, errors.New("stock must be an integer")
		}
		patch.Stock = &stock
	}
	if values, ok := r.MultipartForm.Value["category"]; ok && len(values) > 0 {
		patch.Category = &values[0]
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		patch.Description = &values[0]
	}

	image, err := formImage(r)
	if err != nil {
		return services.UpdateProductInput{}, nil, err
	}
	return patch, image, nil
}

func (h *AdminHandlers) caller(ctx context.Context, w http.ResponseWriter) (services.Caller, bool) {
	if h.catalog == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "admin services unavailable", http.StatusServiceUnavailable))
		return services.Caller{}, false
	}
	caller, ok := callerFromContext(ctx)
	if !ok {
		writeUnauthenticated(ctx, w)
		return services.Caller{}, false
	}
	return caller, true
}

func writeContactError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrContactForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "insufficient permissions", http.StatusForbidden))
	case errors.Is(err, services.ErrContactUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "contact service temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_error", "failed to process contact request", http.StatusInternalServerError))
	}
}

func isMultipart(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

func formImage(r *http.Request) (*imageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	return &imageUpload{
		file:        file,
		contentType: header.Header.Get("Content-Type"),
	}, nil
}

func uploadFrom(image *imageUpload) *services.ProductImageUpload {
	if image == nil {
		return nil
	}
	return &services.ProductImageUpload{
		ContentType: image.contentType,
		Body:        image.file,
	}
}

func closeUpload(image *imageUpload) {
	if image != nil && image.file != nil {
		_ = image.file.Close()
	}
}

func parseFormInt64(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func parseFormInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
