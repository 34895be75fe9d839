package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/auth"
	"github.com/blendaura/api/internal/services"
)

type stubCatalogService struct {
	createFn func(ctx context.Context, caller services.Caller, input services.CreateProductInput, image *services.ProductImageUpload) (domain.Product, error)
	updateFn func(ctx context.Context, caller services.Caller, productID string, input services.UpdateProductInput, image *services.ProductImageUpload) (domain.Product, error)
	deleteFn func(ctx context.Context, caller services.Caller, productID string) error
	getFn    func(ctx context.Context, productID string) (domain.Product, error)
	listFn   func(ctx context.Context, category string) ([]domain.Product, error)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, caller services.Caller, input services.CreateProductInput, image *services.ProductImageUpload) (domain.Product, error) {
	if s.createFn == nil {
		return domain.Product{}, errors.New("unexpected CreateProduct call")
	}
	return s.createFn(ctx, caller, input, image)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, caller services.Caller, productID string, input services.UpdateProductInput, image *services.ProductImageUpload) (domain.Product, error) {
	if s.updateFn == nil {
		return domain.Product{}, errors.New("unexpected UpdateProduct call")
	}
	return s.updateFn(ctx, caller, productID, input, image)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, caller services.Caller, productID string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected DeleteProduct call")
	}
	return s.deleteFn(ctx, caller, productID)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getFn == nil {
		return domain.Product{}, errors.New("unexpected GetProduct call")
	}
	return s.getFn(ctx, productID)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected ListProducts call")
	}
	return s.listFn(ctx, category)
}

type stubContactService struct {
	submitFn func(ctx context.Context, input services.ContactInput) (domain.ContactMessage, error)
	listFn   func(ctx context.Context, caller services.Caller) ([]domain.ContactMessage, error)
}

func (s *stubContactService) Submit(ctx context.Context, input services.ContactInput) (domain.ContactMessage, error) {
	if s.submitFn == nil {
		return domain.ContactMessage{}, errors.New("unexpected Submit call")
	}
	return s.submitFn(ctx, input)
}

func (s *stubContactService) List(ctx context.Context, caller services.Caller) ([]domain.ContactMessage, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, caller)
}

func newAdminServer(t *testing.T, catalog services.CatalogService, orders services.OrderService, contacts services.ContactService) (*httptest.Server, *auth.TokenIssuer) {
	t.Helper()
	if catalog == nil {
		catalog = &stubCatalogService{}
	}
	if orders == nil {
		orders = &stubOrderService{}
	}
	if contacts == nil {
		contacts = &stubContactService{}
	}
	authn, issuer := testAuthenticator(t)
	handlers := NewAdminHandlers(authn, catalog, orders, contacts)
	router := NewRouter(WithAdminRoutes(func(r chi.Router) { handlers.Routes(r) }))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, issuer
}

func TestAdminRoutesHiddenFromNonAdmins(t *testing.T) {
	server, issuer := newAdminServer(t, nil, nil, nil)
	token := bearerToken(t, issuer, "usr_1", "user")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/admin/orders", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["error"] != "insufficient_role" {
		t.Fatalf("error = %v, want insufficient_role", body["error"])
	}
}

func TestAdminCreateProductJSON(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(ctx context.Context, caller services.Caller, input services.CreateProductInput, image *services.ProductImageUpload) (domain.Product, error) {
			if image != nil {
				t.Error("expected no image for JSON body")
			}
			return domain.Product{ID: "prd_1", Name: input.Name, Price: input.Price, Stock: input.Stock}, nil
		},
	}
	server, issuer := newAdminServer(t, catalog, nil, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/admin/products", token, map[string]any{
		"name":  "Rose Body Butter",
		"price": 49900,
		"stock": 25,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body productPayload
	decodeBody(t, resp, &body)
	if body.Name != "Rose Body Butter" || body.Price != 49900 {
		t.Fatalf("payload = %+v, want created product", body)
	}
}

func TestAdminCreateProductMultipart(t *testing.T) {
	catalog := &stubCatalogService{
		createFn: func(ctx context.Context, caller services.Caller, input services.CreateProductInput, image *services.ProductImageUpload) (domain.Product, error) {
			if input.Price != 49900 || input.Stock != 25 {
				t.Errorf("parsed input = %+v, want price 49900 stock 25", input)
			}
			if image == nil || image.ContentType != "image/png" {
				t.Errorf("image = %+v, want png upload", image)
			}
			return domain.Product{ID: "prd_1", Name: input.Name}, nil
		},
	}
	server, issuer := newAdminServer(t, catalog, nil, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("name", "Rose Body Butter")
	_ = form.WriteField("price", "49900")
	_ = form.WriteField("stock", "25")
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="rose.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write([]byte("not-a-real-png"))
	_ = form.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/admin/products", &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestAdminUpdateProductPartialPatch(t *testing.T) {
	catalog := &stubCatalogService{
		updateFn: func(ctx context.Context, caller services.Caller, productID string, input services.UpdateProductInput, image *services.ProductImageUpload) (domain.Product, error) {
			if productID != "prd_1" {
				t.Errorf("product id = %q, want prd_1", productID)
			}
			if input.Price == nil || *input.Price != 59900 {
				t.Errorf("price pointer = %v, want 59900", input.Price)
			}
			if input.Name != nil || input.Stock != nil {
				t.Errorf("unset fields were patched: %+v", input)
			}
			return domain.Product{ID: productID, Price: *input.Price}, nil
		},
	}
	server, issuer := newAdminServer(t, catalog, nil, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodPatch, server.URL+"/api/v1/admin/products/prd_1", token, map[string]any{"price": 59900})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAdminDeleteProduct(t *testing.T) {
	catalog := &stubCatalogService{
		deleteFn: func(ctx context.Context, caller services.Caller, productID string) error {
			if productID != "prd_1" {
				t.Errorf("product id = %q, want prd_1", productID)
			}
			return nil
		},
	}
	server, issuer := newAdminServer(t, catalog, nil, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/v1/admin/products/prd_1", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}

func TestAdminMarkPaidWithoutBody(t *testing.T) {
	orders := &stubOrderService{
		markPaidFn: func(ctx context.Context, caller services.Caller, orderID, paymentRef string) (domain.Order, error) {
			if paymentRef != "" {
				t.Errorf("payment ref = %q, want empty for bodyless request", paymentRef)
			}
			return domain.Order{ID: orderID, PaymentStatus: domain.PaymentStatusPaid, Status: domain.OrderStatusProcessing}, nil
		},
	}
	server, issuer := newAdminServer(t, nil, orders, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/admin/orders/ord_1/paid", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	orders := &stubOrderService{
		updateStatusFn: func(ctx context.Context, caller services.Caller, orderID string, status domain.OrderStatus) (domain.Order, error) {
			if status != domain.OrderStatusShipped {
				t.Errorf("status = %q, want shipped", status)
			}
			return domain.Order{ID: orderID, Status: status}, nil
		},
	}
	server, issuer := newAdminServer(t, nil, orders, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodPatch, server.URL+"/api/v1/admin/orders/ord_1/status", token, map[string]any{"status": "shipped"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body orderPayload
	decodeBody(t, resp, &body)
	if body.Status != "shipped" {
		t.Fatalf("status = %q, want shipped", body.Status)
	}
}

func TestAdminListOrdersIncludesCustomer(t *testing.T) {
	orders := &stubOrderService{
		listAllFn: func(ctx context.Context, caller services.Caller) ([]services.OrderWithCustomer, error) {
			return []services.OrderWithCustomer{
				{
					Order:         domain.Order{ID: "ord_1", OrderNumber: "BD-2026-0001"},
					CustomerName:  "Asha Rao",
					CustomerEmail: "asha@example.com",
				},
			}, nil
		},
	}
	server, issuer := newAdminServer(t, nil, orders, nil)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/admin/orders", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Orders []orderPayload `json:"orders"`
	}
	decodeBody(t, resp, &body)
	if len(body.Orders) != 1 {
		t.Fatalf("len(orders) = %d, want 1", len(body.Orders))
	}
	if body.Orders[0].CustomerName != "Asha Rao" {
		t.Fatalf("customer_name = %q, want Asha Rao", body.Orders[0].CustomerName)
	}
}

func TestAdminListContacts(t *testing.T) {
	contacts := &stubContactService{
		listFn: func(ctx context.Context, caller services.Caller) ([]domain.ContactMessage, error) {
			return []domain.ContactMessage{{ID: "msg_1", Name: "Asha"}}, nil
		},
	}
	server, issuer := newAdminServer(t, nil, nil, contacts)
	token := bearerToken(t, issuer, "usr_admin", "admin")

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/admin/contact", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Messages []contactPayload `json:"messages"`
	}
	decodeBody(t, resp, &body)
	if len(body.Messages) != 1 || body.Messages[0].ID != "msg_1" {
		t.Fatalf("messages = %+v, want one message msg_1", body.Messages)
	}
}
