package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/repositories"
)

type stubProductRepo struct {
	insertFn func(ctx context.Context, product domain.Product) error
	patchFn  func(ctx context.Context, productID string, patch repositories.ProductPatch, now time.Time) (domain.Product, error)
	deleteFn func(ctx context.Context, productID string) error
	findFn   func(ctx context.Context, productID string) (domain.Product, error)
	listFn   func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error)
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn == nil {
		return errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, product)
}

func (s *stubProductRepo) Patch(ctx context.Context, productID string, patch repositories.ProductPatch, now time.Time) (domain.Product, error) {
	if s.patchFn == nil {
		return domain.Product{}, errors.New("unexpected Patch call")
	}
	return s.patchFn(ctx, productID, patch, now)
}

func (s *stubProductRepo) Delete(ctx context.Context, productID string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, productID)
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn == nil {
		return domain.Product{}, errors.New("unexpected FindByID call")
	}
	return s.findFn(ctx, productID)
}

func (s *stubProductRepo) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, filter)
}

func newTestCatalogService(t *testing.T, products *stubProductRepo) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Products:    products,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "prd_TEST" },
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

var adminCaller = Caller{ID: "usr_admin", Role: domain.RoleAdmin}

func TestCreateProduct(t *testing.T) {
	var inserted domain.Product
	products := &stubProductRepo{
		insertFn: func(ctx context.Context, product domain.Product) error {
			inserted = product
			return nil
		},
	}
	svc := newTestCatalogService(t, products)

	product, err := svc.CreateProduct(context.Background(), adminCaller, CreateProductInput{
		Name:     "  Rose Body Butter ",
		Price:    49900,
		Stock:    25,
		Category: "Skincare",
	}, nil)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.ID != "prd_TEST" {
		t.Fatalf("id = %q, want prd_TEST", product.ID)
	}
	if inserted.Name != "Rose Body Butter" {
		t.Fatalf("name = %q, want trimmed", inserted.Name)
	}
	if !inserted.CreatedAt.Equal(fixedNow) {
		t.Fatalf("createdAt = %v, want %v", inserted.CreatedAt, fixedNow)
	}
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepo{})
	_, err := svc.CreateProduct(context.Background(), Caller{ID: "usr_1", Role: domain.RoleUser}, CreateProductInput{Name: "X", Price: 1}, nil)
	if !errors.Is(err, ErrCatalogForbidden) {
		t.Fatalf("err = %v, want ErrCatalogForbidden", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing name", CreateProductInput{Price: 100, Stock: 1}},
		{"zero price", CreateProductInput{Name: "X", Price: 0}},
		{"negative stock", CreateProductInput{Name: "X", Price: 100, Stock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestCatalogService(t, &stubProductRepo{})
			_, err := svc.CreateProduct(context.Background(), adminCaller, tc.input, nil)
			if !errors.Is(err, ErrCatalogInvalidInput) {
				t.Fatalf("err = %v, want ErrCatalogInvalidInput", err)
			}
		})
	}
}

func TestCreateProductImageWithoutStore(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepo{})
	_, err := svc.CreateProduct(context.Background(), adminCaller, CreateProductInput{Name: "X", Price: 100}, &ProductImageUpload{ContentType: "image/png"})
	if !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("err = %v, want ErrCatalogInvalidInput when uploads are unconfigured", err)
	}
}

func TestUpdateProductAppliesPatch(t *testing.T) {
	newPrice := int64(59900)
	var gotPatch repositories.ProductPatch
	products := &stubProductRepo{
		findFn: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID, Name: "Rose Body Butter", Price: 49900}, nil
		},
		patchFn: func(ctx context.Context, productID string, patch repositories.ProductPatch, now time.Time) (domain.Product, error) {
			gotPatch = patch
			return domain.Product{ID: productID, Name: "Rose Body Butter", Price: *patch.Price, UpdatedAt: now}, nil
		},
	}
	svc := newTestCatalogService(t, products)

	updated, err := svc.UpdateProduct(context.Background(), adminCaller, "prd_1", UpdateProductInput{Price: &newPrice}, nil)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Price != 59900 {
		t.Fatalf("price = %d, want 59900", updated.Price)
	}
	if gotPatch.Name != nil || gotPatch.Stock != nil {
		t.Fatalf("patch touched unset fields: %+v", gotPatch)
	}
}

func TestUpdateProductPatchValidation(t *testing.T) {
	empty := " "
	badPrice := int64(0)
	cases := []struct {
		name  string
		input UpdateProductInput
	}{
		{"blank name", UpdateProductInput{Name: &empty}},
		{"zero price", UpdateProductInput{Price: &badPrice}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestCatalogService(t, &stubProductRepo{})
			_, err := svc.UpdateProduct(context.Background(), adminCaller, "prd_1", tc.input, nil)
			if !errors.Is(err, ErrCatalogInvalidInput) {
				t.Fatalf("err = %v, want ErrCatalogInvalidInput", err)
			}
		})
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	products := &stubProductRepo{
		findFn: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{}, repoError{notFound: true}
		},
	}
	svc := newTestCatalogService(t, products)

	name := "New Name"
	_, err := svc.UpdateProduct(context.Background(), adminCaller, "prd_missing", UpdateProductInput{Name: &name}, nil)
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("err = %v, want ErrCatalogNotFound", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	deleted := false
	products := &stubProductRepo{
		findFn: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{ID: productID}, nil
		},
		deleteFn: func(ctx context.Context, productID string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestCatalogService(t, products)

	if err := svc.DeleteProduct(context.Background(), adminCaller, "prd_1"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if !deleted {
		t.Fatal("repository Delete was not called")
	}

	if err := svc.DeleteProduct(context.Background(), Caller{ID: "usr_1", Role: domain.RoleUser}, "prd_1"); !errors.Is(err, ErrCatalogForbidden) {
		t.Fatalf("non-admin err = %v, want ErrCatalogForbidden", err)
	}
}

func TestListProductsPassesCategoryFilter(t *testing.T) {
	var gotFilter repositories.ProductListFilter
	products := &stubProductRepo{
		listFn: func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
			gotFilter = filter
			return []domain.Product{{ID: "prd_1"}}, nil
		},
	}
	svc := newTestCatalogService(t, products)

	list, err := svc.ListProducts(context.Background(), "Skincare")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if gotFilter.Category != "Skincare" {
		t.Fatalf("filter category = %q, want Skincare", gotFilter.Category)
	}
}
