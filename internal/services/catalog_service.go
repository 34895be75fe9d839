package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/platform/storage"
	"github.com/blendaura/api/internal/repositories"
)

const productIDPrefix = "prd_"

var (
	// ErrCatalogInvalidInput signals the caller provided invalid data.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the product could not be located.
	ErrCatalogNotFound = errors.New("catalog: not found")
	// ErrCatalogForbidden indicates the caller may not manage the catalog.
	ErrCatalogForbidden = errors.New("catalog: forbidden")
	// ErrCatalogConflict indicates a duplicate or concurrent write.
	ErrCatalogConflict = errors.New("catalog: conflict")
	// ErrCatalogUnavailable indicates a transient backend failure.
	ErrCatalogUnavailable = errors.New("catalog: unavailable")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Images      *storage.ImageStore
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
}

type catalogService struct {
	products repositories.ProductRepository
	images   *storage.ImageStore
	clock    func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewCatalogService validates dependencies and returns a CatalogService.
// Images may be nil, in which case image uploads are rejected.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	service := &catalogService{
		products: deps.Products,
		images:   deps.Images,
		clock:    deps.Clock,
		newID:    deps.IDGenerator,
		logger:   deps.Logger,
	}
	if service.clock == nil {
		service.clock = func() time.Time { return time.Now().UTC() }
	}
	if service.newID == nil {
		service.newID = func() string { return productIDPrefix + ulid.Make().String() }
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	return service, nil
}

// CreateProduct adds a catalog entry, uploading the image when provided.
// Admin only.
func (s *catalogService) CreateProduct(ctx context.Context, caller Caller, input CreateProductInput, image *ProductImageUpload) (domain.Product, error) {
	if !caller.IsAdmin() {
		return domain.Product{}, fmt.Errorf("%w: admin role required", ErrCatalogForbidden)
	}
	if err := validateProductInput(input); err != nil {
		return domain.Product{}, err
	}

	now := s.clock().UTC()
	product := domain.Product{
		ID:          s.newID(),
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		stored, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return domain.Product{}, err
		}
		product.Image = domain.ProductImage{URL: stored.URL, ObjectName: stored.ObjectName}
	}

	if err := s.products.Insert(ctx, product); err != nil {
		if product.Image.ObjectName != "" {
			if cleanupErr := s.images.Delete(ctx, product.Image.ObjectName); cleanupErr != nil {
				s.logger.Warn("catalog: orphaned image after failed insert",
					zap.String("object", product.Image.ObjectName),
					zap.Error(cleanupErr))
			}
		}
		return domain.Product{}, s.wrapRepositoryError(err)
	}
	return product, nil
}

// UpdateProduct applies partial updates and replaces the image when a new one
// is supplied. Admin only.
func (s *catalogService) UpdateProduct(ctx context.Context, caller Caller, productID string, input UpdateProductInput, image *ProductImageUpload) (domain.Product, error) {
	if !caller.IsAdmin() {
		return domain.Product{}, fmt.Errorf("%w: admin role required", ErrCatalogForbidden)
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := validateProductPatch(input); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.wrapRepositoryError(err)
	}

	patch := repositories.ProductPatch{
		Name:        input.Name,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		Description: input.Description,
	}

	if image != nil {
		stored, err := s.uploadImage(ctx, productID, image)
		if err != nil {
			return domain.Product{}, err
		}
		patch.Image = &domain.ProductImage{URL: stored.URL, ObjectName: stored.ObjectName}
	}

	updated, err := s.products.Patch(ctx, productID, patch, s.clock())
	if err != nil {
		return domain.Product{}, s.wrapRepositoryError(err)
	}

	if patch.Image != nil && existing.Image.ObjectName != "" && existing.Image.ObjectName != patch.Image.ObjectName {
		if err := s.images.Delete(ctx, existing.Image.ObjectName); err != nil {
			s.logger.Warn("catalog: stale image not removed",
				zap.String("object", existing.Image.ObjectName),
				zap.Error(err))
		}
	}
	return updated, nil
}

// DeleteProduct removes the product and its stored image. Admin only.
func (s *catalogService) DeleteProduct(ctx context.Context, caller Caller, productID string) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrCatalogForbidden)
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return s.wrapRepositoryError(err)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.wrapRepositoryError(err)
	}

	if existing.Image.ObjectName != "" && s.images != nil {
		if err := s.images.Delete(ctx, existing.Image.ObjectName); err != nil {
			s.logger.Warn("catalog: image not removed after delete",
				zap.String("object", existing.Image.ObjectName),
				zap.Error(err))
		}
	}
	return nil
}

// GetProduct fetches one product. Public.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.wrapRepositoryError(err)
	}
	return product, nil
}

// ListProducts returns the catalog, optionally filtered by category. Public.
func (s *catalogService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.products.List(ctx, repositories.ProductListFilter{Category: category})
	if err != nil {
		return nil, s.wrapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) uploadImage(ctx context.Context, productID string, image *ProductImageUpload) (storage.StoredImage, error) {
	if s.images == nil {
		return storage.StoredImage{}, fmt.Errorf("%w: image uploads are not configured", ErrCatalogInvalidInput)
	}
	ext, err := storage.ObjectExt(image.ContentType)
	if err != nil {
		return storage.StoredImage{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}
	objectName := fmt.Sprintf("products/%s/%s%s", productID, ulid.Make().String(), ext)
	stored, err := s.images.Upload(ctx, objectName, image.ContentType, image.Body)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImageType) {
			return storage.StoredImage{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
		}
		return storage.StoredImage{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return stored, nil
}

func (s *catalogService) wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrCatalogConflict, err)
	case repositories.IsUnavailable(err):
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	default:
		return err
	}
}

func validateProductInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrCatalogInvalidInput)
	}
	if input.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrCatalogInvalidInput)
	}
	if input.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrCatalogInvalidInput)
	}
	return nil
}

func validateProductPatch(input UpdateProductInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrCatalogInvalidInput)
	}
	if input.Price != nil && *input.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrCatalogInvalidInput)
	}
	if input.Stock != nil && *input.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrCatalogInvalidInput)
	}
	return nil
}
