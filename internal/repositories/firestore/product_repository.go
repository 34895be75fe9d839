package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/blendaura/api/internal/domain"
	pfirestore "github.com/blendaura/api/internal/platform/firestore"
	"github.com/blendaura/api/internal/repositories"
)

const productsCollection = "products"

// ProductRepository implements repositories.ProductRepository backed by Firestore.
type ProductRepository struct {
	provider *pfirestore.Provider
	products *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		provider: provider,
		products: pfirestore.NewBaseRepository[productDocument](provider, productsCollection),
	}, nil
}

// Insert stores a new product, failing when the ID is already taken.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if r == nil || r.products == nil {
		return errors.New("product repository not initialised")
	}
	if strings.TrimSpace(product.ID) == "" {
		return errors.New("products: product id is required")
	}
	_, err := r.products.Create(ctx, product.ID, newProductDocument(product))
	return err
}

// Patch applies the non-nil fields and returns the updated product.
func (r *ProductRepository) Patch(ctx context.Context, productID string, patch repositories.ProductPatch, now time.Time) (domain.Product, error) {
	if r == nil || r.provider == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}

	var updated domain.Product
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.products.DocumentRef(ctx, productID)
		if err != nil {
			return err
		}
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}

		if patch.Name != nil {
			doc.Name = *patch.Name
		}
		if patch.Price != nil {
			doc.Price = *patch.Price
		}
		if patch.Stock != nil {
			doc.Stock = *patch.Stock
		}
		if patch.Category != nil {
			doc.Category = *patch.Category
			doc.CategoryLower = strings.ToLower(strings.TrimSpace(*patch.Category))
		}
		if patch.Description != nil {
			doc.Description = *patch.Description
		}
		if patch.Image != nil {
			doc.ImageURL = patch.Image.URL
			doc.ImageObjectName = patch.Image.ObjectName
		}
		doc.UpdatedAt = now.UTC()

		if err := tx.Set(ref, doc); err != nil {
			return err
		}
		updated = doc.toDomain(productID)
		return nil
	})
	if err != nil {
		return domain.Product{}, pfirestore.WrapError("products.patch", err)
	}
	return updated, nil
}

// Delete removes the product document.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	if r == nil || r.products == nil {
		return errors.New("product repository not initialised")
	}
	return r.products.Delete(ctx, productID)
}

// FindByID fetches one product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.products == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// List returns products, optionally filtered by category, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if r == nil || r.products == nil {
		return nil, errors.New("product repository not initialised")
	}

	category := strings.ToLower(strings.TrimSpace(filter.Category))
	docs, err := r.products.Query(ctx, func(query firestore.Query) firestore.Query {
		if category != "" {
			query = query.Where("categoryLower", "==", category)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data.toDomain(doc.ID))
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}
