package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/blendaura/api/internal/domain"
	pfirestore "github.com/blendaura/api/internal/platform/firestore"
	"github.com/blendaura/api/internal/repositories"
)

const ordersCollection = "orders"

// OrderRepository implements repositories.OrderRepository backed by Firestore.
// Placement spans the orders and products collections in one transaction.
type OrderRepository struct {
	provider *pfirestore.Provider
	orders   *pfirestore.BaseRepository[orderDocument]
	products *pfirestore.BaseRepository[productDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		provider: provider,
		orders:   pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection),
		products: pfirestore.NewBaseRepository[productDocument](provider, productsCollection),
	}, nil
}

// Place verifies stock for every line, decrements it, snapshots names, unit
// prices, and image URLs from the catalog, and inserts the order. All reads
// happen before any write; when any line fails the transaction aborts and no
// stock changes.
func (r *OrderRepository) Place(ctx context.Context, req repositories.PlaceOrderRequest) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	order := req.Order
	if strings.TrimSpace(order.ID) == "" {
		return domain.Order{}, errors.New("orders: order id is required")
	}
	if len(order.Items) == 0 {
		return domain.Order{}, errors.New("orders: at least one item is required")
	}

	now := req.Now.UTC()
	var placed domain.Order

	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		orderRef, err := r.orders.DocumentRef(ctx, order.ID)
		if err != nil {
			return err
		}

		type lineState struct {
			ref *firestore.DocumentRef
			doc productDocument
		}
		lines := make([]lineState, 0, len(order.Items))

		for idx, item := range order.Items {
			productID := strings.TrimSpace(item.ProductRef)
			if productID == "" {
				return repositories.NewOrderError(repositories.OrderErrorProductNotFound, item.ProductRef, "orders: product reference is required", nil)
			}
			if item.Quantity <= 0 {
				return repositories.NewOrderError(repositories.OrderErrorUnknown, productID, fmt.Sprintf("orders: quantity for %s must be > 0", productID), nil)
			}

			productRef, err := r.products.DocumentRef(ctx, productID)
			if err != nil {
				return err
			}
			snap, err := tx.Get(productRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return repositories.NewOrderError(repositories.OrderErrorProductNotFound, productID, fmt.Sprintf("product %s not found", productID), err)
				}
				return err
			}
			var productDoc productDocument
			if err := snap.DataTo(&productDoc); err != nil {
				return fmt.Errorf("decode product %s: %w", productID, err)
			}
			if productDoc.Stock < item.Quantity {
				return repositories.NewOrderError(repositories.OrderErrorInsufficientStock, productID, fmt.Sprintf("insufficient stock for %s", productDoc.Name), nil)
			}

			order.Items[idx].ProductRef = productID
			order.Items[idx].Name = productDoc.Name
			order.Items[idx].UnitPrice = productDoc.Price
			order.Items[idx].Image = productDoc.ImageURL
			lines = append(lines, lineState{ref: productRef, doc: productDoc})
		}

		var total int64
		for idx, item := range order.Items {
			total += item.UnitPrice * int64(item.Quantity)
			line := lines[idx]
			line.doc.Stock -= item.Quantity
			line.doc.UpdatedAt = now
			if err := tx.Set(line.ref, line.doc); err != nil {
				return err
			}
		}
		order.Total = total
		order.CreatedAt = now
		order.UpdatedAt = now

		if err := tx.Create(orderRef, newOrderDocument(order)); err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		var orderErr *repositories.OrderError
		if errors.As(err, &orderErr) {
			return domain.Order{}, orderErr
		}
		return domain.Order{}, pfirestore.WrapError("orders.place", err)
	}
	return placed, nil
}

// FindByID fetches one order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	doc, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if r == nil || r.orders == nil {
		return nil, errors.New("order repository not initialised")
	}
	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("userId", "==", strings.TrimSpace(userID)).
			OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	if r == nil || r.orders == nil {
		return nil, errors.New("order repository not initialised")
	}
	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocs(docs), nil
}

// SubmitPayment records a customer-supplied payment reference and moves the
// payment into verification.
func (r *OrderRepository) SubmitPayment(ctx context.Context, orderID, paymentRef string, now time.Time) (domain.Order, error) {
	return r.mutate(ctx, orderID, "orders.submit_payment", func(doc *orderDocument) {
		doc.PaymentRef = paymentRef
		doc.PaymentStatus = string(domain.PaymentStatusVerificationPending)
		doc.UpdatedAt = now.UTC()
	})
}

// MarkPaid confirms payment and advances fulfillment to processing.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID, paymentRef string, now time.Time) (domain.Order, error) {
	return r.mutate(ctx, orderID, "orders.mark_paid", func(doc *orderDocument) {
		doc.PaymentStatus = string(domain.PaymentStatusPaid)
		doc.Status = string(domain.OrderStatusProcessing)
		doc.PaymentRef = paymentRef
		doc.UpdatedAt = now.UTC()
	})
}

// UpdateStatus sets the fulfillment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus domain.OrderStatus, now time.Time) (domain.Order, error) {
	return r.mutate(ctx, orderID, "orders.update_status", func(doc *orderDocument) {
		doc.Status = string(orderStatus)
		doc.UpdatedAt = now.UTC()
	})
}

func (r *OrderRepository) mutate(ctx context.Context, orderID, op string, apply func(*orderDocument)) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	var updated domain.Order
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.orders.DocumentRef(ctx, orderID)
		if err != nil {
			return err
		}
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var doc orderDocument
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode order %s: %w", orderID, err)
		}
		apply(&doc)
		if err := tx.Set(ref, doc); err != nil {
			return err
		}
		updated = doc.toDomain(orderID)
		return nil
	})
	if err != nil {
		return domain.Order{}, pfirestore.WrapError(op, err)
	}
	return updated, nil
}

func ordersFromDocs(docs []pfirestore.Document[orderDocument]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data.toDomain(doc.ID))
	}
	return orders
}
