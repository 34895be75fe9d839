package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/events"
	"github.com/blendaura/api/internal/repositories"
)

const (
	orderIDPrefix = "ord_"

	orderNumberCounter = "orders"

	// defaultPaymentRef is recorded when an admin confirms a payment without
	// quoting the customer's reference.
	defaultPaymentRef = "manual payment"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order or a referenced product could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderForbidden indicates the caller may not act on this order.
	ErrOrderForbidden = errors.New("order: forbidden")
	// ErrOrderConflict indicates stock ran out or a concurrent write won.
	ErrOrderConflict = errors.New("order: conflict")
	// ErrOrderUnavailable indicates a transient backend failure.
	ErrOrderUnavailable = errors.New("order: unavailable")
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

	// productRefPattern accepts prd_-prefixed ULIDs and legacy 24-char hex ids.
	productRefPattern = regexp.MustCompile(`^(prd_[0-9A-HJKMNP-TV-Z]{26}|[0-9a-fA-F]{24})$`)
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Users       repositories.UserRepository
	Counters    repositories.CounterRepository
	Events      events.Publisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
}

type orderService struct {
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	counters repositories.CounterRepository
	events   events.Publisher
	clock    func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewOrderService validates dependencies and returns an OrderService.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("order service: user repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("order service: counter repository is required")
	}

	service := &orderService{
		orders:   deps.Orders,
		users:    deps.Users,
		counters: deps.Counters,
		events:   deps.Events,
		clock:    deps.Clock,
		newID:    deps.IDGenerator,
		logger:   deps.Logger,
	}
	if service.events == nil {
		service.events = events.NoopPublisher{}
	}
	if service.clock == nil {
		service.clock = func() time.Time { return time.Now().UTC() }
	}
	if service.newID == nil {
		service.newID = func() string { return orderIDPrefix + ulid.Make().String() }
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	return service, nil
}

// CreateOrder places an order for the caller. Item prices and names are
// snapshotted from the catalog inside the placement transaction, so a failed
// line never leaves partial stock mutations behind.
func (s *orderService) CreateOrder(ctx context.Context, caller Caller, input CreateOrderInput) (domain.Order, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return domain.Order{}, fmt.Errorf("%w: caller is required", ErrOrderForbidden)
	}
	if err := validateOrderInput(input); err != nil {
		return domain.Order{}, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodUPI
	}

	now := s.clock().UTC()
	seq, err := s.counters.Next(ctx, fmt.Sprintf("%s-%d", orderNumberCounter, now.Year()))
	if err != nil {
		return domain.Order{}, s.wrapRepositoryError(err)
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		items = append(items, domain.OrderItem{
			ProductRef: strings.TrimSpace(line.ProductID),
			Quantity:   line.Quantity,
		})
	}

	order := domain.Order{
		ID:            s.newID(),
		OrderNumber:   fmt.Sprintf("BD-%d-%04d", now.Year(), seq),
		UserID:        caller.ID,
		Items:         items,
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.OrderStatusPending,
		Shipping:      trimShipping(input.Shipping),
	}

	placed, err := s.orders.Place(ctx, repositories.PlaceOrderRequest{Order: order, Now: now})
	if err != nil {
		return domain.Order{}, s.wrapPlacementError(err)
	}

	s.publish(ctx, events.EventOrderCreated, placed)
	return placed, nil
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *orderService) GetOrder(ctx context.Context, caller Caller, orderID string) (domain.Order, error) {
	order, err := s.fetch(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != caller.ID && !caller.IsAdmin() {
		return domain.Order{}, fmt.Errorf("%w: order %s", ErrOrderForbidden, orderID)
	}
	return order, nil
}

// ListMyOrders returns the caller's orders, newest first.
func (s *orderService) ListMyOrders(ctx context.Context, caller Caller) ([]domain.Order, error) {
	if strings.TrimSpace(caller.ID) == "" {
		return nil, fmt.Errorf("%w: caller is required", ErrOrderForbidden)
	}
	orders, err := s.orders.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, s.wrapRepositoryError(err)
	}
	return orders, nil
}

// ListAllOrders returns every order with resolved customer details. Admin only.
func (s *orderService) ListAllOrders(ctx context.Context, caller Caller) ([]OrderWithCustomer, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrOrderForbidden)
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, s.wrapRepositoryError(err)
	}

	userIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		userIDs = append(userIDs, order.UserID)
	}
	usersByID, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, s.wrapRepositoryError(err)
	}

	enriched := make([]OrderWithCustomer, 0, len(orders))
	for _, order := range orders {
		entry := OrderWithCustomer{Order: order}
		if user, ok := usersByID[order.UserID]; ok {
			entry.CustomerName = user.Name
			entry.CustomerEmail = user.Email
		}
		enriched = append(enriched, entry)
	}
	return enriched, nil
}

// SubmitPaymentReference records the caller's UTR and moves the payment into
// verification. Only the order owner may submit.
func (s *orderService) SubmitPaymentReference(ctx context.Context, caller Caller, orderID, reference string) (domain.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.Order{}, fmt.Errorf("%w: payment reference is required", ErrOrderInvalidInput)
	}

	order, err := s.fetch(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != caller.ID {
		return domain.Order{}, fmt.Errorf("%w: order %s", ErrOrderForbidden, orderID)
	}

	updated, err := s.orders.SubmitPayment(ctx, orderID, reference, s.clock())
	if err != nil {
		return domain.Order{}, s.wrapRepositoryError(err)
	}

	s.publish(ctx, events.EventOrderPaymentSubmitted, updated)
	return updated, nil
}

// MarkPaid confirms payment regardless of the current payment state and moves
// fulfillment to processing. Admin only. An empty paymentRef keeps the
// submitted reference, or falls back to a manual marker.
func (s *orderService) MarkPaid(ctx context.Context, caller Caller, orderID, paymentRef string) (domain.Order, error) {
	if !caller.IsAdmin() {
		return domain.Order{}, fmt.Errorf("%w: admin role required", ErrOrderForbidden)
	}

	order, err := s.fetch(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	reference := strings.TrimSpace(paymentRef)
	if reference == "" {
		reference = order.PaymentRef
	}
	if reference == "" {
		reference = defaultPaymentRef
	}

	updated, err := s.orders.MarkPaid(ctx, orderID, reference, s.clock())
	if err != nil {
		return domain.Order{}, s.wrapRepositoryError(err)
	}

	s.publish(ctx, events.EventOrderPaid, updated)
	return updated, nil
}

// UpdateStatus sets the fulfillment status. Admin only.
func (s *orderService) UpdateStatus(ctx context.Context, caller Caller, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !caller.IsAdmin() {
		return domain.Order{}, fmt.Errorf("%w: admin role required", ErrOrderForbidden)
	}
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, status)
	}

	if _, err := s.fetch(ctx, orderID); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, status, s.clock())
	if err != nil {
		return domain.Order{}, s.wrapRepositoryError(err)
	}

	s.publish(ctx, events.EventOrderStatusChanged, updated)
	return updated, nil
}

func (s *orderService) fetch(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.wrapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) publish(ctx context.Context, eventType string, order domain.Order) {
	if err := s.events.PublishOrderEvent(ctx, eventType, order); err != nil {
		s.logger.Warn("order event publish failed",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func (s *orderService) wrapPlacementError(err error) error {
	var orderErr *repositories.OrderError
	if errors.As(err, &orderErr) {
		switch orderErr.Code {
		case repositories.OrderErrorProductNotFound:
			return fmt.Errorf("%w: product %s not found", ErrOrderNotFound, orderErr.ProductRef)
		case repositories.OrderErrorInsufficientStock:
			return fmt.Errorf("%w: %s", ErrOrderConflict, orderErr.Message)
		default:
			return fmt.Errorf("%w: %s", ErrOrderInvalidInput, orderErr.Message)
		}
	}
	return s.wrapRepositoryError(err)
}

func (s *orderService) wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrOrderConflict, err)
	case repositories.IsUnavailable(err):
		return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	default:
		return err
	}
}

// validateOrderInput fails fast in a fixed sequence: cart, shipping fields,
// email shape, phone shape, then per-line product reference and quantity.
func validateOrderInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrOrderInvalidInput)
	}

	shipping := trimShipping(input.Shipping)
	if shipping.Name == "" || shipping.Email == "" || shipping.Phone == "" || shipping.Address == "" {
		return fmt.Errorf("%w: shipping name, email, phone, and address are required", ErrOrderInvalidInput)
	}
	if !emailPattern.MatchString(shipping.Email) {
		return fmt.Errorf("%w: invalid email address", ErrOrderInvalidInput)
	}
	if !phonePattern.MatchString(shipping.Phone) {
		return fmt.Errorf("%w: phone must be 10 digits", ErrOrderInvalidInput)
	}

	for _, line := range input.Items {
		if !productRefPattern.MatchString(strings.TrimSpace(line.ProductID)) {
			return fmt.Errorf("%w: malformed product reference %q", ErrOrderInvalidInput, line.ProductID)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrOrderInvalidInput)
		}
	}

	if input.PaymentMethod != "" && !domain.ValidPaymentMethod(input.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", ErrOrderInvalidInput, input.PaymentMethod)
	}
	return nil
}

func trimShipping(shipping domain.ShippingDetails) domain.ShippingDetails {
	return domain.ShippingDetails{
		Name:    strings.TrimSpace(shipping.Name),
		Email:   strings.TrimSpace(shipping.Email),
		Phone:   strings.TrimSpace(shipping.Phone),
		Address: strings.TrimSpace(shipping.Address),
	}
}
