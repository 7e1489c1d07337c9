package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/event"
	"github.com/vinoddotcom/ecom-learn-backend/internal/repository"
	apperrors "github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

// taxRateBps is the flat tax rate in basis points applied to the items total.
const taxRateBps = 1800

// freeShippingThreshold is the items total above which shipping is free, in
// the smallest currency unit.
const freeShippingThreshold = 100000

// flatShippingAmount is the shipping charge below the free threshold.
const flatShippingAmount = 5000

// OrderService implements order processing logic.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress domain.Address
}

// Create places an order: item prices are snapshotted from the current
// catalog and stock is decremented per item with a store-side guard, so an
// order can never take more units than remain.
func (s *OrderService) Create(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, apperrors.InvalidInput("item quantity must be at least 1")
		}
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	var itemsAmount int64

	for _, in := range input.Items {
		product, err := s.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.InStock(in.Quantity) {
			return nil, apperrors.InvalidInput("insufficient stock for product " + product.ID)
		}

		item := domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  in.Quantity,
		}
		if len(product.Images) > 0 {
			item.ImageURL = product.Images[0].URL
		}
		items = append(items, item)
		itemsAmount += item.Subtotal()
	}

	// Decrement stock with the guard in the store; roll back prior
	// decrements if a later item loses the race.
	for i, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.restock(ctx, items[:i])
			return nil, err
		}
	}

	taxAmount := itemsAmount * taxRateBps / 10000
	var shippingAmount int64
	if itemsAmount < freeShippingThreshold {
		shippingAmount = flatShippingAmount
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		ItemsAmount:     itemsAmount,
		TaxAmount:       taxAmount,
		ShippingAmount:  shippingAmount,
		TotalAmount:     itemsAmount + taxAmount + shippingAmount,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.restock(ctx, items)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetByID fetches an order. Non-admin callers may only read their own orders.
func (s *OrderService) GetByID(ctx context.Context, id, callerID, callerRole string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID && callerRole != domain.RoleAdmin {
		return nil, apperrors.Forbidden("cannot access another user's order")
	}
	return order, nil
}

// ListByUser returns the caller's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

// ListAll returns every order, newest first. Admin only, enforced at the
// router.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus moves an order along the status machine. Invalid transitions
// are rejected; delivery stamps delivered_at and cancellation restocks the
// order's items.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput("invalid order status: " + status)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, status) {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, status))
	}

	var deliveredAt *time.Time
	if status == domain.OrderStatusDelivered {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		return nil, err
	}

	if status == domain.OrderStatusCanceled {
		s.restock(ctx, order.Items)
	}

	from := order.Status
	order.Status = status
	order.DeliveredAt = deliveredAt

	if err := s.producer.PublishOrderStatusChanged(ctx, order, from); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("from", from),
		slog.String("to", status),
	)

	return order, nil
}

// Delete removes an order from the store. Admin only, enforced at the
// router. Stock is not returned: deletion is a bookkeeping operation, not a
// cancellation.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
	)
	return nil
}

// restock returns units to the catalog after a failed or canceled order.
// Failures are logged, not propagated: the caller's operation already has an
// outcome to report.
func (s *OrderService) restock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to restock product",
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}
}
