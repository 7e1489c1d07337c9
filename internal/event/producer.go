package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	pkgkafka "github.com/vinoddotcom/ecom-learn-backend/pkg/kafka"
)

// Kafka topic constants for shop domain events.
const (
	TopicUserRegistered     = "shop.user.registered"
	TopicProductCreated     = "shop.product.created"
	TopicProductUpdated     = "shop.product.updated"
	TopicProductDeleted     = "shop.product.deleted"
	TopicReviewUpserted     = "shop.review.upserted"
	TopicReviewDeleted      = "shop.review.deleted"
	TopicOrderCreated       = "shop.order.created"
	TopicOrderStatusChanged = "shop.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// Source identifier for events originating from this backend.
const Source = "shop-backend"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ProductData is the payload for product lifecycle events.
type ProductData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
}

// ReviewData is the payload for review events. Rating and ReviewCount are
// the product aggregates after the change.
type ReviewData struct {
	ProductID   string  `json:"product_id"`
	ReviewID    string  `json:"review_id"`
	UserID      string  `json:"user_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// Producer publishes shop domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, ProductData{ID: productID})
}

// PublishReviewUpserted publishes a review.upserted event.
func (p *Producer) PublishReviewUpserted(ctx context.Context, product *domain.Product, review domain.Review) error {
	return p.publish(ctx, TopicReviewUpserted, product.ID, AggregateTypeProduct, ReviewData{
		ProductID:   product.ID,
		ReviewID:    review.ID,
		UserID:      review.UserID,
		Rating:      product.Rating,
		ReviewCount: product.ReviewCount,
	})
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, product *domain.Product, reviewID string) error {
	return p.publish(ctx, TopicReviewDeleted, product.ID, AggregateTypeProduct, ReviewData{
		ProductID:   product.ID,
		ReviewID:    reviewID,
		Rating:      product.Rating,
		ReviewCount: product.ReviewCount,
	})
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, OrderCreatedData{
		ID:          order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from string) error {
	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, OrderStatusChangedData{
		ID:     order.ID,
		UserID: order.UserID,
		From:   from,
		To:     order.Status,
	})
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
	}
}
