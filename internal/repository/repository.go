package repository

import (
	"context"
	"time"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/query"
)

// ProductListing is the result of a product listing query: one page of
// products plus the counts the listing response contract needs.
type ProductListing struct {
	Products      []domain.Product
	TotalCount    int64
	FilteredCount int64
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List runs a composed listing query and returns a page of products with
	// the unfiltered and filtered totals.
	List(ctx context.Context, params query.Params) (*ProductListing, error)

	// Update replaces an existing product's mutable fields.
	Update(ctx context.Context, product *domain.Product) error

	// SetReviews writes the product's reviews and denormalized aggregates,
	// guarded by the version the product was read at. Returns a conflict
	// error when the product changed concurrently.
	SetReviews(ctx context.Context, product *domain.Product) error

	// DecrementStock atomically reduces stock by qty, failing when fewer
	// than qty units remain.
	DecrementStock(ctx context.Context, productID string, qty int) error

	// Delete removes a product from the store.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order into the store.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUserID returns all orders placed by the given user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Order, error)

	// ListAll returns all orders, newest first.
	ListAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus moves an order to a new status.
	UpdateStatus(ctx context.Context, id, status string, deliveredAt *time.Time) error

	// Delete removes an order from the store.
	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token storage.
type RefreshTokenRepository interface {
	// Store saves a refresh token hash for the user with the given lifetime.
	Store(ctx context.Context, userID, tokenHash string, ttl time.Duration) error

	// UserID resolves a refresh token hash back to the owning user.
	UserID(ctx context.Context, tokenHash string) (string, error)

	// Revoke invalidates a specific refresh token.
	Revoke(ctx context.Context, tokenHash string) error
}
