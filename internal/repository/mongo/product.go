package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/query"
	"github.com/vinoddotcom/ecom-learn-backend/internal/repository"
	apperrors "github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using MongoDB.
// Reviews live inside the product document; SetReviews guards its write with
// the document version so concurrent review updates never lose each other.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a MongoDB-backed product repository on the
// "products" collection.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection("products")}
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

// List composes and runs the listing query. FilteredCount reflects the
// conditions before pagination; TotalCount is the whole collection.
func (r *ProductRepository) List(ctx context.Context, params query.Params) (*repository.ProductListing, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	composer := query.New(r.coll).Apply(params)
	filtered, err := composer.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count filtered products: %w", err)
	}

	products := []domain.Product{}
	if err := composer.Execute(ctx, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &repository.ProductListing{
		Products:      products,
		TotalCount:    total,
		FilteredCount: filtered,
	}, nil
}

// Update replaces the product's catalog fields. Reviews and their aggregates
// are owned by SetReviews and left untouched here.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"price":       p.Price,
			"stock":       p.Stock,
			"images":      p.Images,
			"updated_at":  p.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// SetReviews writes the reviews slice and the denormalized rating and count
// in a single update, matched on the version the caller read. A zero match
// with the product still present means a concurrent writer won; callers
// re-read and retry.
func (r *ProductRepository) SetReviews(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": p.ID, "version": p.Version},
		bson.M{
			"$set": bson.M{
				"reviews":      p.Reviews,
				"rating":       p.Rating,
				"review_count": p.ReviewCount,
				"updated_at":   now,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update product reviews: %w", err)
	}
	if res.MatchedCount == 0 {
		exists, err := r.coll.CountDocuments(ctx, bson.M{"_id": p.ID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if exists == 0 {
			return apperrors.NotFound("product", p.ID)
		}
		return apperrors.Conflict("product", p.ID)
	}

	p.Version++
	p.UpdatedAt = now
	return nil
}

// DecrementStock reduces stock by qty only when enough units remain. The
// guard lives in the update filter, so two concurrent orders can never drive
// stock negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": productID, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		exists, err := r.coll.CountDocuments(ctx, bson.M{"_id": productID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if exists == 0 {
			return apperrors.NotFound("product", productID)
		}
		return apperrors.InvalidInput("insufficient stock for product " + productID)
	}
	return nil
}

// Delete removes a product document.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
