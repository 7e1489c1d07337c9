package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/event"
	"github.com/vinoddotcom/ecom-learn-backend/internal/repository"
	apperrors "github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

// maxReviewRetries bounds the re-read-and-retry loop when a concurrent
// writer updates the same product's reviews.
const maxReviewRetries = 3

// errNoChange signals that the mutation left the product untouched, so the
// guarded write can be skipped.
var errNoChange = errors.New("no change")

// ReviewService maintains the embedded reviews of a product together with
// the denormalized rating and review count. All writes go through a
// version-guarded update, so concurrent review operations on one product
// serialize instead of overwriting each other.
type ReviewService struct {
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
	}
}

// UpsertReviewInput holds the parameters for submitting a review.
type UpsertReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// Upsert submits a review for a product. A user reviewing the same product
// again replaces their earlier review; the review count never grows for a
// repeat reviewer. Returns the product with recalculated aggregates.
func (s *ReviewService) Upsert(ctx context.Context, input UpsertReviewInput) (*domain.Product, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	var product *domain.Product
	err := s.withRetry(ctx, input.ProductID, func(p *domain.Product) {
		now := time.Now().UTC()
		p.UpsertReview(domain.Review{
			ID:        uuid.New().String(),
			UserID:    input.UserID,
			UserName:  input.UserName,
			Rating:    input.Rating,
			Comment:   input.Comment,
			CreatedAt: now,
			UpdatedAt: now,
		})
		product = p
	})
	if err != nil {
		return nil, err
	}

	review, _ := product.ReviewByUser(input.UserID)
	if err := s.producer.PublishReviewUpserted(ctx, product, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.upserted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review upserted",
		slog.String("product_id", product.ID),
		slog.String("user_id", input.UserID),
		slog.Int("rating", input.Rating),
	)

	return product, nil
}

// Delete removes a review from a product. The review owner and admins may
// delete; deleting a review that no longer exists succeeds without change.
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID, callerID, callerRole string) (*domain.Product, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if reviewID == "" {
		return nil, apperrors.InvalidInput("review id is required")
	}

	var product *domain.Product
	var removed bool

	err := s.withRetryErr(ctx, productID, func(p *domain.Product) error {
		for i := range p.Reviews {
			if p.Reviews[i].ID == reviewID {
				if p.Reviews[i].UserID != callerID && callerRole != domain.RoleAdmin {
					return apperrors.Forbidden("cannot delete another user's review")
				}
				break
			}
		}
		removed = p.RemoveReview(reviewID)
		product = p
		if !removed {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !removed {
		// Nothing to delete; the aggregates are already consistent.
		return product, nil
	}

	if err := s.producer.PublishReviewDeleted(ctx, product, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("product_id", product.ID),
		slog.String("review_id", reviewID),
	)

	return product, nil
}

// List returns a product's reviews.
func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return product.Reviews, nil
}

// withRetry re-reads the product and reapplies mutate until the
// version-guarded write succeeds or the retry budget runs out.
func (s *ReviewService) withRetry(ctx context.Context, productID string, mutate func(*domain.Product)) error {
	return s.withRetryErr(ctx, productID, func(p *domain.Product) error {
		mutate(p)
		return nil
	})
}

func (s *ReviewService) withRetryErr(ctx context.Context, productID string, mutate func(*domain.Product) error) error {
	var lastErr error
	for attempt := 0; attempt < maxReviewRetries; attempt++ {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		if err := mutate(product); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			return err
		}

		err = s.productRepo.SetReviews(ctx, product)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}

		lastErr = err
		s.logger.WarnContext(ctx, "concurrent review update, retrying",
			slog.String("product_id", productID),
			slog.Int("attempt", attempt+1),
		)
	}
	return lastErr
}
