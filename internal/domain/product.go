package domain

import (
	"time"
)

// Product represents a product in the catalog. Reviews are embedded in the
// product document, and Rating/ReviewCount are denormalized aggregates kept
// in sync with the Reviews slice.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Price       int64     `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	Images      []Image   `json:"images" bson:"images"`
	Rating      float64   `json:"rating" bson:"rating"`
	ReviewCount int       `json:"review_count" bson:"review_count"`
	Reviews     []Review  `json:"reviews" bson:"reviews"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	Version     int64     `json:"-" bson:"version"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Image represents a product image.
type Image struct {
	URL     string `json:"url" bson:"url"`
	AltText string `json:"alt_text,omitempty" bson:"alt_text,omitempty"`
}

// UpsertReview adds the review to the product, or updates the existing
// review by the same user in place. At most one review per user is kept.
// When updating, only the rating, comment, and update time change; the
// review's ID, creation time, and display-name snapshot keep their original
// values. Rating and ReviewCount are recalculated afterwards.
func (p *Product) UpsertReview(r Review) {
	for i := range p.Reviews {
		if p.Reviews[i].UserID == r.UserID {
			p.Reviews[i].Rating = r.Rating
			p.Reviews[i].Comment = r.Comment
			p.Reviews[i].UpdatedAt = r.UpdatedAt
			p.recalculateRating()
			return
		}
	}
	p.Reviews = append(p.Reviews, r)
	p.recalculateRating()
}

// RemoveReview removes the review with the given ID. Removing a review that
// does not exist is a no-op; the aggregates are recalculated either way, so
// the result is false only when nothing changed.
func (p *Product) RemoveReview(reviewID string) bool {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			p.Reviews = append(p.Reviews[:i], p.Reviews[i+1:]...)
			p.recalculateRating()
			return true
		}
	}
	return false
}

// ReviewByUser returns the review left by the given user, if any.
func (p *Product) ReviewByUser(userID string) (Review, bool) {
	for i := range p.Reviews {
		if p.Reviews[i].UserID == userID {
			return p.Reviews[i], true
		}
	}
	return Review{}, false
}

// recalculateRating recomputes the denormalized Rating and ReviewCount from
// the embedded Reviews slice. A product with no reviews has rating 0.
func (p *Product) recalculateRating() {
	p.ReviewCount = len(p.Reviews)
	if p.ReviewCount == 0 {
		p.Rating = 0
		return
	}
	var sum int
	for i := range p.Reviews {
		sum += p.Reviews[i].Rating
	}
	p.Rating = float64(sum) / float64(p.ReviewCount)
}

// InStock reports whether the product has at least qty units available.
func (p *Product) InStock(qty int) bool {
	return p.Stock >= qty
}
