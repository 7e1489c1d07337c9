package domain

import (
	"time"
)

// Review represents a product review embedded in the product document.
// UserName is a snapshot taken at submission time so listings do not need a
// join against the users collection.
type Review struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	UserName  string    `json:"user_name" bson:"user_name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// IsValidRating reports whether a rating value is within bounds.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
