package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func review(id, userID string, rating int) Review {
	return Review{
		ID:        id,
		UserID:    userID,
		UserName:  "User " + userID,
		Rating:    rating,
		Comment:   "comment",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ============================================================================
// UpsertReview Tests
// ============================================================================

func TestUpsertReview_AddsNewReview(t *testing.T) {
	p := &Product{}

	p.UpsertReview(review("r1", "u1", 4))

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 4.0, p.Rating)
}

func TestUpsertReview_SecondUserAppends(t *testing.T) {
	p := &Product{}

	p.UpsertReview(review("r1", "u1", 4))
	p.UpsertReview(review("r2", "u2", 2))

	require.Len(t, p.Reviews, 2)
	assert.Equal(t, 2, p.ReviewCount)
	assert.Equal(t, 3.0, p.Rating)
}

func TestUpsertReview_SameUserReplacesInPlace(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 2))
	p.UpsertReview(review("r2", "u2", 4))

	// u1 submits again with a new rating; count must not grow.
	updated := review("r3", "u1", 5)
	updated.Comment = "changed my mind"
	p.UpsertReview(updated)

	require.Len(t, p.Reviews, 2)
	assert.Equal(t, 2, p.ReviewCount)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, "changed my mind", p.Reviews[0].Comment)
	assert.Equal(t, 5, p.Reviews[0].Rating)
}

func TestUpsertReview_ReplacePreservesIDAndCreatedAt(t *testing.T) {
	p := &Product{}
	original := review("r1", "u1", 2)
	original.CreatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p.UpsertReview(original)

	replacement := review("r-new", "u1", 5)
	replacement.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p.UpsertReview(replacement)

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "r1", p.Reviews[0].ID)
	assert.Equal(t, original.CreatedAt, p.Reviews[0].CreatedAt)
}

func TestUpsertReview_ReplaceKeepsUserNameSnapshot(t *testing.T) {
	p := &Product{}
	original := review("r1", "u1", 2)
	original.UserName = "Alice"
	p.UpsertReview(original)

	// The user has since renamed their account; the stored snapshot must not
	// follow along on a re-submitted review.
	resubmitted := review("r2", "u1", 5)
	resubmitted.UserName = "Alicia Renamed"
	resubmitted.UpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p.UpsertReview(resubmitted)

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "Alice", p.Reviews[0].UserName)
	assert.Equal(t, 5, p.Reviews[0].Rating)
	assert.Equal(t, resubmitted.UpdatedAt, p.Reviews[0].UpdatedAt)
}

func TestUpsertReview_PreservesOrderOfOtherReviews(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 1))
	p.UpsertReview(review("r2", "u2", 2))
	p.UpsertReview(review("r3", "u3", 3))

	p.UpsertReview(review("r4", "u2", 5))

	require.Len(t, p.Reviews, 3)
	assert.Equal(t, "u1", p.Reviews[0].UserID)
	assert.Equal(t, "u2", p.Reviews[1].UserID)
	assert.Equal(t, "u3", p.Reviews[2].UserID)
}

// ============================================================================
// RemoveReview Tests
// ============================================================================

func TestRemoveReview_RemovesAndRecalculates(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 2))
	p.UpsertReview(review("r2", "u2", 4))

	removed := p.RemoveReview("r1")

	assert.True(t, removed)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 4.0, p.Rating)
}

func TestRemoveReview_LastReviewResetsRating(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 5))

	removed := p.RemoveReview("r1")

	assert.True(t, removed)
	assert.Empty(t, p.Reviews)
	assert.Equal(t, 0, p.ReviewCount)
	assert.Equal(t, 0.0, p.Rating)
}

func TestRemoveReview_UnknownIDIsNoOp(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 3))

	removed := p.RemoveReview("missing")

	assert.False(t, removed)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 3.0, p.Rating)
}

// ============================================================================
// Rating Aggregate Tests
// ============================================================================

func TestRating_ArithmeticMean(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 1))
	p.UpsertReview(review("r2", "u2", 2))
	p.UpsertReview(review("r3", "u3", 5))

	assert.InDelta(t, 8.0/3.0, p.Rating, 1e-9)
	assert.Equal(t, 3, p.ReviewCount)
}

func TestReviewByUser(t *testing.T) {
	p := &Product{}
	p.UpsertReview(review("r1", "u1", 3))

	got, ok := p.ReviewByUser("u1")
	assert.True(t, ok)
	assert.Equal(t, "r1", got.ID)

	_, ok = p.ReviewByUser("u2")
	assert.False(t, ok)
}

// ============================================================================
// Stock and Rating Validation Tests
// ============================================================================

func TestInStock(t *testing.T) {
	p := &Product{Stock: 3}
	assert.True(t, p.InStock(3))
	assert.True(t, p.InStock(1))
	assert.False(t, p.InStock(4))
}

func TestIsValidRating(t *testing.T) {
	assert.False(t, IsValidRating(0))
	assert.True(t, IsValidRating(1))
	assert.True(t, IsValidRating(5))
	assert.False(t, IsValidRating(6))
}
