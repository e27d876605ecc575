package product

import (
	"time"

	"github.com/go-faster/errors"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ErrInvalidRating is returned when a rating falls outside [MinRating, MaxRating].
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review is an immutable customer review snapshot.
type Review struct {
	ID           string
	CustomerID   string
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
	// Verified is set when the author had a delivered order containing the
	// product at review time.
	Verified bool
}

// NewReview builds a review with the rating clamped to the allowed range.
func NewReview(id, customerID, customerName string, rating int, comment string, verified bool, at time.Time) Review {
	return Review{
		ID:           id,
		CustomerID:   customerID,
		CustomerName: customerName,
		Rating:       min(max(rating, MinRating), MaxRating),
		Comment:      comment,
		CreatedAt:    at,
		Verified:     verified,
	}
}

// ValidRating reports whether rating is inside [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
