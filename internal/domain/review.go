package domain

import (
	"time"
)

// Review represents a single author's rating and comment for one product.
// A user may review a given product at most once; the (ProductID, UserID)
// pair is unique and enforced at append time.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewSummary contains aggregate review statistics for a product,
// computed from the full set of that product's reviews.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}
