package domain

import (
	"time"
)

// TopRatedMinimum is the minimum average rating for a product to appear
// in the top-rated listing.
const TopRatedMinimum = 4.0

// Product represents a product in the catalog. Rating and NumReviews are
// derived from the product's reviews and must only be written through the
// rating aggregator.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image,omitempty"`
	Rating      float64   `json:"rating"`
	NumReviews  int       `json:"num_reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
