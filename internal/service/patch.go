package service

import (
	"math"
	"strings"

	"github.com/evergrove/storefront/internal/domain"
	apperrors "github.com/evergrove/storefront/pkg/errors"
	"github.com/evergrove/storefront/pkg/slug"
)

// ProductPatch is a partial set of field assignments for a product. A nil
// field means "leave untouched"; a non-nil field is applied after the whole
// patch validates. Modeling each field as a pointer keeps "absent" and
// "present but invalid" distinguishable.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Stock       *int
	Category    *string
	Brand       *string
	Description *string
}

// ValidatePatch validates and normalizes a proposed partial update. It is a
// pure function: no I/O, fully deterministic. All fields are validated before
// any is considered applied, so a failure on a later field never leaves an
// earlier one half-committed.
//
// Category, brand, and description are accepted verbatim. That mirrors the
// admin surface this replaces; bounding them is an open item.
func ValidatePatch(patch ProductPatch) (ProductPatch, error) {
	normalized := patch

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return ProductPatch{}, apperrors.InvalidInput("product name cannot be empty")
		}
		normalized.Name = &name
	}

	if patch.Price != nil {
		price := *patch.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return ProductPatch{}, apperrors.InvalidInput("invalid price value")
		}
		if price < 0 {
			return ProductPatch{}, apperrors.InvalidInput("price cannot be negative")
		}
	}

	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return ProductPatch{}, apperrors.InvalidInput("stock cannot be negative")
		}
	}

	return normalized, nil
}

// applyPatch writes the normalized patch onto the product. The caller must
// have validated the patch first. The slug tracks the name.
func applyPatch(p *domain.Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
		p.Slug = slug.Generate(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
}
