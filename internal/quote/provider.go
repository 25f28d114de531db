package quote

import (
	"context"

	"github.com/evergrove/storefront/internal/domain"
)

// Provider fetches a quote from an upstream source. Implementations are
// best-effort: callers must be prepared for any error and fall back locally.
type Provider interface {
	Fetch(ctx context.Context) (*domain.Quote, error)
}
