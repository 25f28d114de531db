package service

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/quote"
)

// QuoteService serves the storefront's daily quote. The upstream provider is
// best-effort: any failure there falls back to a fixed local pool, so the
// operation itself never fails.
type QuoteService struct {
	provider quote.Provider
	fallback []domain.Quote
	logger   *slog.Logger
}

// NewQuoteService creates a new quote service.
func NewQuoteService(provider quote.Provider, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		provider: provider,
		fallback: quote.FallbackPool,
		logger:   logger,
	}
}

// RandomQuote returns a quote from the upstream provider, or a random member
// of the local fallback pool when the provider is unavailable.
func (s *QuoteService) RandomQuote(ctx context.Context) *domain.Quote {
	q, err := s.provider.Fetch(ctx)
	if err == nil {
		return q
	}

	s.logger.WarnContext(ctx, "quote provider unavailable, serving fallback",
		slog.String("error", err.Error()),
	)

	fallback := s.fallback[rand.IntN(len(s.fallback))]
	return &fallback
}
