package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/pkg/httpclient"
)

// DefaultTimeout bounds the upstream call. The quote endpoint is decorative,
// so it is kept short.
const DefaultTimeout = 3 * time.Second

// zenQuote is the wire format of a single zenquotes.io entry.
type zenQuote struct {
	Quote  string `json:"q"`
	Author string `json:"a"`
}

// ZenQuotesProvider fetches a random quote from zenquotes.io through the
// shared circuit-breaker HTTP client.
type ZenQuotesProvider struct {
	client  *httpclient.CircuitBreakerClient
	url     string
	timeout time.Duration
}

var _ Provider = (*ZenQuotesProvider)(nil)

// NewZenQuotesProvider creates a provider pointed at the given base URL
// (e.g. "https://zenquotes.io/api/random").
func NewZenQuotesProvider(client *httpclient.CircuitBreakerClient, url string, timeout time.Duration) *ZenQuotesProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ZenQuotesProvider{
		client:  client,
		url:     url,
		timeout: timeout,
	}
}

// Fetch requests one random quote. Any transport, status, or payload problem
// is returned as an error for the caller to absorb.
func (p *ZenQuotesProvider) Fetch(ctx context.Context) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch quote: upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}

	// zenquotes returns an array with a single entry.
	var entries []zenQuote
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if len(entries) == 0 || entries[0].Quote == "" {
		return nil, fmt.Errorf("decode quote response: empty payload")
	}

	return &domain.Quote{
		Content: entries[0].Quote,
		Author:  entries[0].Author,
		Tags:    []string{"zen", "wisdom"},
	}, nil
}
