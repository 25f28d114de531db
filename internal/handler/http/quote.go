package http

import (
	"log/slog"
	"net/http"

	"github.com/evergrove/storefront/internal/service"
	"github.com/evergrove/storefront/pkg/httputil"
)

// QuoteHandler handles HTTP requests for the daily quote endpoint.
type QuoteHandler struct {
	service *service.QuoteService
	logger  *slog.Logger
}

// NewQuoteHandler creates a new quote HTTP handler.
func NewQuoteHandler(svc *service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: svc,
		logger:  logger,
	}
}

// GetQuote handles GET /api/quote
// @Summary Get an inspirational quote
// @Description Returns a quote from the upstream provider, or a local fallback when the provider is unavailable. Always succeeds.
// @Tags quote
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/quote [get]
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote := h.service.RandomQuote(r.Context())
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}
