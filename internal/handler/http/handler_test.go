package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/evergrove/storefront/internal/auth"
	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/event"
	"github.com/evergrove/storefront/internal/quote"
	repomemory "github.com/evergrove/storefront/internal/repository/memory"
	"github.com/evergrove/storefront/internal/service"
	storagememory "github.com/evergrove/storefront/internal/storage/memory"
	"github.com/evergrove/storefront/pkg/httputil"
	pkgkafka "github.com/evergrove/storefront/pkg/kafka"
)

const testSecret = "handler-test-secret"

// testEnv wires real services over in-memory backends so handler tests cover
// the whole request path.
type testEnv struct {
	router     http.Handler
	products   *repomemory.ProductRepository
	authorizer *auth.JWTAuthorizer
}

type staticQuoteProvider struct {
	quote *domain.Quote
	err   error
}

func (p *staticQuoteProvider) Fetch(_ context.Context) (*domain.Quote, error) {
	return p.quote, p.err
}

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T, provider quote.Provider) *testEnv {
	t.Helper()
	logger := handlerTestLogger()

	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	products := repomemory.NewProductRepository()
	reviews := repomemory.NewReviewRepository()
	store := storagememory.New("http://cdn.local")
	authorizer := auth.NewJWTAuthorizer(testSecret)
	aggregator := service.NewRatingAggregator(products, reviews, logger)

	productService := service.NewProductService(products, producer, authorizer, logger)
	reviewService := service.NewReviewService(products, reviews, aggregator, producer, authorizer, logger)
	assetService := service.NewAssetService(products, store, producer, authorizer, logger)

	if provider == nil {
		provider = &staticQuoteProvider{quote: &domain.Quote{Content: "Be water.", Author: "Bruce Lee"}}
	}
	quoteService := service.NewQuoteService(provider, logger)

	r := chi.NewRouter()
	productHandler := NewProductHandler(productService, assetService, logger)
	r.Route("/api/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/top", productHandler.TopProducts)
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		r.Post("/", productHandler.CreateProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
		r.Post("/{id}/image", productHandler.UploadImage)
	})
	reviewHandler := NewReviewHandler(reviewService, logger)
	r.Route("/api/products/{productId}/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/", reviewHandler.ListReviews)
		r.Post("/", reviewHandler.CreateReview)
	})
	quoteHandler := NewQuoteHandler(quoteService, logger)
	r.Get("/api/quote", quoteHandler.GetQuote)

	return &testEnv{router: r, products: products, authorizer: authorizer}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.authorizer.GenerateToken(auth.Identity{
		UserID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: auth.RoleAdmin,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) userToken(t *testing.T, userID, name string) string {
	t.Helper()
	token, err := e.authorizer.GenerateToken(auth.Identity{
		UserID: userID, Email: userID + "@example.com", Name: name, Role: auth.RoleCustomer,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedProduct(t *testing.T, p *domain.Product) {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
		p.UpdatedAt = p.CreatedAt
	}
	require.NoError(t, e.products.Create(context.Background(), p))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeProduct(t *testing.T, resp httputil.Response) domain.Product {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var p domain.Product
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}
