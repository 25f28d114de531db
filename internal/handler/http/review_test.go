package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergrove/storefront/internal/domain"
)

func postReview(t *testing.T, env *testEnv, userID, name string, rating int, comment string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(CreateReviewRequest{Rating: rating, Comment: comment})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+productID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("Authorization", "Bearer "+env.userToken(t, userID, name))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func fetchProduct(t *testing.T, env *testEnv) domain.Product {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeProduct(t, decodeResponse(t, rec))
}

func TestCreateReview_Success(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	rec := postReview(t, env, "user-1", "Ada", 4, "Healthy and well packed.")

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	p := fetchProduct(t, env)
	assert.Equal(t, 1, p.NumReviews)
	assert.Equal(t, 4.0, p.Rating)
}

func TestCreateReview_AggregatesAcrossUsers(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	require.Equal(t, http.StatusCreated, postReview(t, env, "user-1", "Ada", 4, "").Code)
	require.Equal(t, http.StatusCreated, postReview(t, env, "user-2", "Grace", 2, "").Code)

	p := fetchProduct(t, env)
	assert.Equal(t, 2, p.NumReviews)
	assert.Equal(t, 3.0, p.Rating)
}

func TestCreateReview_DuplicateIsBadRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	require.Equal(t, http.StatusCreated, postReview(t, env, "user-1", "Ada", 4, "").Code)

	rec := postReview(t, env, "user-1", "Ada", 5, "changed my mind")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DUPLICATE_REVIEW", resp.Error.Code)

	// Aggregates are untouched by the rejected submission.
	p := fetchProduct(t, env)
	assert.Equal(t, 1, p.NumReviews)
	assert.Equal(t, 4.0, p.Rating)
}

func TestCreateReview_ZeroRating(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	rec := postReview(t, env, "user-1", "Ada", 0, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "rating")
}

func TestCreateReview_OutOfRangeRating(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	rec := postReview(t, env, "user-1", "Ada", 6, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := postReview(t, env, "user-1", "Ada", 4, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReview_MissingUserHeader(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	body := []byte(`{"rating": 4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products/"+productID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.userToken(t, "user-1", "Ada"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReview_TokenUserMismatch(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	body := []byte(`{"rating": 4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products/"+productID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("Authorization", "Bearer "+env.userToken(t, "user-1", "Ada"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateReview_MissingToken(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	body := []byte(`{"rating": 4}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products/"+productID+"/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListReviews_NewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)
	seedCatalogProduct(t, env)

	for i := 1; i <= 3; i++ {
		userID := fmt.Sprintf("user-%d", i)
		require.Equal(t, http.StatusCreated, postReview(t, env, userID, "User", i+2, "").Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID+"/reviews", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Review `json:"data"`
		TotalCount int             `json:"total_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.TotalCount)
	assert.Len(t, resp.Data, 3)
}

func TestListReviews_ProductNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID+"/reviews", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
