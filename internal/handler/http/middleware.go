package http

import (
	"net/http"
	"strings"

	"github.com/evergrove/storefront/internal/auth"
)

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requesterFrom builds the opaque credential carrier from the Authorization
// header. Missing or malformed headers yield an empty token; the authorizer
// decides whether that is acceptable for the operation.
func requesterFrom(r *http.Request) *auth.Requester {
	header := r.Header.Get("Authorization")
	if header == "" {
		return &auth.Requester{}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return &auth.Requester{}
	}

	return &auth.Requester{Token: parts[1]}
}
