package auth

import (
	"context"
)

// Role constants for storefront identities.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Identity is an authenticated user as established by the authorizer.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// Requester carries the opaque credentials presented by a caller. The
// transport layer fills it in (bearer token from the Authorization header);
// services never inspect it directly.
type Requester struct {
	Token string
}

// Authorizer is the capability every mutating service operation checks
// before any domain logic executes.
type Authorizer interface {
	// RequireAdmin verifies the requester is authenticated and holds the
	// admin role.
	RequireAdmin(ctx context.Context, req *Requester) (*Identity, error)

	// RequireSelf verifies the requester is authenticated and is the user
	// identified by userID.
	RequireSelf(ctx context.Context, req *Requester, userID string) (*Identity, error)
}
