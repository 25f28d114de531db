package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// Claims represents the JWT claims for a storefront access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthorizer validates HS256-signed bearer tokens.
type JWTAuthorizer struct {
	secret []byte
}

var _ Authorizer = (*JWTAuthorizer)(nil)

// NewJWTAuthorizer creates an authorizer that validates tokens signed with
// the given shared secret.
func NewJWTAuthorizer(secret string) *JWTAuthorizer {
	return &JWTAuthorizer{secret: []byte(secret)}
}

// RequireAdmin verifies the token and checks for the admin role.
func (a *JWTAuthorizer) RequireAdmin(_ context.Context, req *Requester) (*Identity, error) {
	identity, err := a.authenticate(req)
	if err != nil {
		return nil, err
	}

	if identity.Role != RoleAdmin {
		return nil, apperrors.Forbidden("admin role required")
	}

	return identity, nil
}

// RequireSelf verifies the token and checks that it belongs to userID.
func (a *JWTAuthorizer) RequireSelf(_ context.Context, req *Requester, userID string) (*Identity, error) {
	identity, err := a.authenticate(req)
	if err != nil {
		return nil, err
	}

	if identity.UserID != userID {
		return nil, apperrors.Forbidden("authenticated user does not match author")
	}

	return identity, nil
}

// GenerateToken creates a signed access token for the given identity.
// Used by local tooling and tests; token issuance in production belongs to
// the identity service.
func (a *JWTAuthorizer) GenerateToken(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "storefront",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// authenticate parses and validates the bearer token carried by the requester.
func (a *JWTAuthorizer) authenticate(req *Requester) (*Identity, error) {
	if req == nil || req.Token == "" {
		return nil, apperrors.Unauthorized("missing credentials")
	}

	token, err := jwt.ParseWithClaims(req.Token, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token claims")
	}

	if claims.UserID == "" {
		return nil, apperrors.Unauthorized("token missing user identity")
	}

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}
