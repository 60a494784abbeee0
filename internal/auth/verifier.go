// Package auth is the identity-provider boundary: it turns a bearer
// token into a verified (user id, display name) pair. Sessions do not
// require it; when present, the verified name seeds the session's
// display name.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"planner/internal/domain"
	"planner/internal/domain/models"
)

// IdentityProvider verifies bearer tokens.
type IdentityProvider interface {
	Verify(tokenString string) (*models.Identity, error)
}

// JWKSVerifier implements IdentityProvider against a JWKS endpoint.
// Keys are cached and refreshed by keyfunc based on HTTP cache headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from the
// given JWKS endpoint.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("identity provider initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// Verify validates the token and extracts the identity.
func (v *JWKSVerifier) Verify(tokenString string) (*models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, v.jwks.Keyfunc)
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	// Prevent algorithm confusion attacks - allow only RS256 or ES256
	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	return &models.Identity{UserID: claims.Subject, DisplayName: name}, nil
}
