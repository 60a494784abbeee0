package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims are the JWT claims the identity provider extracts from a
// verified bearer token.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Identity is a verified (user id, display name) pair.
type Identity struct {
	UserID      string
	DisplayName string
}
