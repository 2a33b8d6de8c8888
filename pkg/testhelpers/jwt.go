// Package testhelpers provides utilities for testing aria-engine components.
package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestJWTSecret signs tokens produced by GenerateTestJWT.
const TestJWTSecret = "aria-test-secret"

// GenerateTestJWT creates an HS256 token signed with TestJWTSecret.
// The token includes aud: "aria" which is required for validation.
func GenerateTestJWT(sub, email string) string {
	claims := jwt.MapClaims{
		"sub": sub,
		"aud": "aria",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		panic(err) // HMAC signing only fails on a bad key type
	}
	return signed
}

// GenerateTestJWTWithBearer returns token with "Bearer " prefix for Authorization header.
func GenerateTestJWTWithBearer(sub, email string) string {
	return "Bearer " + GenerateTestJWT(sub, email)
}
