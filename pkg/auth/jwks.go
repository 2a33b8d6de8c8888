package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ekaya-inc/aria-engine/pkg/config"
)

// TokenValidator validates a JWT string and returns its claims.
type TokenValidator interface {
	// ValidateToken returns an error if the token is malformed, expired,
	// for another audience, or signed with an unknown key.
	ValidateToken(tokenString string) (*Claims, error)
	// Close releases any resources held by the validator.
	Close()
}

// JWKSValidator verifies asymmetric tokens with keys fetched from a JWKS URL.
type JWKSValidator struct {
	jwks keyfunc.Keyfunc
}

// NewJWKSValidator fetches the key set at jwksURL.
func NewJWKSValidator(ctx context.Context, jwksURL string) (*JWKSValidator, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client for %s: %w", jwksURL, err)
	}
	return &JWKSValidator{jwks: jwks}, nil
}

// ValidateToken implements TokenValidator.
func (v *JWKSValidator) ValidateToken(tokenString string) (*Claims, error) {
	return parse(tokenString, v.jwks.Keyfunc, "RS256", "ES256", "EdDSA")
}

// Close is a no-op; keyfunc v3 refreshes are tied to the construction context.
func (v *JWKSValidator) Close() {}

// HMACValidator verifies HS256 tokens signed with a shared secret.
type HMACValidator struct {
	secret []byte
}

// NewHMACValidator returns a validator for secret.
func NewHMACValidator(secret string) *HMACValidator {
	return &HMACValidator{secret: []byte(secret)}
}

// ValidateToken implements TokenValidator.
func (v *HMACValidator) ValidateToken(tokenString string) (*Claims, error) {
	return parse(tokenString, func(*jwt.Token) (any, error) { return v.secret, nil }, "HS256")
}

// Close implements TokenValidator.
func (v *HMACValidator) Close() {}

func parse(tokenString string, keyFunc jwt.Keyfunc, methods ...string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc,
		jwt.WithValidMethods(methods),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// NewValidator builds the validator cfg asks for: JWKS when a URL is set,
// otherwise HMAC. Returns nil when auth is disabled.
func NewValidator(ctx context.Context, cfg config.AuthConfig) (TokenValidator, error) {
	switch {
	case !cfg.Enabled:
		return nil, nil
	case cfg.JWKSURL != "":
		return NewJWKSValidator(ctx, cfg.JWKSURL)
	case cfg.JWTSecret != "":
		return NewHMACValidator(cfg.JWTSecret), nil
	default:
		return nil, errors.New("auth is enabled but neither AUTH_JWKS_URL nor AUTH_JWT_SECRET is set")
	}
}

var (
	_ TokenValidator = (*JWKSValidator)(nil)
	_ TokenValidator = (*HMACValidator)(nil)
)
