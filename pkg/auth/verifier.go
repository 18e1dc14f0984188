package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ErrNoAuthHeader indicates a missing or malformed Authorization header
var ErrNoAuthHeader = errors.New("authorization header missing or malformed")

// Verifier validates a raw bearer token and returns its claims
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// BearerToken extracts the bearer token from the Authorization header.
// The header must be exactly "Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrNoAuthHeader
	}

	return parts[1], nil
}

// OIDCVerifier verifies tokens against the identity provider's published
// signing keys using OIDC discovery
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the identity provider at issuerURL and builds a
// verifier that enforces signature, expiry, issuer, and the given audience.
func NewOIDCVerifier(ctx context.Context, issuerURL, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover identity provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: audience,
	})

	return &OIDCVerifier{verifier: verifier}, nil
}

// Verify validates the raw token and extracts its claims
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var payload struct {
		Permissions []string `json:"permissions"`
	}
	if err := token.Claims(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return &Claims{
		Subject:     token.Subject,
		Permissions: payload.Permissions,
	}, nil
}
