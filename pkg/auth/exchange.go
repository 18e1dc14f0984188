package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ProviderEndpoint builds the OAuth2 endpoint for an Auth0-style issuer,
// which serves /authorize and /oauth/token under the issuer URL.
func ProviderEndpoint(issuerURL string) oauth2.Endpoint {
	base := strings.TrimSuffix(issuerURL, "/")
	return oauth2.Endpoint{
		AuthURL:  base + "/authorize",
		TokenURL: base + "/oauth/token",
	}
}

// TokenResponse carries the tokens returned by a code exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// Exchanger trades an authorization code for tokens at the identity
// provider's token endpoint
type Exchanger struct {
	config *oauth2.Config
}

// NewExchanger creates an exchanger for the given OAuth2 endpoint
func NewExchanger(endpoint oauth2.Endpoint, clientID, clientSecret, redirectURL string) *Exchanger {
	return &Exchanger{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
		},
	}
}

// Exchange swaps an authorization code for tokens
func (e *Exchanger) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	token, err := e.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	resp := &TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		resp.IDToken = idToken
	}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return resp, nil
}
