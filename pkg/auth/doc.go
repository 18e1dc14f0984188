// Package auth provides bearer-token verification against an external
// OpenID Connect identity provider.
//
// # Overview
//
// Incoming requests carry an RS256-signed JWT issued by the identity
// provider. The verifier discovers the provider's published signing keys
// (JWKS) via OIDC discovery, matches the token's key ID, and checks the
// signature, expiry, issuer, and audience. Verified tokens yield a Claims
// value carrying the caller's permission set.
//
// # Usage
//
//	verifier, err := auth.NewOIDCVerifier(ctx, cfg.IssuerURL, cfg.Audience)
//	claims, err := verifier.Verify(ctx, rawToken)
//	if claims.HasPermission(auth.PermissionPostActors) { ... }
//
// The optional Exchanger trades an authorization code for tokens at the
// provider's token endpoint. It backs the /login convenience route and is
// not part of the request-authorization path.
package auth
