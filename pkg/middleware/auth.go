package middleware

import (
	"net/http"

	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/contextkeys"
	"github.com/castboard/castboard/pkg/httputil"
)

// Guard enforces bearer-token authentication and permission checks
type Guard struct {
	verifier auth.Verifier
}

// NewGuard creates a guard backed by the given token verifier
func NewGuard(verifier auth.Verifier) *Guard {
	return &Guard{verifier: verifier}
}

// RequirePermission wraps a handler, requiring a verified token that carries
// the given permission. Authentication failures return 401; a verified token
// without the permission returns 403. The verified claims are added to the
// request context for the wrapped handler.
func (g *Guard) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err != nil {
				httputil.WriteUnauthorized(w, "authorization header missing or malformed")
				return
			}

			claims, err := g.verifier.Verify(r.Context(), token)
			if err != nil {
				httputil.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			if !claims.HasPermission(permission) {
				httputil.WriteForbidden(w, "permission not found")
				return
			}

			ctx := contextkeys.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts verified claims from the request context. Returns nil
// when the request did not pass through the guard.
func GetClaims(r *http.Request) *auth.Claims {
	value := r.Context().Value(contextkeys.ClaimsKey)
	if value == nil {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
