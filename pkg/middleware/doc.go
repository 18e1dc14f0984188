// Package middleware provides the permission guard protecting the API routes.
//
// Guard wraps a handler with bearer-token authentication and permission
// enforcement:
//
//	guard := middleware.NewGuard(verifier)
//	router.Handle("/actors", guard.RequirePermission(auth.PermissionGetActors)(handler)).Methods("GET")
//
// A missing, malformed, or unverifiable token short-circuits with 401; a
// verified token lacking the required permission short-circuits with 403.
// On success the verified claims are stored in the request context.
package middleware
