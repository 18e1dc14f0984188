package auth

// Permission strings required by the API endpoints. Tokens carry these in
// their permissions claim; the identity provider assigns them per role.
const (
	PermissionGetActors    = "get:actors"
	PermissionPostActors   = "post:actors"
	PermissionPatchActors  = "patch:actors"
	PermissionDeleteActors = "delete:actors"

	PermissionGetMovies    = "get:movies"
	PermissionPostMovies   = "post:movies"
	PermissionPatchMovies  = "patch:movies"
	PermissionDeleteMovies = "delete:movies"
)

// Claims is the verified payload of a bearer token
type Claims struct {
	// Subject is the token's sub claim
	Subject string

	// Permissions is the token's permissions claim. A token without the
	// claim has a nil set and matches no permission.
	Permissions []string
}

// HasPermission reports whether the claims carry the given permission.
// An absent permissions claim fails closed.
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
