package auth

import "testing"

func TestClaimsHasPermission(t *testing.T) {
	t.Run("permission present", func(t *testing.T) {
		c := &Claims{Permissions: []string{PermissionGetActors, PermissionGetMovies}}
		if !c.HasPermission(PermissionGetActors) {
			t.Error("expected get:actors to be granted")
		}
	})

	t.Run("permission absent", func(t *testing.T) {
		c := &Claims{Permissions: []string{PermissionGetActors}}
		if c.HasPermission(PermissionDeleteActors) {
			t.Error("expected delete:actors to be denied")
		}
	})

	t.Run("nil permissions claim fails closed", func(t *testing.T) {
		c := &Claims{Subject: "auth0|user"}
		if c.HasPermission(PermissionGetActors) {
			t.Error("expected denial when permissions claim is absent")
		}
	})

	t.Run("empty permissions claim fails closed", func(t *testing.T) {
		c := &Claims{Permissions: []string{}}
		if c.HasPermission(PermissionGetActors) {
			t.Error("expected denial when permissions claim is empty")
		}
	})

	t.Run("nil claims fail closed", func(t *testing.T) {
		var c *Claims
		if c.HasPermission(PermissionGetActors) {
			t.Error("expected denial for nil claims")
		}
	})
}
