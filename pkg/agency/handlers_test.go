package agency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/middleware"
)

// tokenVerifier resolves any bearer token to a fixed set of permissions
type tokenVerifier struct {
	permissions []string
}

func (v *tokenVerifier) Verify(ctx context.Context, raw string) (*auth.Claims, error) {
	return &auth.Claims{Subject: "auth0|tester", Permissions: v.permissions}, nil
}

// testAPI wires the handlers to an in-memory store behind a router whose
// bearer tokens carry the given permissions
func testAPI(t *testing.T, permissions ...string) (*mux.Router, *MemStore) {
	t.Helper()

	store := NewMemStore()
	guard := middleware.NewGuard(&tokenVerifier{permissions: permissions})
	router := mux.NewRouter()
	NewHandlers(store, guard).RegisterRoutes(router)
	return router, store
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func seedTestActor(t *testing.T, store *MemStore, name string, age int, gender string) int64 {
	t.Helper()

	actor, err := store.CreateActor(context.Background(), name, age, gender)
	require.NoError(t, err)
	return actor.ID
}

var allPermissions = []string{
	auth.PermissionGetActors, auth.PermissionPostActors, auth.PermissionPatchActors, auth.PermissionDeleteActors,
	auth.PermissionGetMovies, auth.PermissionPostMovies, auth.PermissionPatchMovies, auth.PermissionDeleteMovies,
}

func TestHandlers_PermissionMatrix(t *testing.T) {
	cases := []struct {
		method     string
		path       string
		permission string
	}{
		{"GET", "/actors", auth.PermissionGetActors},
		{"POST", "/actors", auth.PermissionPostActors},
		{"GET", "/actors/1", auth.PermissionGetActors},
		{"PATCH", "/actors/1", auth.PermissionPatchActors},
		{"DELETE", "/actors/1", auth.PermissionDeleteActors},
		{"GET", "/movies", auth.PermissionGetMovies},
		{"POST", "/movies", auth.PermissionPostMovies},
		{"GET", "/movies/1", auth.PermissionGetMovies},
		{"PATCH", "/movies/1", auth.PermissionPatchMovies},
		{"DELETE", "/movies/1", auth.PermissionDeleteMovies},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s %s without %s", tc.method, tc.path, tc.permission), func(t *testing.T) {
			// Grant every permission except the one the route needs
			granted := make([]string, 0, len(allPermissions)-1)
			for _, p := range allPermissions {
				if p != tc.permission {
					granted = append(granted, p)
				}
			}

			router, _ := testAPI(t, granted...)
			rec := doJSON(t, router, tc.method, tc.path, nil)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, float64(403), body["error"])
		})
	}
}

func TestHandlers_MissingToken(t *testing.T) {
	router, _ := testAPI(t, allPermissions...)

	req := httptest.NewRequest("GET", "/actors", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(401), body["error"])
}

func TestHandlers_ActorCRUD(t *testing.T) {
	router, store := testAPI(t, allPermissions...)

	t.Run("list starts empty", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/actors", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Empty(t, body["actors"])
	})

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/actors", map[string]interface{}{
			"name": "Viola Davis", "age": 58, "gender": "Female",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["created"])

		actor := body["actor"].(map[string]interface{})
		assert.Equal(t, "Viola Davis", actor["name"])
		assert.Equal(t, float64(58), actor["age"])
		// Link list is present even when empty
		assert.Equal(t, []interface{}{}, actor["movies"])
	})

	t.Run("create rejects missing fields", func(t *testing.T) {
		for name, payload := range map[string]map[string]interface{}{
			"no name":   {"age": 40, "gender": "Male"},
			"no age":    {"name": "Someone", "gender": "Male"},
			"zero age":  {"name": "Someone", "age": 0, "gender": "Male"},
			"no gender": {"name": "Someone", "age": 40},
		} {
			t.Run(name, func(t *testing.T) {
				rec := doJSON(t, router, "POST", "/actors", payload)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				body := decodeEnvelope(t, rec)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, float64(400), body["error"])
			})
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/actors/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		actor := body["actor"].(map[string]interface{})
		assert.Equal(t, "Viola Davis", actor["name"])
	})

	t.Run("get unknown id", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/actors/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "resource not found", body["message"])
	})

	t.Run("patch single field", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/actors/1", map[string]interface{}{"age": 59})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, float64(1), body["updated"])
		actor := body["actor"].(map[string]interface{})
		assert.Equal(t, float64(59), actor["age"])
		assert.Equal(t, "Viola Davis", actor["name"])
	})

	t.Run("patch empty body", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/actors/1", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch unknown id is 404 before body validation", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/actors/999", map[string]interface{}{})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, router, "DELETE", "/actors/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["deleted"])

		_, err := store.GetActor(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("repeated delete", func(t *testing.T) {
		rec := doJSON(t, router, "DELETE", "/actors/1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlers_MovieCRUD(t *testing.T) {
	router, store := testAPI(t, allPermissions...)

	streep := seedTestActor(t, store, "Meryl Streep", 74, "Female")
	davis := seedTestActor(t, store, "Viola Davis", 58, "Female")

	t.Run("create with cast", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/movies", map[string]interface{}{
			"title":        "The Color Purple",
			"release_date": "1985-12-20",
			"actors":       []int64{streep, davis},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, float64(1), body["created"])
		movie := body["movie"].(map[string]interface{})
		assert.Equal(t, "The Color Purple", movie["title"])
		assert.Equal(t, "1985-12-20", movie["release_date"])
		assert.Equal(t, []interface{}{float64(streep), float64(davis)}, movie["actors"])
	})

	t.Run("unknown actor ids are dropped, not rejected", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/movies", map[string]interface{}{
			"title":        "Forrest Gump",
			"release_date": "1994-07-06",
			"actors":       []int64{davis, 999},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeEnvelope(t, rec)
		movie := body["movie"].(map[string]interface{})
		assert.Equal(t, []interface{}{float64(davis)}, movie["actors"])
	})

	t.Run("create rejects malformed date", func(t *testing.T) {
		for _, date := range []string{"12/20/1985", "1985-13-01", "not-a-date", "1985-12-20T00:00:00Z"} {
			rec := doJSON(t, router, "POST", "/movies", map[string]interface{}{
				"title":        "Bad Date",
				"release_date": date,
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code, "date %q should be rejected", date)
		}
	})

	t.Run("create rejects missing title", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/movies", map[string]interface{}{
			"release_date": "2020-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("actor reflects movie links", func(t *testing.T) {
		rec := doJSON(t, router, "GET", fmt.Sprintf("/actors/%d", davis), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		actor := body["actor"].(map[string]interface{})
		assert.Equal(t, []interface{}{float64(1), float64(2)}, actor["movies"])
	})

	t.Run("patch replaces the whole cast", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/movies/1", map[string]interface{}{
			"actors": []int64{streep},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		movie := body["movie"].(map[string]interface{})
		assert.Equal(t, []interface{}{float64(streep)}, movie["actors"])

		// The dropped actor no longer lists the movie
		got, err := store.GetActor(context.Background(), davis)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, got.MovieIDs)
	})

	t.Run("patch title only keeps cast", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/movies/1", map[string]interface{}{
			"title": "The Color Purple (1985)",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		movie := body["movie"].(map[string]interface{})
		assert.Equal(t, "The Color Purple (1985)", movie["title"])
		assert.Equal(t, []interface{}{float64(streep)}, movie["actors"])
	})

	t.Run("patch malformed date", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/movies/1", map[string]interface{}{
			"release_date": "20-12-1985",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch unknown id is 404 before body validation", func(t *testing.T) {
		rec := doJSON(t, router, "PATCH", "/movies/999", map[string]interface{}{})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete cascades links", func(t *testing.T) {
		rec := doJSON(t, router, "DELETE", "/movies/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := store.GetActor(context.Background(), streep)
		require.NoError(t, err)
		assert.Empty(t, got.MovieIDs)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/movies", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		movies := body["movies"].([]interface{})
		require.Len(t, movies, 1)
		assert.Equal(t, "Forrest Gump", movies[0].(map[string]interface{})["title"])
	})
}

func TestHandlers_SeededRoundTrip(t *testing.T) {
	router, store := testAPI(t, allPermissions...)

	actors, movies, err := Seed(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 4, actors)
	assert.Equal(t, 3, movies)

	rec := doJSON(t, router, "GET", "/movies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	listed := body["movies"].([]interface{})
	require.Len(t, listed, 3)

	first := listed[0].(map[string]interface{})
	assert.Equal(t, "The Color Purple", first["title"])
	assert.Equal(t, "1985-12-20", first["release_date"])
	assert.Len(t, first["actors"], 2)
}

func TestHandlers_RepeatedReadsAreIdentical(t *testing.T) {
	router, store := testAPI(t, allPermissions...)

	_, _, err := Seed(context.Background(), store)
	require.NoError(t, err)

	for _, path := range []string{"/actors", "/movies", "/actors/2", "/movies/1"} {
		t.Run(path, func(t *testing.T) {
			first := doJSON(t, router, "GET", path, nil)
			require.Equal(t, http.StatusOK, first.Code)

			second := doJSON(t, router, "GET", path, nil)
			require.Equal(t, http.StatusOK, second.Code)
			assert.Equal(t, first.Body.String(), second.Body.String())
		})
	}
}

func TestHandlers_DateRoundTrip(t *testing.T) {
	// ReleaseDate survives a create/get cycle unchanged
	router, _ := testAPI(t, allPermissions...)

	rec := doJSON(t, router, "POST", "/movies", map[string]interface{}{
		"title":        "The Devil Wears Prada",
		"release_date": "2006-06-30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "GET", "/movies/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	movie := body["movie"].(map[string]interface{})
	assert.Equal(t, "2006-06-30", movie["release_date"])
}
