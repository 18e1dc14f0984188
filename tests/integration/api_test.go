package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/castboard/castboard/pkg/agency"
	"github.com/castboard/castboard/pkg/api"
	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/observability"
)

// grantAll resolves every bearer token to a principal holding all
// actor and movie permissions
type grantAll struct{}

func (grantAll) Verify(ctx context.Context, raw string) (*auth.Claims, error) {
	return &auth.Claims{
		Subject: "auth0|executive-producer",
		Permissions: []string{
			auth.PermissionGetActors, auth.PermissionPostActors,
			auth.PermissionPatchActors, auth.PermissionDeleteActors,
			auth.PermissionGetMovies, auth.PermissionPostMovies,
			auth.PermissionPatchMovies, auth.PermissionDeleteMovies,
		},
	}, nil
}

func newServer() *api.Server {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return api.NewServer(agency.NewMemStore(), grantAll{}, logger, api.Options{})
}

func request(t *testing.T, server *api.Server, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	return w, decoded
}

// TestActorMovieLifecycle walks a full create, link, update, delete cycle
// through the HTTP surface.
func TestActorMovieLifecycle(t *testing.T) {
	server := newServer()

	// Create two actors
	w, body := request(t, server, "POST", "/actors", map[string]interface{}{
		"name": "Meryl Streep", "age": 74, "gender": "Female",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	streep := int64(body["created"].(float64))

	w, body = request(t, server, "POST", "/actors", map[string]interface{}{
		"name": "Viola Davis", "age": 58, "gender": "Female",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	davis := int64(body["created"].(float64))

	// Create a movie linking both
	w, body = request(t, server, "POST", "/movies", map[string]interface{}{
		"title":        "The Color Purple",
		"release_date": "1985-12-20",
		"actors":       []int64{streep, davis},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	movieID := int64(body["created"].(float64))

	movie := body["movie"].(map[string]interface{})
	if cast := movie["actors"].([]interface{}); len(cast) != 2 {
		t.Errorf("Expected 2 cast members, got %d", len(cast))
	}

	// The actors now list the movie
	w, body = request(t, server, "GET", fmt.Sprintf("/actors/%d", streep), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	actor := body["actor"].(map[string]interface{})
	if movies := actor["movies"].([]interface{}); len(movies) != 1 {
		t.Errorf("Expected 1 linked movie, got %d", len(movies))
	}

	// Replace the cast with a single actor
	w, body = request(t, server, "PATCH", fmt.Sprintf("/movies/%d", movieID), map[string]interface{}{
		"actors": []int64{davis},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	movie = body["movie"].(map[string]interface{})
	if cast := movie["actors"].([]interface{}); len(cast) != 1 {
		t.Errorf("Expected 1 cast member after replacement, got %d", len(cast))
	}

	// The dropped actor no longer lists the movie
	w, body = request(t, server, "GET", fmt.Sprintf("/actors/%d", streep), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	actor = body["actor"].(map[string]interface{})
	if movies := actor["movies"].([]interface{}); len(movies) != 0 {
		t.Errorf("Expected no linked movies, got %d", len(movies))
	}

	// Delete the movie, then deleting again is a 404
	w, body = request(t, server, "DELETE", fmt.Sprintf("/movies/%d", movieID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if deleted := int64(body["deleted"].(float64)); deleted != movieID {
		t.Errorf("Expected deleted id %d, got %d", movieID, deleted)
	}

	w, _ = request(t, server, "DELETE", fmt.Sprintf("/movies/%d", movieID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on repeated delete, got %d", w.Code)
	}
}

// TestSeededCatalog verifies the sample data round-trips through the API
func TestSeededCatalog(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	store := agency.NewMemStore()
	server := api.NewServer(store, grantAll{}, logger, api.Options{})

	actors, movies, err := agency.Seed(context.Background(), store)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if actors != 4 || movies != 3 {
		t.Fatalf("Expected 4 actors and 3 movies, got %d and %d", actors, movies)
	}

	w, body := request(t, server, "GET", "/actors", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if listed := body["actors"].([]interface{}); len(listed) != 4 {
		t.Errorf("Expected 4 actors, got %d", len(listed))
	}

	w, body = request(t, server, "GET", "/movies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	listed := body["movies"].([]interface{})
	if len(listed) != 3 {
		t.Fatalf("Expected 3 movies, got %d", len(listed))
	}

	first := listed[0].(map[string]interface{})
	if first["title"] != "The Color Purple" {
		t.Errorf("Expected The Color Purple first, got %v", first["title"])
	}
	if first["release_date"] != "1985-12-20" {
		t.Errorf("Expected release date 1985-12-20, got %v", first["release_date"])
	}
}
