package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestParseJSON(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/actors", strings.NewReader(`{"name":"Test Actor"}`))
		var dest struct {
			Name string `json:"name"`
		}
		if err := ParseJSON(req, &dest); err != nil {
			t.Fatalf("ParseJSON() error = %v", err)
		}
		if dest.Name != "Test Actor" {
			t.Errorf("name = %v, want Test Actor", dest.Name)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/actors", strings.NewReader(`{not json`))
		var dest map[string]interface{}
		if err := ParseJSON(req, &dest); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/actors", strings.NewReader(""))
		var dest map[string]interface{}
		if err := ParseJSON(req, &dest); err == nil {
			t.Error("expected error for empty body")
		}
	})
}

func TestParsePathInt64(t *testing.T) {
	t.Run("valid id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/actors/42", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "42"})

		id, err := ParsePathInt64(req, "id")
		if err != nil {
			t.Fatalf("ParsePathInt64() error = %v", err)
		}
		if id != 42 {
			t.Errorf("id = %d, want 42", id)
		}
	})

	t.Run("missing var", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/actors/42", nil)
		if _, err := ParsePathInt64(req, "id"); err == nil {
			t.Error("expected error for missing path parameter")
		}
	})

	t.Run("non-numeric var", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/actors/abc", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "abc"})
		if _, err := ParsePathInt64(req, "id"); err == nil {
			t.Error("expected error for non-numeric id")
		}
	})
}

func TestParsePathInt64OrError(t *testing.T) {
	req := httptest.NewRequest("GET", "/actors/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()

	_, ok := ParsePathInt64OrError(rec, req, "id")
	if ok {
		t.Error("expected ok=false for invalid id")
	}
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
