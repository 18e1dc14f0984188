package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestExchangerExchange(t *testing.T) {
	t.Run("successful exchange", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.FormValue("code"); got != "test-code" {
				t.Errorf("code = %q, want test-code", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-123","id_token":"idt-456","token_type":"Bearer","expires_in":3600}`))
		}))
		defer srv.Close()

		exchanger := NewExchanger(oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/oauth/token",
		}, "client-id", "client-secret", "http://127.0.0.1:8080/login")

		resp, err := exchanger.Exchange(context.Background(), "test-code")
		if err != nil {
			t.Fatalf("Exchange() error = %v", err)
		}
		if resp.AccessToken != "at-123" {
			t.Errorf("access token = %q, want at-123", resp.AccessToken)
		}
		if resp.IDToken != "idt-456" {
			t.Errorf("id token = %q, want idt-456", resp.IDToken)
		}
		if resp.TokenType != "Bearer" {
			t.Errorf("token type = %q, want Bearer", resp.TokenType)
		}
		if resp.ExpiresIn <= 0 {
			t.Errorf("expires_in = %d, want positive", resp.ExpiresIn)
		}
	})

	t.Run("provider rejects code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		exchanger := NewExchanger(oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/oauth/token",
		}, "client-id", "client-secret", "http://127.0.0.1:8080/login")

		if _, err := exchanger.Exchange(context.Background(), "bad-code"); err == nil {
			t.Error("expected error for rejected code")
		}
	})
}
