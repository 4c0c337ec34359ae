package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/conduit-lang/pgdao/internal/web/auth"
)

func TestAuthMiddleware(t *testing.T) {
	service := auth.NewTokenService("secret", time.Hour)

	all, err := service.GenerateToken("alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	articlesOnly, err := service.GenerateToken("bob", []string{"articles"})
	if err != nil {
		t.Fatal(err)
	}

	var subject string
	handler := Auth(service, "/api")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		subject = claims.Subject
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		path    string
		header  string
		status  int
		subject string
	}{
		{"missing header", "/api/articles", "", http.StatusUnauthorized, ""},
		{"not bearer", "/api/articles", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "/api/articles", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "/api/users/1", "Bearer " + all, http.StatusOK, "alice"},
		{"granted resource", "/api/articles/1", "Bearer " + articlesOnly, http.StatusOK, "bob"},
		{"other resource", "/api/users", "Bearer " + articlesOnly, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if subject != tt.subject {
				t.Errorf("Expected subject %q, got %q", tt.subject, subject)
			}
			if tt.status != http.StatusOK && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected JSON error body")
			}
		})
	}
}

func TestResourceOf(t *testing.T) {
	tests := []struct {
		path, prefix, expected string
	}{
		{"/api/articles", "/api", "articles"},
		{"/api/articles/1", "/api", "articles"},
		{"/articles/count", "", "articles"},
		{"/other/articles", "/api", ""},
	}

	for _, tt := range tests {
		if got := resourceOf(tt.path, tt.prefix); got != tt.expected {
			t.Errorf("resourceOf(%q, %q) = %q; want %q", tt.path, tt.prefix, got, tt.expected)
		}
	}
}
