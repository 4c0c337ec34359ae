package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/conduit-lang/pgdao/internal/cli/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(okHandler())

	if cfg.Address != ":8080" {
		t.Errorf("Expected address :8080, got %s", cfg.Address)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("Expected ReadTimeout 15s, got %v", cfg.ReadTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("Expected IdleTimeout 60s, got %v", cfg.IdleTimeout)
	}
	if cfg.MaxHeaderBytes != 1<<20 {
		t.Errorf("Expected MaxHeaderBytes 1MB, got %d", cfg.MaxHeaderBytes)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        4000,
		ReadTimeout: 3 * time.Second,
	}, okHandler())

	if cfg.Address != "127.0.0.1:4000" {
		t.Errorf("Expected address 127.0.0.1:4000, got %s", cfg.Address)
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("Expected ReadTimeout 3s, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 15*time.Second {
		t.Errorf("Expected default WriteTimeout 15s, got %v", cfg.WriteTimeout)
	}
}

func TestNewServerValidation(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := New(&Config{Address: ":0"}, nil); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestServerStartAndShutdown(t *testing.T) {
	cfg := DefaultConfig(okHandler())
	cfg.Address = "127.0.0.1:0"

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Addr())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "OK" {
		t.Errorf("Expected body OK, got %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if err := <-done; err != http.ErrServerClosed {
		t.Errorf("Expected ErrServerClosed, got %v", err)
	}
}

func TestServerServeHTTP(t *testing.T) {
	srv, err := New(DefaultConfig(okHandler()), nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
