package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func createTestServer(t *testing.T) *Server {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv, err := New(&Config{Address: "127.0.0.1:0", Handler: handler}, nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv
}

func TestNewGracefulShutdown_Defaults(t *testing.T) {
	gs := NewGracefulShutdown(createTestServer(t), nil)

	if gs.timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", gs.timeout)
	}
	if len(gs.signals) != 2 {
		t.Errorf("Expected 2 signals, got %d", len(gs.signals))
	}
	if gs.logger == nil {
		t.Error("Expected a logger")
	}

	gs = NewGracefulShutdown(createTestServer(t), &ShutdownConfig{})
	if gs.timeout != 30*time.Second || len(gs.signals) != 2 {
		t.Errorf("Expected defaults for an empty config, got %v %v", gs.timeout, gs.signals)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gs := NewGracefulShutdown(createTestServer(t), &ShutdownConfig{
		Timeout: 5 * time.Second,
		Logger:  zap.New(core),
	})

	var mu sync.Mutex
	var order []string
	gs.RegisterHook(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "first")
		return errors.New("close failed")
	})
	gs.RegisterHook(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "second")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Expected hooks in registration order, got %v", order)
	}

	if logs.FilterMessage("shutdown hook failed").Len() != 1 {
		t.Error("Expected the failing hook to be logged")
	}
	if logs.FilterMessage("server shutdown completed").Len() != 1 {
		t.Error("Expected shutdown completion to be logged")
	}
}

func TestRun_ListenError(t *testing.T) {
	first := createTestServer(t)
	if err := first.Listen(); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer first.Close()

	second, _ := New(&Config{Address: first.Addr(), Handler: http.NotFoundHandler()}, nil)
	gs := NewGracefulShutdown(second, nil)

	if err := gs.Run(context.Background()); err == nil {
		t.Error("Expected an error when the address is in use")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	gs := NewGracefulShutdown(createTestServer(t), nil)

	calls := 0
	gs.RegisterHook(func(ctx context.Context) error {
		calls++
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gs.Shutdown()
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("Expected hook to run once, ran %d times", calls)
	}
	if err := gs.Wait(); err != nil {
		t.Errorf("Expected nil error from Wait, got %v", err)
	}
}
