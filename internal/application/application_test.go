package application

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/appsettings/internal/config"
	"github.com/eugenenazirov/appsettings/internal/settings"
)

func newTestStore(t *testing.T) *settings.Store {
	t.Helper()
	store, err := settings.Load(
		settings.WithDefaults(fstest.MapFS{"app.properties": &fstest.MapFile{Data: []byte("application.mode = dev\n")}}, "app.properties"),
		settings.WithOverrideFile(""),
	)
	if err != nil {
		t.Fatalf("settings.Load returned error: %v", err)
	}
	return store
}

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, newTestStore(t), logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health to respond 200, got %d", rec.Code)
	}
}

func TestNewRequiresSettings(t *testing.T) {
	if _, err := New(baseTestConfig(":0"), nil, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error without settings store")
	}

	var store *settings.Store
	if _, err := New(baseTestConfig(":0"), store, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for nil settings store")
	}
}

func TestNewRejectsEmptyPort(t *testing.T) {
	if _, err := New(baseTestConfig(""), newTestStore(t), zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for empty port")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
