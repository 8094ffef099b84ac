package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/appsettings/internal/api"
	"github.com/eugenenazirov/appsettings/internal/config"
	"github.com/eugenenazirov/appsettings/internal/settings"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	settings *settings.Store
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application from the resolved configuration and settings store.
func New(cfg config.Config, store *settings.Store, logger *zap.Logger) (*App, error) {
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, router)
	if server.Addr == ":" {
		return nil, fmt.Errorf("invalid listen address %q", cfg.Port)
	}

	return &App{
		settings: store,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   server,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.Bool("production", a.settings.IsProduction()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
