package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/appsettings/internal/api"
	"github.com/eugenenazirov/appsettings/internal/application"
	"github.com/eugenenazirov/appsettings/internal/config"
	"github.com/eugenenazirov/appsettings/internal/logging"
	"github.com/eugenenazirov/appsettings/internal/settings"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("appsettings-server", "Serves application settings, base URL and health over HTTP")
	settingsFile := kingpinApp.Flag("settings", "Path to a settings override file (takes precedence over "+settings.OverrideEnv+")").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	// The mode is only known once settings are loaded, so loading logs through
	// a production bootstrap logger.
	bootstrap, err := logging.New(true)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	store, err := loadSettings(*settingsFile, bootstrap)
	_ = bootstrap.Sync()
	if err != nil {
		panic(fmt.Sprintf("failed to load settings: %v", err))
	}

	overrides := &config.CLIOverrides{}
	if *port != "" {
		overrides.Port = port
	}
	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}
	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(store, overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(store.IsProduction())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// loadSettings builds the store with the request base URL collaborator wired
// in. An empty path falls back to the override named in APP_CONFIG.
func loadSettings(path string, logger *zap.Logger) (*settings.Store, error) {
	opts := []settings.Option{
		settings.WithRequestBaseURL(api.RequestBaseURL),
		settings.WithLogger(logger),
	}
	if path != "" {
		opts = append(opts, settings.WithOverrideFile(path))
	}
	return settings.Load(opts...)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
