// Package main is the entry point for the TideCast API server.
//
// It initializes the configuration, builds the provider registry and fetch
// orchestrator, mounts the HTTP chassis (middleware, routing, health checks),
// starts the background cache sweeper, and listens for requests.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tidecast/internal/api/handlers"
	"tidecast/internal/cache"
	"tidecast/internal/config"
	"tidecast/internal/core"
	"tidecast/internal/fetch"
	"tidecast/internal/providers"
	"tidecast/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("tidecast API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	// Coordinate cache shared by all providers.
	coordCache := cache.New(types.RealClock{})

	// The transport is shared; isolation comes from the per-provider breaker
	// inside each Client, so a tripped breaker on one upstream does not block
	// the others. Retries are disabled: the orchestrator's fallback chain
	// gives each provider exactly one attempt per request.
	httpClient := &http.Client{Timeout: cfg.Providers.Timeout}
	newProviderClient := func(name string) *providers.Client {
		return providers.NewClient(httpClient, name, providers.NoRetry(), cfg.Providers.UserAgent)
	}

	registry := fetch.NewRegistry(
		providers.NewMETNorway(newProviderClient("metno"), cfg.Providers.MetNoBaseURL, logger),
		providers.NewNWS(newProviderClient("nws"), cfg.Providers.NWSBaseURL, logger),
		providers.NewOpenWeather(newProviderClient("openweather"), cfg.Providers.OpenWeatherBaseURL, cfg.Providers.OpenWeatherAPIKey, logger),
		providers.NewOpenMeteoWeather(newProviderClient("openmeteo-weather"), cfg.Providers.OpenMeteoBaseURL, logger),
		providers.NewOpenMeteoMarine(newProviderClient("openmeteo-marine"), cfg.Providers.OpenMeteoMarineBaseURL, logger),
		providers.NewStormglass(newProviderClient("stormglass"), cfg.Providers.StormglassBaseURL, cfg.Providers.StormglassAPIKey, logger),
		providers.NewMarineBio(newProviderClient("marinebio"), cfg.Providers.MarineBioBaseURL, logger),
	)

	orchestrator := fetch.New(registry, coordCache, cfg.Providers.Timeout, logger)

	// Build the server and wire the domain handlers.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	envHandler := handlers.NewEnvironmentHandler(orchestrator, srv.Validator, logger)
	scoresHandler := handlers.NewScoresHandler(srv.Validator, logger, types.RealClock{})
	speciesHandler := handlers.NewSpeciesHandler()

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		envHandler.RegisterRoutes,
		scoresHandler.RegisterRoutes,
		speciesHandler.RegisterRoutes,
	)
	srv.HealthProbes = append(srv.HealthProbes, cacheProbe{cache: coordCache})

	srv.MountRoutes()

	// Background sweeper. Reads already evict lazily; the sweep bounds memory
	// held by keys that are never read again.
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Cache.SweepSchedule, func() {
		evicted := coordCache.Sweep()
		logger.Debug("cache sweep completed", "evicted", evicted, "remaining", coordCache.Len())
	})
	if err != nil {
		return fmt.Errorf("invalid cache sweep schedule %q: %w", cfg.Cache.SweepSchedule, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	return runHTTPServer(srv, cfg, logger)
}

// cacheProbe reports the coordinate cache as a health component. The cache is
// in-process and cannot fail; the probe exists so operators see entry counts
// on /healthz.
type cacheProbe struct {
	cache *cache.CoordinateCache
}

func (p cacheProbe) Name() string { return "cache" }

func (p cacheProbe) Check(ctx context.Context) error { return nil }

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
