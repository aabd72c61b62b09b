// Package main runs geocode cache maintenance as its own process.
//
// The worker is meant for deployments with GEOCODE_CACHE=postgres, where
// several API replicas share one cache table and pruning should happen once.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api/handler"
	"github.com/eldroute/eldroute/internal/config"
	"github.com/eldroute/eldroute/internal/database"
	"github.com/eldroute/eldroute/internal/geocode"
	"github.com/eldroute/eldroute/internal/provider/resilience"
	"github.com/eldroute/eldroute/internal/routing/openrouteservice"
	"github.com/eldroute/eldroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "eldroute-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load(serviceName, Version)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1) //nolint:gocritic // nothing left to flush
	}
	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if cfg.Database == nil {
		return errors.New("worker requires GEOCODE_CACHE=postgres")
	}
	if !cfg.ORS.Enabled() && len(cfg.Geocode.WarmAddresses) > 0 {
		return errors.New("GEOCODE_WARM_ADDRESSES requires ORS_API_KEY")
	}

	pool, err := database.Connect(ctx, *cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := geocode.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	registry := resilience.NewRegistry()
	ors := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   cfg.ORS.APIKey,
		BaseURL:  cfg.ORS.BaseURL,
		Registry: registry,
		Logger:   log,
	})
	cache := geocode.NewService(geocode.ServiceConfig{
		Geocoder:   ors,
		Repository: repo,
		Provider:   ors.Name(),
		TTL:        cfg.Geocode.TTL,
		Logger:     log,
	})

	job := worker.NewMaintenanceJob(cache, worker.MaintenanceConfig{
		Interval:      cfg.Geocode.PruneInterval,
		WarmAddresses: cfg.Geocode.WarmAddresses,
	}, log)

	ops := handler.NewOpsHandler(handler.OpsConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Registry:  registry,
		Database:  pool,
	})
	r := chi.NewRouter()
	r.Get("/v1/ops/health", ops.HealthCheck)
	r.Get("/v1/ops/ready", ops.ReadinessCheck)
	r.Get("/v1/ops/status", ops.SystemStatus)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	log.Info().
		Dur("interval", cfg.Geocode.PruneInterval).
		Int("warm_addresses", len(cfg.Geocode.WarmAddresses)).
		Msg("geocode maintenance started")
	job.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
