// Package main provides the entrypoint for the ELDRoute API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api"
	"github.com/eldroute/eldroute/internal/api/handler"
	"github.com/eldroute/eldroute/internal/api/middleware"
	"github.com/eldroute/eldroute/internal/config"
	"github.com/eldroute/eldroute/internal/database"
	"github.com/eldroute/eldroute/internal/geocode"
	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/provider/resilience"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/internal/routing/openrouteservice"
	"github.com/eldroute/eldroute/internal/telemetry"
	"github.com/eldroute/eldroute/internal/trip"
	"github.com/eldroute/eldroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "eldroute-api"

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

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting ELDRoute API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1) //nolint:gocritic // telemetry flush is best-effort on failure
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	metrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}

	engine, err := hos.NewEngine(cfg.Rules)
	if err != nil {
		return err
	}
	log.Info().
		Float64("daily_driving_limit", cfg.Rules.DailyDrivingLimit).
		Float64("cycle_limit", cfg.Rules.CycleLimit).
		Msg("schedule engine initialized")

	var pool *pgxpool.Pool
	if cfg.Database != nil {
		pool, err = database.Connect(ctx, *cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
	}

	registry := resilience.NewRegistry()
	routerCfg := api.RouterConfig{
		Version:    Version,
		BuildTime:  BuildTime,
		Logger:     log,
		Metrics:    metrics,
		Engine:     engine,
		Registry:   registry,
		RequireTLS: cfg.RequireTLS,
	}
	if pool != nil {
		routerCfg.Database = pool
	}

	if cfg.ORS.Enabled() {
		planner, geocoder, err := newPlanner(ctx, cfg, engine, registry, pool, log)
		if err != nil {
			return err
		}
		routerCfg.Planner = planner

		job := worker.NewMaintenanceJob(geocoder, worker.MaintenanceConfig{
			Interval:      cfg.Geocode.PruneInterval,
			WarmAddresses: cfg.Geocode.WarmAddresses,
		}, log.With().Str("component", "geocode_maintenance").Logger())
		go job.Start(ctx)
	} else {
		log.Warn().Msg("ORS_API_KEY not set - trip planning disabled")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newPlanner wires the routing provider, the caches and the trip service.
func newPlanner(
	ctx context.Context,
	cfg config.Config,
	engine *hos.Engine,
	registry *resilience.Registry,
	pool *pgxpool.Pool,
	log zerolog.Logger,
) (handler.Planner, *geocode.Service, error) {
	ors := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   cfg.ORS.APIKey,
		BaseURL:  cfg.ORS.BaseURL,
		Registry: registry,
		Logger:   log,
	})

	repo, err := newGeocodeRepository(ctx, pool)
	if err != nil {
		return nil, nil, err
	}

	geocoder := geocode.NewService(geocode.ServiceConfig{
		Geocoder:   ors,
		Repository: repo,
		Provider:   ors.Name(),
		TTL:        cfg.Geocode.TTL,
		Logger:     log,
	})

	directions := routing.NewService(routing.ServiceConfig{
		Provider: ors,
		Logger:   log,
	})

	planner, err := trip.NewService(trip.ServiceConfig{
		Geocoder:   geocoder,
		Directions: directions,
		Engine:     engine,
		Profile:    cfg.ORS.Profile,
		Logger:     log,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("provider", ors.Name()).
		Str("profile", string(cfg.ORS.Profile)).
		Str("geocode_cache", cfg.Geocode.Backend).
		Msg("trip planning initialized")

	return planner, geocoder, nil
}

func newGeocodeRepository(ctx context.Context, pool *pgxpool.Pool) (geocode.Repository, error) {
	if pool == nil {
		return geocode.NewInMemoryRepository(), nil
	}
	repo := geocode.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}
