// Package config loads process configuration from the environment.
//
// A .env file in the working directory is loaded first when present; values
// already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/database"
	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/internal/telemetry"
)

// Geocode cache backends.
const (
	GeocodeCacheMemory   = "memory"
	GeocodeCachePostgres = "postgres"
)

// Config is the API server configuration.
type Config struct {
	Port       string
	Env        string
	LogLevel   zerolog.Level
	RequireTLS bool

	ORS       ORSConfig
	Telemetry telemetry.Config
	Geocode   GeocodeConfig

	// Database is only populated when the geocode cache is postgres.
	Database *database.Config

	Rules hos.Rules
}

// ORSConfig configures the OpenRouteService provider.
type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile routing.RouteProfile
}

// Enabled reports whether trip planning can reach the provider.
func (c ORSConfig) Enabled() bool {
	return c.APIKey != ""
}

// GeocodeConfig configures the geocode cache.
type GeocodeConfig struct {
	Backend       string
	TTL           time.Duration
	PruneInterval time.Duration

	// WarmAddresses are re-resolved on every maintenance run.
	WarmAddresses []string
}

// LoadDotEnv loads .env into the process environment. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads .env and then the process environment.
func Load(serviceName, version string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv, serviceName, version)
}

// FromEnv builds a Config from getenv. Every malformed value is reported.
func FromEnv(getenv func(string) string, serviceName, version string) (Config, error) {
	env := newReader(getenv)

	cfg := Config{
		Port:       env.str("APP_PORT", "8080"),
		Env:        env.str("APP_ENV", "development"),
		RequireTLS: env.boolean("REQUIRE_TLS", false),
		ORS: ORSConfig{
			APIKey:  strings.TrimSpace(getenv("ORS_API_KEY")),
			BaseURL: getenv("ORS_BASE_URL"),
		},
		Telemetry: telemetry.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    env.str("APP_ENV", "development"),
			OTLPEndpoint:   env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:       env.boolean("OTEL_EXPORTER_OTLP_INSECURE", true),
			Enabled:        env.boolean("OTEL_ENABLED", false),
			SampleRatio:    env.float("OTEL_TRACES_SAMPLER_ARG", 1),
			MetricInterval: env.duration("OTEL_METRIC_EXPORT_INTERVAL", 15*time.Second),
		},
		Geocode: GeocodeConfig{
			Backend:       env.str("GEOCODE_CACHE", GeocodeCacheMemory),
			TTL:           env.duration("GEOCODE_CACHE_TTL", 30*24*time.Hour),
			PruneInterval: env.duration("GEOCODE_PRUNE_INTERVAL", time.Hour),
			WarmAddresses: splitList(getenv("GEOCODE_WARM_ADDRESSES")),
		},
	}

	level, err := zerolog.ParseLevel(strings.ToLower(env.str("LOG_LEVEL", "info")))
	if err != nil {
		env.fail("LOG_LEVEL", err)
	}
	cfg.LogLevel = level

	profile, err := routing.ParseProfile(getenv("ORS_PROFILE"))
	if err != nil {
		env.fail("ORS_PROFILE", err)
	}
	cfg.ORS.Profile = profile

	switch cfg.Geocode.Backend {
	case GeocodeCacheMemory:
	case GeocodeCachePostgres:
		db, dbErr := database.ConfigFromEnv(getenv)
		if dbErr != nil {
			env.errs = append(env.errs, dbErr)
		} else {
			cfg.Database = &db
		}
	default:
		env.fail("GEOCODE_CACHE", fmt.Errorf("must be %q or %q", GeocodeCacheMemory, GeocodeCachePostgres))
	}

	rules, err := RulesFromEnv(getenv)
	if err != nil {
		env.errs = append(env.errs, err)
	}
	cfg.Rules = rules

	if err := env.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RulesFromEnv applies HOS_* overrides to the default rules and validates the result.
func RulesFromEnv(getenv func(string) string) (hos.Rules, error) {
	env := newReader(getenv)
	def := hos.DefaultRules()

	rules := hos.Rules{
		DailyDrivingLimit:     env.float("HOS_DAILY_DRIVING_LIMIT", def.DailyDrivingLimit),
		DailyDutyLimit:        env.float("HOS_DAILY_DUTY_LIMIT", def.DailyDutyLimit),
		CycleLimit:            env.float("HOS_CYCLE_LIMIT", def.CycleLimit),
		BreakTriggerHours:     env.float("HOS_BREAK_TRIGGER_HOURS", def.BreakTriggerHours),
		BreakDuration:         env.float("HOS_BREAK_DURATION", def.BreakDuration),
		OffDutyDuration:       env.float("HOS_OFF_DUTY_DURATION", def.OffDutyDuration),
		FuelStopIntervalMiles: env.float("HOS_FUEL_STOP_INTERVAL_MILES", def.FuelStopIntervalMiles),
		FuelStopDuration:      env.float("HOS_FUEL_STOP_DURATION", def.FuelStopDuration),
		ShiftStartHour:        env.float("HOS_SHIFT_START_HOUR", def.ShiftStartHour),
	}
	if err := env.err(); err != nil {
		return hos.Rules{}, err
	}
	if err := rules.Validate(); err != nil {
		return hos.Rules{}, err
	}
	return rules, nil
}

// splitList splits a semicolon separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// reader accumulates parse failures so a single startup reports all of them.
type reader struct {
	getenv func(string) string
	errs   []error
}

func newReader(getenv func(string) string) *reader {
	return &reader{getenv: getenv}
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return f
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	if d <= 0 {
		r.fail(key, fmt.Errorf("must be positive, got %s", d))
		return def
	}
	return d
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

func (r *reader) err() error {
	return errors.Join(r.errs...)
}
