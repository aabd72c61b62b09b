package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil), "eldroute-api", "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.RequireTLS)
	assert.False(t, cfg.ORS.Enabled())
	assert.Equal(t, routing.ProfileHGV, cfg.ORS.Profile)
	assert.Equal(t, GeocodeCacheMemory, cfg.Geocode.Backend)
	assert.Equal(t, time.Hour, cfg.Geocode.PruneInterval)
	assert.Nil(t, cfg.Database)
	assert.Equal(t, hos.DefaultRules(), cfg.Rules)

	assert.Equal(t, "eldroute-api", cfg.Telemetry.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Telemetry.ServiceVersion)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.InDelta(t, 1.0, cfg.Telemetry.SampleRatio, 1e-9)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"APP_PORT":                    "9000",
		"APP_ENV":                     "production",
		"LOG_LEVEL":                   "DEBUG",
		"REQUIRE_TLS":                 "true",
		"ORS_API_KEY":                 " key ",
		"ORS_PROFILE":                 "driving-car",
		"OTEL_ENABLED":                "true",
		"OTEL_TRACES_SAMPLER_ARG":     "0.25",
		"GEOCODE_CACHE":               "postgres",
		"DB_HOST":                     "db",
		"GEOCODE_PRUNE_INTERVAL":      "10m",
		"HOS_CYCLE_LIMIT":             "60",
		"HOS_DAILY_DRIVING_LIMIT":     "10",
		"OTEL_METRIC_EXPORT_INTERVAL": "30s",
		"GEOCODE_WARM_ADDRESSES":      "Chicago, IL; ;Dallas, TX;",
	}), "eldroute-api", "dev")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.RequireTLS)
	assert.Equal(t, "key", cfg.ORS.APIKey)
	assert.True(t, cfg.ORS.Enabled())
	assert.Equal(t, routing.ProfileCar, cfg.ORS.Profile)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "production", cfg.Telemetry.Environment)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.MetricInterval)
	assert.Equal(t, 10*time.Minute, cfg.Geocode.PruneInterval)
	assert.Equal(t, []string{"Chicago, IL", "Dallas, TX"}, cfg.Geocode.WarmAddresses)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.InDelta(t, 60.0, cfg.Rules.CycleLimit, 1e-9)
	assert.InDelta(t, 10.0, cfg.Rules.DailyDrivingLimit, 1e-9)
}

func TestFromEnv_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"log level", "LOG_LEVEL", "loud"},
		{"tls flag", "REQUIRE_TLS", "maybe"},
		{"profile", "ORS_PROFILE", "cycling-road"},
		{"cache backend", "GEOCODE_CACHE", "redis"},
		{"prune interval", "GEOCODE_PRUNE_INTERVAL", "-1m"},
		{"sample ratio", "OTEL_TRACES_SAMPLER_ARG", "half"},
		{"rule number", "HOS_CYCLE_LIMIT", "seventy"},
		{"rule value", "HOS_BREAK_DURATION", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{tt.key: tt.val}), "svc", "dev")
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ReportsEveryFailure(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"LOG_LEVEL":       "loud",
		"HOS_CYCLE_LIMIT": "x",
	}), "svc", "dev")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "HOS_CYCLE_LIMIT")
}

func TestRulesFromEnv_RejectsInconsistentRules(t *testing.T) {
	_, err := RulesFromEnv(envMap(map[string]string{
		"HOS_DAILY_DRIVING_LIMIT": "15",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds dailyDutyLimit")
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("file values do not override the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("ELDROUTE_TEST_A=file\nELDROUTE_TEST_B=file\n"), 0o600))
		t.Setenv("ELDROUTE_TEST_A", "env")
		t.Setenv("ELDROUTE_TEST_B", "")
		require.NoError(t, os.Unsetenv("ELDROUTE_TEST_B"))

		require.NoError(t, LoadDotEnv(path))
		t.Cleanup(func() { _ = os.Unsetenv("ELDROUTE_TEST_B") })

		assert.Equal(t, "env", os.Getenv("ELDROUTE_TEST_A"))
		assert.Equal(t, "file", os.Getenv("ELDROUTE_TEST_B"))
	})
}
