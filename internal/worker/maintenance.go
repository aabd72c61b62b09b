// Package worker runs background maintenance for the geocode cache.
//
// A run prunes entries older than the cache TTL and then re-resolves the
// configured warm addresses with a small pool of goroutines, so the
// addresses dispatchers use most are served from the cache.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/routing"
)

// Cache is the geocode cache being maintained. *geocode.Service implements it.
type Cache interface {
	Geocode(ctx context.Context, address string) (routing.Coordinate, error)
	Prune(ctx context.Context) (int, error)
}

// MaintenanceConfig holds configuration for the maintenance job.
type MaintenanceConfig struct {
	// Interval between runs.
	// Default: 1 hour
	Interval time.Duration

	// Timeout bounds each prune and each address lookup.
	// Default: 30 seconds
	Timeout time.Duration

	// Concurrency is the number of addresses warmed in parallel.
	// Default: 3
	Concurrency int

	// WarmAddresses are resolved on every run.
	WarmAddresses []string
}

// DefaultMaintenanceConfig returns the default maintenance configuration.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		Interval:    time.Hour,
		Timeout:     30 * time.Second,
		Concurrency: 3,
	}
}

func (c MaintenanceConfig) withDefaults() MaintenanceConfig {
	def := DefaultMaintenanceConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	return c
}

// MaintenanceJob prunes and warms the geocode cache.
type MaintenanceJob struct {
	config MaintenanceConfig
	cache  Cache
	logger zerolog.Logger

	mu      sync.RWMutex
	metrics Metrics
}

// Metrics tracks maintenance statistics across runs.
type Metrics struct {
	Runs          int64
	PruneFailures int64
	Pruned        int64
	Warmed        int64
	WarmFailures  int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// RunResult is the outcome of one maintenance run.
type RunResult struct {
	StartTime  time.Time
	Duration   time.Duration
	Pruned     int
	PruneError error
	Warmed     int
	Failed     int
	Errors     []WarmError
}

// WarmError records an address that could not be resolved.
type WarmError struct {
	Address string
	Error   string
}

// NewMaintenanceJob creates a maintenance job for cache.
func NewMaintenanceJob(cache Cache, cfg MaintenanceConfig, logger zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		config: cfg.withDefaults(),
		cache:  cache,
		logger: logger,
	}
}

// Start runs the job immediately and then on every interval until ctx is done.
func (j *MaintenanceJob) Start(ctx context.Context) {
	j.RunOnce(ctx)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce prunes the cache and warms the configured addresses.
func (j *MaintenanceJob) RunOnce(ctx context.Context) *RunResult {
	result := &RunResult{StartTime: time.Now()}

	pruneCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	result.Pruned, result.PruneError = j.cache.Prune(pruneCtx)
	cancel()
	if result.PruneError != nil {
		j.logger.Error().Err(result.PruneError).Msg("geocode cache prune failed")
	}

	j.warm(ctx, result)

	result.Duration = time.Since(result.StartTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("pruned", result.Pruned).
		Int("warmed", result.Warmed).
		Int("failed", result.Failed).
		Msg("geocode cache maintenance completed")

	return result
}

func (j *MaintenanceJob) warm(ctx context.Context, result *RunResult) {
	if len(j.config.WarmAddresses) == 0 {
		return
	}

	addresses := make(chan string, len(j.config.WarmAddresses))
	for _, a := range j.config.WarmAddresses {
		addresses <- a
	}
	close(addresses)

	results := make(chan *WarmError, len(j.config.WarmAddresses))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for address := range addresses {
				if ctx.Err() != nil {
					results <- &WarmError{Address: address, Error: ctx.Err().Error()}
					continue
				}
				results <- j.warmAddress(ctx, address)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for werr := range results {
		if werr == nil {
			result.Warmed++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, *werr)
	}
}

func (j *MaintenanceJob) warmAddress(ctx context.Context, address string) *WarmError {
	lookupCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.cache.Geocode(lookupCtx, address); err != nil {
		j.logger.Warn().Err(err).Str("address", address).Msg("warm address failed")
		return &WarmError{Address: address, Error: err.Error()}
	}
	return nil
}

func (j *MaintenanceJob) updateMetrics(result *RunResult) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.Runs++
	if result.PruneError != nil {
		j.metrics.PruneFailures++
	}
	j.metrics.Pruned += int64(result.Pruned)
	j.metrics.Warmed += int64(result.Warmed)
	j.metrics.WarmFailures += int64(result.Failed)
	j.metrics.LastRunAt = result.StartTime
	j.metrics.LastRunDuration = result.Duration
}

// GetMetrics returns a snapshot of the job statistics.
func (j *MaintenanceJob) GetMetrics() Metrics {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metrics
}
