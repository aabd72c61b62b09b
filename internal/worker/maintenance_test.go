package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/internal/worker"
)

type fakeCache struct {
	mu        sync.Mutex
	pruned    int
	pruneErr  error
	failing   map[string]bool
	looked    []string
	pruneRuns int
}

func (f *fakeCache) Geocode(_ context.Context, address string) (routing.Coordinate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.looked = append(f.looked, address)
	if f.failing[address] {
		return routing.Coordinate{}, routing.ErrAddressNotFound
	}
	return routing.Coordinate{Lat: 1, Lon: 2}, nil
}

func (f *fakeCache) Prune(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneRuns++
	return f.pruned, f.pruneErr
}

func (f *fakeCache) runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pruneRuns
}

func TestDefaultMaintenanceConfig(t *testing.T) {
	cfg := worker.DefaultMaintenanceConfig()

	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Empty(t, cfg.WarmAddresses)
}

func TestRunOnce_PrunesAndWarms(t *testing.T) {
	cache := &fakeCache{
		pruned:  4,
		failing: map[string]bool{"nowhere": true},
	}
	job := worker.NewMaintenanceJob(cache, worker.MaintenanceConfig{
		Concurrency:   2,
		WarmAddresses: []string{"Chicago, IL", "nowhere", "Dallas, TX"},
	}, zerolog.Nop())

	result := job.RunOnce(context.Background())

	assert.Equal(t, 4, result.Pruned)
	require.NoError(t, result.PruneError)
	assert.Equal(t, 2, result.Warmed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "nowhere", result.Errors[0].Address)
	assert.ElementsMatch(t, []string{"Chicago, IL", "nowhere", "Dallas, TX"}, cache.looked)

	m := job.GetMetrics()
	assert.Equal(t, int64(1), m.Runs)
	assert.Equal(t, int64(4), m.Pruned)
	assert.Equal(t, int64(2), m.Warmed)
	assert.Equal(t, int64(1), m.WarmFailures)
	assert.False(t, m.LastRunAt.IsZero())
}

func TestRunOnce_PruneFailureStillWarms(t *testing.T) {
	cache := &fakeCache{pruneErr: errors.New("db down")}
	job := worker.NewMaintenanceJob(cache, worker.MaintenanceConfig{
		WarmAddresses: []string{"Chicago, IL"},
	}, zerolog.Nop())

	result := job.RunOnce(context.Background())

	assert.Error(t, result.PruneError)
	assert.Equal(t, 1, result.Warmed)
	assert.Equal(t, int64(1), job.GetMetrics().PruneFailures)
}

func TestRunOnce_CancelledContextSkipsLookups(t *testing.T) {
	cache := &fakeCache{}
	job := worker.NewMaintenanceJob(cache, worker.MaintenanceConfig{
		WarmAddresses: []string{"a", "b"},
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.RunOnce(ctx)

	assert.Equal(t, 0, result.Warmed)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, cache.looked)
}

func TestStart_RunsUntilCancelled(t *testing.T) {
	cache := &fakeCache{}
	job := worker.NewMaintenanceJob(cache, worker.MaintenanceConfig{
		Interval: 10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cache.runs() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
