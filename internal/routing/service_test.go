package routing

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockProvider is a mock routing provider for testing.
type mockProvider struct {
	name      string
	profiles  []RouteProfile
	response  *DirectionsResponse
	err       error
	callCount atomic.Int32
	delay     time.Duration
	lastReq   DirectionsRequest
}

func (m *mockProvider) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	m.callCount.Add(1)
	m.lastReq = req
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) SupportedProfiles() []RouteProfile {
	return m.profiles
}

var (
	newYork      = Coordinate{Lat: 40.7128, Lon: -74.0064}
	philadelphia = Coordinate{Lat: 39.9526, Lon: -75.1652}
	washington   = Coordinate{Lat: 38.9072, Lon: -77.0369}
)

func tripRequest() DirectionsRequest {
	return DirectionsRequest{
		Waypoints: []Coordinate{newYork, philadelphia, washington},
		Profile:   ProfileHGV,
	}
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileHGV, ProfileCar},
		response: &DirectionsResponse{
			Routes: []Route{
				{
					GeometryPolyline: "_p~iF~ps|U_ulLnnqC",
					DistanceMeters:   362904.3,
					DurationSeconds:  15120,
				},
			},
			Provider:  "test-provider",
			FetchedAt: time.Now(),
		},
	}
}

func TestService_GetDirections_CacheMiss(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider})

	resp, err := service.GetDirections(context.Background(), tripRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.callCount.Load())
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(resp.Routes))
	}
	if resp.Routes[0].DistanceMeters != 362904.3 {
		t.Errorf("expected distance 362904.3, got %v", resp.Routes[0].DistanceMeters)
	}
	if len(provider.lastReq.Waypoints) != 3 {
		t.Errorf("expected 3 waypoints forwarded, got %d", len(provider.lastReq.Waypoints))
	}
}

func TestService_GetDirections_DefaultProfile(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider})

	req := tripRequest()
	req.Profile = ""
	if _, err := service.GetDirections(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.lastReq.Profile != ProfileHGV {
		t.Errorf("expected profile %q, got %q", ProfileHGV, provider.lastReq.Profile)
	}
}

func TestService_GetDirections_CacheHit(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider, CacheTTL: 5 * time.Minute})

	if _, err := service.GetDirections(context.Background(), tripRequest()); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if _, err := service.GetDirections(context.Background(), tripRequest()); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call (cache hit), got %d", provider.callCount.Load())
	}
}

func TestService_GetDirections_GridCaching(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{
		Provider:      provider,
		CacheGridSize: 0.01,
	})

	_, _ = service.GetDirections(context.Background(), tripRequest())

	// Same grid cells, slightly different points
	_, _ = service.GetDirections(context.Background(), DirectionsRequest{
		Waypoints: []Coordinate{
			{Lat: 40.7131, Lon: -74.0061},
			{Lat: 39.9522, Lon: -75.1655},
			{Lat: 38.9075, Lon: -77.0362},
		},
		Profile: ProfileHGV,
	})

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call (grid cache hit), got %d", provider.callCount.Load())
	}
}

func TestService_GetDirections_WaypointOrderMatters(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider})

	_, _ = service.GetDirections(context.Background(), tripRequest())
	_, _ = service.GetDirections(context.Background(), DirectionsRequest{
		Waypoints: []Coordinate{newYork, washington, philadelphia},
		Profile:   ProfileHGV,
	})

	if provider.callCount.Load() != 2 {
		t.Errorf("expected 2 provider calls (different stop order), got %d", provider.callCount.Load())
	}
}

func TestService_GetDirections_DifferentProfilesNotCached(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider})

	_, _ = service.GetDirections(context.Background(), tripRequest())

	req := tripRequest()
	req.Profile = ProfileCar
	_, _ = service.GetDirections(context.Background(), req)

	if provider.callCount.Load() != 2 {
		t.Errorf("expected 2 provider calls (different profiles), got %d", provider.callCount.Load())
	}
}

func TestService_GetDirections_StaleIfError(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{
		Provider:        provider,
		CacheTTL:        50 * time.Millisecond,
		StaleIfErrorTTL: 500 * time.Millisecond,
	})

	if _, err := service.GetDirections(context.Background(), tripRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Past the TTL, still inside the stale window
	time.Sleep(100 * time.Millisecond)

	provider.err = &Error{Provider: "test-provider", Message: "down", Err: ErrProviderUnavailable}

	resp, err := service.GetDirections(context.Background(), tripRequest())
	if err != nil {
		t.Fatalf("expected stale data to be served, got error: %v", err)
	}
	if resp.Routes[0].DistanceMeters != 362904.3 {
		t.Errorf("expected stale distance 362904.3, got %v", resp.Routes[0].DistanceMeters)
	}
}

func TestService_GetDirections_NoRouteNotMaskedByStale(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{
		Provider:        provider,
		CacheTTL:        10 * time.Millisecond,
		StaleIfErrorTTL: time.Minute,
	})

	if _, err := service.GetDirections(context.Background(), tripRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	provider.err = &Error{Provider: "test-provider", Message: "no route", Err: ErrNoRouteFound}

	_, err := service.GetDirections(context.Background(), tripRequest())
	if !errors.Is(err, ErrNoRouteFound) {
		t.Fatalf("expected ErrNoRouteFound, got %v", err)
	}
}

func TestService_GetDirections_InvalidWaypoints(t *testing.T) {
	service := NewService(ServiceConfig{Provider: &mockProvider{name: "test-provider"}})

	tests := []struct {
		name string
		req  DirectionsRequest
	}{
		{
			name: "single waypoint",
			req:  DirectionsRequest{Waypoints: []Coordinate{newYork}},
		},
		{
			name: "invalid latitude",
			req:  DirectionsRequest{Waypoints: []Coordinate{{Lat: 91, Lon: 0}, washington}},
		},
		{
			name: "invalid longitude on a middle stop",
			req:  DirectionsRequest{Waypoints: []Coordinate{newYork, {Lat: 0, Lon: 181}, washington}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GetDirections(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var routingErr *Error
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected Error, got %T", err)
			}
			if !errors.Is(routingErr.Err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", routingErr.Err)
			}
		})
	}
}

func TestService_GetDirections_ConcurrentRequests(t *testing.T) {
	provider := newMockProvider()
	provider.delay = 50 * time.Millisecond
	service := NewService(ServiceConfig{Provider: provider})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.GetDirections(context.Background(), tripRequest()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := provider.callCount.Load(); calls > 3 {
		t.Errorf("expected <= 3 provider calls with double-check locking, got %d", calls)
	}
}

func TestService_CacheStatsAndInvalidate(t *testing.T) {
	provider := newMockProvider()
	service := NewService(ServiceConfig{Provider: provider})

	stats := service.CacheStats()
	if stats.TotalEntries != 0 || stats.Provider != "test-provider" {
		t.Errorf("unexpected initial stats: %+v", stats)
	}

	_, _ = service.GetDirections(context.Background(), tripRequest())

	stats = service.CacheStats()
	if stats.TotalEntries != 1 || stats.FreshEntries != 1 {
		t.Errorf("expected 1 fresh entry, got %+v", stats)
	}

	service.InvalidateCache()
	if service.CacheStats().TotalEntries != 0 {
		t.Errorf("expected empty cache after invalidation")
	}

	_, _ = service.GetDirections(context.Background(), tripRequest())
	if provider.callCount.Load() != 2 {
		t.Errorf("expected 2 provider calls after cache invalidation, got %d", provider.callCount.Load())
	}
}

func TestService_CacheKeyFormat(t *testing.T) {
	service := &Service{cacheGridSize: 0.001}

	key := service.cacheKey(DirectionsRequest{
		Waypoints: []Coordinate{newYork, philadelphia},
		Profile:   ProfileHGV,
	})

	want := "driving-hgv:40.712,-74.007:39.952,-75.166"
	if key != want {
		t.Errorf("expected key %q, got %q", want, key)
	}
}

func TestRoute_UnitConversions(t *testing.T) {
	route := Route{DistanceMeters: 160934, DurationSeconds: 5400}

	if got := route.DistanceMiles(); math.Abs(got-100) > 1e-9 {
		t.Errorf("expected 100 miles, got %v", got)
	}
	if got := route.DurationHours(); got != 1.5 {
		t.Errorf("expected 1.5 hours, got %v", got)
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := ParseProfile(""); err != nil || p != ProfileHGV {
		t.Errorf("expected default profile, got %q, %v", p, err)
	}
	if p, err := ParseProfile("driving-car"); err != nil || p != ProfileCar {
		t.Errorf("expected driving-car, got %q, %v", p, err)
	}
	if _, err := ParseProfile("cycling-regular"); err == nil {
		t.Error("expected error for unsupported profile")
	}
}
