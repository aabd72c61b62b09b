package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/pkg/polyline"
)

const instrumentationName = "github.com/eldroute/eldroute/internal/trip"

// Directions computes routes through waypoints.
type Directions interface {
	GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error)
}

// ServiceConfig holds configuration for the trip service.
type ServiceConfig struct {
	Geocoder   routing.Geocoder
	Directions Directions
	Engine     *hos.Engine
	Profile    routing.RouteProfile // Defaults to routing.DefaultProfile
	Logger     zerolog.Logger
}

// Service plans trips.
type Service struct {
	geocoder   routing.Geocoder
	directions Directions
	engine     *hos.Engine
	profile    routing.RouteProfile
	logger     zerolog.Logger
	tracer     trace.Tracer
	metrics    *metrics
}

// NewService creates a new trip service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Geocoder == nil || cfg.Directions == nil || cfg.Engine == nil {
		return nil, errors.New("trip: geocoder, directions and engine are required")
	}

	m, err := newMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("creating trip metrics: %w", err)
	}

	profile := cfg.Profile
	if profile == "" {
		profile = routing.DefaultProfile
	}

	return &Service{
		geocoder:   cfg.Geocoder,
		directions: cfg.Directions,
		engine:     cfg.Engine,
		profile:    profile,
		logger:     cfg.Logger,
		tracer:     otel.Tracer(instrumentationName),
		metrics:    m,
	}, nil
}

// Plan geocodes the three stops, routes through them and schedules the drive.
// Routing and geocoding failures are returned as *routing.Error before the
// engine runs; engine failures are returned as *hos.Error.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	ctx, span := s.tracer.Start(ctx, "trip.Plan")
	defer span.End()

	start := time.Now()
	plan, err := s.plan(ctx, req)
	s.metrics.recordPlan(ctx, plan, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("trip.id", plan.ID),
		attribute.Int("trip.days", plan.Schedule.DaysNeeded),
		attribute.Bool("trip.compliant", plan.Schedule.Compliance.IsCompliant),
	)
	return plan, nil
}

func (s *Service) plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	waypoints, err := s.resolveWaypoints(ctx, req)
	if err != nil {
		return nil, err
	}

	route, provider, err := s.route(ctx, waypoints)
	if err != nil {
		return nil, err
	}

	summary := summarize(route, waypoints)
	summary.Provider = provider
	if summary.DurationHours == 0 && summary.DistanceMiles > 0 {
		return nil, &routing.Error{
			Provider: provider,
			Code:     "ROUTE_TOO_SHORT",
			Message:  fmt.Sprintf("route of %.2f miles rounds to zero driving hours", summary.DistanceMiles),
			Err:      routing.ErrNoRouteFound,
		}
	}

	schedule, err := s.schedule(ctx, hos.TripRequest{
		TotalDistanceMiles:    summary.DistanceMiles,
		TotalDurationHours:    summary.DurationHours,
		CurrentCycleUsedHours: req.CurrentCycleUsedHours,
	})
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:        "trp_" + uuid.New().String()[:22],
		Route:     summary,
		Schedule:  schedule,
		CreatedAt: time.Now().UTC(),
	}

	s.logger.Info().
		Str("trip_id", plan.ID).
		Float64("distance_miles", summary.DistanceMiles).
		Float64("duration_hours", summary.DurationHours).
		Int("days", schedule.DaysNeeded).
		Bool("compliant", schedule.Compliance.IsCompliant).
		Msg("trip planned")

	return plan, nil
}

func (s *Service) resolveWaypoints(ctx context.Context, req PlanRequest) ([]Waypoint, error) {
	ctx, span := s.tracer.Start(ctx, "trip.geocode")
	defer span.End()

	stops := []Waypoint{
		{Role: RoleStart, Address: req.CurrentLocation},
		{Role: RolePickup, Address: req.PickupLocation},
		{Role: RoleDropoff, Address: req.DropoffLocation},
	}

	for i := range stops {
		coord, err := s.geocoder.Geocode(ctx, stops[i].Address)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("role", stops[i].Role).
				Str("address", stops[i].Address).
				Msg("failed to geocode trip stop")
			span.RecordError(err)
			span.SetStatus(codes.Error, "geocoding failed")
			return nil, err
		}
		stops[i].Coordinate = coord
	}

	return stops, nil
}

func (s *Service) route(ctx context.Context, waypoints []Waypoint) (*routing.Route, string, error) {
	ctx, span := s.tracer.Start(ctx, "trip.route", trace.WithAttributes(
		attribute.String("route.profile", string(s.profile)),
	))
	defer span.End()

	coords := make([]routing.Coordinate, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = wp.Coordinate
	}

	resp, err := s.directions.GetDirections(ctx, routing.DirectionsRequest{
		Waypoints: coords,
		Profile:   s.profile,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "routing failed")
		return nil, "", err
	}
	if len(resp.Routes) == 0 {
		err := &routing.Error{
			Provider: resp.Provider,
			Code:     "NO_ROUTE",
			Message:  "no route returned for trip",
			Err:      routing.ErrNoRouteFound,
		}
		span.SetStatus(codes.Error, err.Message)
		return nil, "", err
	}

	return &resp.Routes[0], resp.Provider, nil
}

func (s *Service) schedule(ctx context.Context, req hos.TripRequest) (*hos.Schedule, error) {
	ctx, span := s.tracer.Start(ctx, "trip.schedule")
	defer span.End()

	schedule, err := s.engine.Plan(req)
	if err != nil {
		code := "UNKNOWN"
		var hosErr *hos.Error
		if errors.As(err, &hosErr) {
			code = hosErr.Code
		}
		s.metrics.engineFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		return nil, err
	}

	return schedule, nil
}

// summarize converts a provider route to the trip summary, rounding
// distances and durations to 2 decimals.
func summarize(route *routing.Route, waypoints []Waypoint) Summary {
	points := make([]polyline.Coordinate, len(route.Geometry))
	for i, c := range route.Geometry {
		points[i] = polyline.Coordinate{Lat: c.Lat, Lon: c.Lon}
	}

	summary := Summary{
		DistanceMiles: scalar.Round(route.DistanceMiles(), 2),
		DurationHours: scalar.Round(route.DurationHours(), 2),
		Geometry:      polyline.Join(points),
		Waypoints:     waypoints,
	}

	if box := route.BoundingBox; box != nil {
		summary.Bounds = &Bounds{{box.MinLat, box.MinLon}, {box.MaxLat, box.MaxLon}}
	}

	for i, seg := range route.Segments {
		if i+1 >= len(waypoints) {
			break
		}
		leg := Leg{
			From:          waypoints[i].Role,
			To:            waypoints[i+1].Role,
			DistanceMiles: scalar.Round(routing.MetersToMiles(seg.DistanceMeters), 2),
			DurationHours: scalar.Round(routing.SecondsToHours(seg.DurationSeconds), 2),
			Steps:         make([]Step, 0, len(seg.Steps)),
		}
		for _, st := range seg.Steps {
			leg.Steps = append(leg.Steps, Step{
				Instruction:   st.Text,
				Name:          st.Name,
				DistanceMiles: scalar.Round(routing.MetersToMiles(st.DistanceMeters), 2),
				DurationHours: scalar.Round(routing.SecondsToHours(st.DurationSeconds), 2),
			})
		}
		summary.Legs = append(summary.Legs, leg)
	}

	return summary
}
