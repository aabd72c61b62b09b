package trip

import (
	"time"

	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/pkg/polyline"
)

// Demo trip totals: New York to Philadelphia to Washington.
const (
	DemoDistanceMiles  = 225.5
	DemoDurationHours  = 4.2
	DemoCycleUsedHours = 20
	demoPlanID         = "trp_demo"
	demoProvider       = "demo"
)

var demoWaypoints = []Waypoint{
	{Role: RoleStart, Address: "New York, NY", Coordinate: routing.Coordinate{Lat: 40.7128, Lon: -74.0060}},
	{Role: RolePickup, Address: "Philadelphia, PA", Coordinate: routing.Coordinate{Lat: 39.9526, Lon: -75.1652}},
	{Role: RoleDropoff, Address: "Washington, DC", Coordinate: routing.Coordinate{Lat: 38.9072, Lon: -77.0369}},
}

// DemoPlan returns the fixed sample trip scheduled by engine. It makes no
// provider calls; the route geometry is the straight line through the stops.
func DemoPlan(engine *hos.Engine) (*Plan, error) {
	schedule, err := engine.Plan(hos.TripRequest{
		TotalDistanceMiles:    DemoDistanceMiles,
		TotalDurationHours:    DemoDurationHours,
		CurrentCycleUsedHours: DemoCycleUsedHours,
	})
	if err != nil {
		return nil, err
	}

	waypoints := make([]Waypoint, len(demoWaypoints))
	copy(waypoints, demoWaypoints)

	points := make([]polyline.Coordinate, len(waypoints))
	for i, wp := range waypoints {
		points[i] = polyline.Coordinate{Lat: wp.Coordinate.Lat, Lon: wp.Coordinate.Lon}
	}

	summary := Summary{
		DistanceMiles: DemoDistanceMiles,
		DurationHours: DemoDurationHours,
		Geometry:      polyline.Join(points),
		Waypoints:     waypoints,
		Provider:      demoProvider,
	}
	if sw, ne, ok := polyline.Bounds(points); ok {
		summary.Bounds = &Bounds{{sw.Lat, sw.Lon}, {ne.Lat, ne.Lon}}
	}

	return &Plan{
		ID:        demoPlanID,
		Route:     summary,
		Schedule:  schedule,
		CreatedAt: time.Now().UTC(),
	}, nil
}
