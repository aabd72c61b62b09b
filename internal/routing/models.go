// Package routing resolves addresses and computes truck routes through trip waypoints.
package routing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists through the given points.
	ErrNoRouteFound = errors.New("no route found through the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrAddressNotFound indicates the geocoder returned no match for an address.
	ErrAddressNotFound = errors.New("address not found")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetDirections retrieves a route visiting the request waypoints in order.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
	// SupportedProfiles returns the list of route profiles this provider supports.
	SupportedProfiles() []RouteProfile
}

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinate, error)
}

// RouteProfile represents a routing profile (vehicle type).
type RouteProfile string

const (
	// ProfileHGV routes for heavy goods vehicles.
	ProfileHGV RouteProfile = "driving-hgv"
	// ProfileCar routes for passenger cars.
	ProfileCar RouteProfile = "driving-car"

	// DefaultProfile is used when a request leaves the profile empty.
	DefaultProfile = ProfileHGV
)

// ParseProfile converts a configuration string to a RouteProfile.
func ParseProfile(s string) (RouteProfile, error) {
	switch RouteProfile(s) {
	case "":
		return DefaultProfile, nil
	case ProfileHGV, ProfileCar:
		return RouteProfile(s), nil
	default:
		return "", errors.New("unsupported route profile: " + s)
	}
}

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DirectionsRequest is the request for computing a route.
type DirectionsRequest struct {
	Waypoints []Coordinate // At least two points, visited in order
	Profile   RouteProfile
}

// DirectionsResponse is the response containing the computed routes.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route through all waypoints.
type Route struct {
	GeometryPolyline string       // Encoded polyline (precision 5)
	Geometry         []Coordinate // Decoded GeometryPolyline
	DistanceMeters   float64
	DurationSeconds  float64
	BoundingBox      *BoundingBox
	Segments         []Segment // One per leg between consecutive waypoints
}

const (
	metersPerMile  = 1609.34
	secondsPerHour = 3600
)

// MetersToMiles converts meters to statute miles.
func MetersToMiles(m float64) float64 {
	return m / metersPerMile
}

// SecondsToHours converts seconds to hours.
func SecondsToHours(s float64) float64 {
	return s / secondsPerHour
}

// DistanceMiles returns the route distance in statute miles.
func (r Route) DistanceMiles() float64 {
	return MetersToMiles(r.DistanceMeters)
}

// DurationHours returns the route duration in hours.
func (r Route) DurationHours() float64 {
	return SecondsToHours(r.DurationSeconds)
}

// Segment is the leg of a route between two consecutive waypoints.
type Segment struct {
	DistanceMeters  float64
	DurationSeconds float64
	Steps           []Instruction
}

// BoundingBox represents a geographic bounding box.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Instruction represents a turn-by-turn instruction.
type Instruction struct {
	Text            string // Human-readable instruction text
	Name            string // Road name, if any
	DistanceMeters  float64
	DurationSeconds float64
	Type            int // ORS instruction type code
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

// ValidateCoordinate checks that a coordinate is within valid ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}
