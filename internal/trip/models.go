// Package trip plans a driver's trip end to end: it resolves the stops,
// routes through them and schedules the drive under Hours-of-Service rules.
package trip

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
)

// ErrInvalidRequest indicates a malformed plan request.
var ErrInvalidRequest = errors.New("invalid trip request")

// MaxAddressLength bounds each address field.
const MaxAddressLength = 200

// Waypoint roles, in visiting order.
const (
	RoleStart   = "start"
	RolePickup  = "pickup"
	RoleDropoff = "dropoff"
)

// PlanRequest is a trip described by addresses.
type PlanRequest struct {
	CurrentLocation       string
	PickupLocation        string
	DropoffLocation       string
	CurrentCycleUsedHours float64
}

// ValidationError reports the request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// Validate checks the request shape. Cycle bounds beyond non-negativity are
// left to the engine.
func (r PlanRequest) Validate() error {
	addresses := []struct {
		field string
		value string
	}{
		{"currentLocation", r.CurrentLocation},
		{"pickupLocation", r.PickupLocation},
		{"dropoffLocation", r.DropoffLocation},
	}
	for _, a := range addresses {
		v := strings.TrimSpace(a.value)
		if v == "" {
			return &ValidationError{Field: a.field, Message: "is required"}
		}
		if len(v) > MaxAddressLength {
			return &ValidationError{Field: a.field, Message: fmt.Sprintf("must be at most %d characters", MaxAddressLength)}
		}
	}

	if math.IsNaN(r.CurrentCycleUsedHours) || math.IsInf(r.CurrentCycleUsedHours, 0) || r.CurrentCycleUsedHours < 0 {
		return &ValidationError{Field: "currentCycleUsedHours", Message: "must be a non-negative number"}
	}

	return nil
}

// Waypoint is a resolved stop on the trip.
type Waypoint struct {
	Role       string
	Address    string
	Coordinate routing.Coordinate
}

// Step is one driving instruction.
type Step struct {
	Instruction   string
	Name          string
	DistanceMiles float64
	DurationHours float64
}

// Leg is the drive between two consecutive waypoints.
type Leg struct {
	From          string // Waypoint role
	To            string // Waypoint role
	DistanceMiles float64
	DurationHours float64
	Steps         []Step
}

// Bounds is the route extent as [[minLat, minLon], [maxLat, maxLon]].
type Bounds [2][2]float64

// Summary describes the routed trip.
type Summary struct {
	DistanceMiles float64 // Rounded to 2 decimals
	DurationHours float64 // Rounded to 2 decimals
	Geometry      string  // "lon,lat;lon,lat;..."
	Bounds        *Bounds
	Waypoints     []Waypoint
	Legs          []Leg
	Provider      string
}

// Plan is the result of planning a trip.
type Plan struct {
	ID        string
	Route     Summary
	Schedule  *hos.Schedule
	CreatedAt time.Time
}
