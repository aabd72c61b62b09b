package models

import (
	"github.com/eldroute/eldroute/internal/trip"
)

// TripPlanRequest is the body of POST /v1/trips:plan.
type TripPlanRequest struct {
	CurrentLocation       string   `json:"currentLocation"`
	PickupLocation        string   `json:"pickupLocation"`
	DropoffLocation       string   `json:"dropoffLocation"`
	CurrentCycleUsedHours *float64 `json:"currentCycleUsedHours"`
}

// PlanRequest converts the body to a trip request. A missing cycle value is
// reported as a field error.
func (r TripPlanRequest) PlanRequest() (trip.PlanRequest, []FieldError) {
	if r.CurrentCycleUsedHours == nil {
		return trip.PlanRequest{}, []FieldError{
			{Field: "currentCycleUsedHours", Message: "is required", Code: "REQUIRED"},
		}
	}
	return trip.PlanRequest{
		CurrentLocation:       r.CurrentLocation,
		PickupLocation:        r.PickupLocation,
		DropoffLocation:       r.DropoffLocation,
		CurrentCycleUsedHours: *r.CurrentCycleUsedHours,
	}, nil
}

// TripPlan is the response for a planned trip.
type TripPlan struct {
	ID          string      `json:"id"`
	CreatedAt   Timestamp   `json:"createdAt"`
	TripSummary TripSummary `json:"tripSummary"`
	ELDSchedule Schedule    `json:"eldSchedule"`
	Compliance  Compliance  `json:"compliance"`
}

// TripSummary describes the routed trip.
type TripSummary struct {
	TotalDistance float64        `json:"totalDistance"` // miles
	TotalDuration float64        `json:"totalDuration"` // hours
	RouteGeometry string         `json:"routeGeometry"`
	Waypoints     []Waypoint     `json:"waypoints"`
	Bounds        *[2][2]float64 `json:"bounds,omitempty"`
	Legs          []Leg          `json:"legs,omitempty"`
	Provider      string         `json:"provider,omitempty"`
}

// Waypoint is a resolved stop. Coordinates are [lon, lat].
type Waypoint struct {
	Type        string     `json:"type"`
	Address     string     `json:"address"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Leg is the drive between two consecutive stops.
type Leg struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DistanceMiles float64 `json:"distanceMiles"`
	DurationHours float64 `json:"durationHours"`
	Steps         []Step  `json:"steps,omitempty"`
}

// Step is one driving instruction.
type Step struct {
	Instruction   string  `json:"instruction"`
	Name          string  `json:"name,omitempty"`
	DistanceMiles float64 `json:"distanceMiles"`
	DurationHours float64 `json:"durationHours"`
}

// NewTripPlan converts a trip plan.
func NewTripPlan(p *trip.Plan) TripPlan {
	schedule := NewSchedule(p.Schedule)
	return TripPlan{
		ID:          p.ID,
		CreatedAt:   Timestamp(p.CreatedAt),
		TripSummary: newTripSummary(p.Route),
		ELDSchedule: schedule,
		Compliance:  schedule.ComplianceStatus,
	}
}

func newTripSummary(s trip.Summary) TripSummary {
	out := TripSummary{
		TotalDistance: round2(s.DistanceMiles),
		TotalDuration: round2(s.DurationHours),
		RouteGeometry: s.Geometry,
		Waypoints:     make([]Waypoint, 0, len(s.Waypoints)),
		Provider:      s.Provider,
	}

	if s.Bounds != nil {
		b := [2][2]float64(*s.Bounds)
		out.Bounds = &b
	}

	for _, wp := range s.Waypoints {
		out.Waypoints = append(out.Waypoints, Waypoint{
			Type:        wp.Role,
			Address:     wp.Address,
			Coordinates: [2]float64{wp.Coordinate.Lon, wp.Coordinate.Lat},
		})
	}

	for _, leg := range s.Legs {
		l := Leg{
			From:          leg.From,
			To:            leg.To,
			DistanceMiles: round2(leg.DistanceMiles),
			DurationHours: round2(leg.DurationHours),
		}
		for _, st := range leg.Steps {
			l.Steps = append(l.Steps, Step{
				Instruction:   st.Instruction,
				Name:          st.Name,
				DistanceMiles: round2(st.DistanceMiles),
				DurationHours: round2(st.DurationHours),
			})
		}
		out.Legs = append(out.Legs, l)
	}

	return out
}
