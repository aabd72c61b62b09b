// Package hos computes Hours-of-Service compliant driving schedules.
package hos

import (
	"fmt"
	"math"
)

// Rules is the set of regulatory constants the engine plans against.
// A Rules value is never mutated after construction; share it freely.
type Rules struct {
	// DailyDrivingLimit is the maximum driving hours per day.
	DailyDrivingLimit float64 `json:"dailyDrivingLimit"`

	// DailyDutyLimit is the maximum on-duty hours per day.
	// It is declared and validated but not part of the compliance verdict.
	DailyDutyLimit float64 `json:"dailyDutyLimit"`

	// CycleLimit is the maximum cumulative on-duty hours in the rolling cycle.
	CycleLimit float64 `json:"cycleLimit"`

	// BreakTriggerHours is the continuous driving after which a rest break is mandatory.
	BreakTriggerHours float64 `json:"breakTriggerHours"`

	// BreakDuration is the length of the mandatory rest break in hours.
	BreakDuration float64 `json:"breakDuration"`

	// OffDutyDuration is the mandatory rest between driving days in hours.
	OffDutyDuration float64 `json:"offDutyDuration"`

	// FuelStopIntervalMiles is the distance between mandatory fuel stops.
	FuelStopIntervalMiles float64 `json:"fuelStopIntervalMiles"`

	// FuelStopDuration is the on-duty time charged for each fuel stop in hours.
	FuelStopDuration float64 `json:"fuelStopDuration"`

	// ShiftStartHour is where the per-day timeline clock starts.
	ShiftStartHour float64 `json:"shiftStartHour"`
}

// DefaultRules returns the U.S. property-carrying defaults.
func DefaultRules() Rules {
	return Rules{
		DailyDrivingLimit:     11,
		DailyDutyLimit:        14,
		CycleLimit:            70,
		BreakTriggerHours:     8,
		BreakDuration:         0.5,
		OffDutyDuration:       10,
		FuelStopIntervalMiles: 1000,
		FuelStopDuration:      0.5,
		ShiftStartHour:        8,
	}
}

// Validate checks that every constant is usable for planning.
func (r Rules) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"dailyDrivingLimit", r.DailyDrivingLimit},
		{"dailyDutyLimit", r.DailyDutyLimit},
		{"cycleLimit", r.CycleLimit},
		{"breakTriggerHours", r.BreakTriggerHours},
		{"breakDuration", r.BreakDuration},
		{"offDutyDuration", r.OffDutyDuration},
		{"fuelStopIntervalMiles", r.FuelStopIntervalMiles},
		{"fuelStopDuration", r.FuelStopDuration},
	}
	for _, p := range positive {
		if !isFinite(p.value) || p.value <= 0 {
			return fmt.Errorf("rules: %s must be a positive number, got %v", p.name, p.value)
		}
	}

	if !isFinite(r.ShiftStartHour) || r.ShiftStartHour < 0 || r.ShiftStartHour >= 24 {
		return fmt.Errorf("rules: shiftStartHour must be in [0, 24), got %v", r.ShiftStartHour)
	}

	if r.DailyDrivingLimit > r.DailyDutyLimit {
		return fmt.Errorf("rules: dailyDrivingLimit %v exceeds dailyDutyLimit %v",
			r.DailyDrivingLimit, r.DailyDutyLimit)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
