package hos

import (
	"fmt"
	"math"
)

// PlanBreaks returns the rest break a day needs: one break when driving
// strictly exceeds the trigger, none otherwise.
func PlanBreaks(drivingHours float64, rules Rules) []BreakEvent {
	if drivingHours <= rules.BreakTriggerHours {
		return nil
	}
	return []BreakEvent{{
		DurationHours: rules.BreakDuration,
		Reason: fmt.Sprintf("Required %s break after %s of driving",
			formatMinutes(rules.BreakDuration), formatHours(rules.BreakTriggerHours)),
	}}
}

// PlanFuelStops returns one stop per full fuel interval covered by the day.
func PlanFuelStops(distanceMiles float64, rules Rules) []FuelStopEvent {
	count := int(math.Floor(distanceMiles / rules.FuelStopIntervalMiles))
	if count <= 0 {
		return nil
	}

	stops := make([]FuelStopEvent, count)
	for i := range stops {
		stops[i] = FuelStopEvent{
			Number:        i + 1,
			DurationHours: rules.FuelStopDuration,
			Reason:        fmt.Sprintf("Fuel stop #%d (every %g miles)", i+1, rules.FuelStopIntervalMiles),
		}
	}
	return stops
}

func formatMinutes(hours float64) string {
	return fmt.Sprintf("%g-minute", hours*60)
}

func formatHours(hours float64) string {
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%g hours", hours)
}
