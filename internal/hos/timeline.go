package hos

import "fmt"

// drivingBlockHours is the granularity of driving segments on a day's timeline.
const drivingBlockHours = 4

// SplitDriving splits a day's driving into segments: up to one block drives
// straight through, up to two blocks is halved, anything longer is two full
// blocks followed by the remainder.
func SplitDriving(drivingHours float64) []float64 {
	switch {
	case drivingHours <= drivingBlockHours:
		return []float64{drivingHours}
	case drivingHours <= 2*drivingBlockHours:
		half := drivingHours / 2
		return []float64{half, half}
	default:
		return []float64{drivingBlockHours, drivingBlockHours, drivingHours - 2*drivingBlockHours}
	}
}

// SimulateDay lays a driving day out on its clock and returns the enriched
// plan. The input plan is left untouched.
//
// A rest break is inserted once, right after the segment on which cumulative
// driving first reaches the break trigger. Fuel stops follow the last segment.
func SimulateDay(plan DayPlan, rules Rules) DetailedDayPlan {
	segments := SplitDriving(plan.DrivingHours)
	timeline := make([]TimelineEvent, 0, len(segments)+1+len(plan.FuelStops))

	clock := rules.ShiftStartHour
	driven := 0.0
	breakTaken := false

	for i, segment := range segments {
		timeline = append(timeline, TimelineEvent{
			Kind:          EventDriving,
			StartHour:     clock,
			EndHour:       clock + segment,
			DurationHours: segment,
			Description:   fmt.Sprintf("Driving segment %d", i+1),
		})
		clock += segment
		driven += segment

		if !breakTaken && driven >= rules.BreakTriggerHours {
			timeline = append(timeline, TimelineEvent{
				Kind:          EventRestBreak,
				StartHour:     clock,
				EndHour:       clock + rules.BreakDuration,
				DurationHours: rules.BreakDuration,
				Description:   formatMinutes(rules.BreakDuration) + " rest break",
			})
			clock += rules.BreakDuration
			breakTaken = true
		}
	}

	for i, stop := range plan.FuelStops {
		timeline = append(timeline, TimelineEvent{
			Kind:          EventFuelStop,
			StartHour:     clock,
			EndHour:       clock + stop.DurationHours,
			DurationHours: stop.DurationHours,
			Description:   fmt.Sprintf("Fuel stop %d", i+1),
		})
		clock += stop.DurationHours
	}

	return DetailedDayPlan{
		DayPlan:          cloneDayPlan(plan),
		Timeline:         timeline,
		TotalOnDutyHours: clock - rules.ShiftStartHour,
	}
}

func cloneDayPlan(plan DayPlan) DayPlan {
	cpy := plan
	cpy.Breaks = append([]BreakEvent(nil), plan.Breaks...)
	cpy.FuelStops = append([]FuelStopEvent(nil), plan.FuelStops...)
	return cpy
}
