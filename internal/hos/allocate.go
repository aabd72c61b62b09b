package hos

import "fmt"

const overnightRestReason = "Overnight rest"

// Allocation is the output of the day allocator: driving days and the
// off-duty periods separating them. OffDuty[i] follows Days[i].
type Allocation struct {
	Days    []DayPlan
	OffDuty []OffDutyPlan
}

// AllocateDays splits the trip into capacity.DaysNeeded driving days.
//
// Each day drives min(AvailableDailyDriving, remaining duration) and covers
// distance in proportion to the share of the remaining duration it consumes.
func AllocateDays(req TripRequest, capacity Capacity, rules Rules) (Allocation, error) {
	if capacity.DaysNeeded < 0 || capacity.DaysNeeded > MaxPlanDays {
		return Allocation{}, &Error{
			Code:    CodeTripTooLong,
			Field:   "totalDurationHours",
			Message: fmt.Sprintf("%d driving days is outside [0, %d]", capacity.DaysNeeded, MaxPlanDays),
			Err:     ErrTripTooLong,
		}
	}

	alloc := Allocation{
		Days:    make([]DayPlan, 0, capacity.DaysNeeded),
		OffDuty: make([]OffDutyPlan, 0, max(0, capacity.DaysNeeded-1)),
	}

	remainingDistance := req.TotalDistanceMiles
	remainingDuration := req.TotalDurationHours

	for day := 1; day <= capacity.DaysNeeded; day++ {
		if remainingDuration <= 0 {
			return Allocation{}, &Error{
				Code: CodeDegenerateAllocation,
				Message: fmt.Sprintf("day %d of %d has no driving left (%.2f miles unallocated)",
					day, capacity.DaysNeeded, remainingDistance),
				Err: ErrDegenerateAllocation,
			}
		}

		dayDriving := min(capacity.AvailableDailyDriving, remainingDuration)
		dayDistance := dayDriving / remainingDuration * remainingDistance

		breaks := PlanBreaks(dayDriving, rules)
		fuelStops := PlanFuelStops(dayDistance, rules)

		alloc.Days = append(alloc.Days, DayPlan{
			DayIndex:             day,
			DrivingHours:         dayDriving,
			DistanceMiles:        dayDistance,
			Breaks:               breaks,
			FuelStops:            fuelStops,
			EstimatedOnDutyHours: estimateOnDuty(dayDriving, breaks, fuelStops, rules),
		})

		remainingDistance -= dayDistance
		remainingDuration -= dayDriving

		if day < capacity.DaysNeeded {
			alloc.OffDuty = append(alloc.OffDuty, OffDutyPlan{
				DayIndex:      day,
				DurationHours: rules.OffDutyDuration,
				Reason:        overnightRestReason,
			})
		}
	}

	return alloc, nil
}

// estimateOnDuty charges each fuel stop the flat servicing cost from rules,
// independent of the stop's own duration field.
func estimateOnDuty(driving float64, breaks []BreakEvent, fuelStops []FuelStopEvent, rules Rules) float64 {
	total := driving
	for _, b := range breaks {
		total += b.DurationHours
	}
	return total + float64(len(fuelStops))*rules.FuelStopDuration
}
