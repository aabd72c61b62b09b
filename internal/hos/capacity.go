package hos

import (
	"fmt"
	"math"
)

const (
	// daysTolerance is the driving time, in hours, a final day must exceed to
	// be counted, so that 22h at 11h/day is two days rather than three.
	daysTolerance = 1e-9

	// MinDailyDrivingHours is the smallest daily budget worth planning; below
	// it every figure rounds to zero at the 2 decimal output resolution.
	MinDailyDrivingHours = 0.005

	// MaxPlanDays bounds the number of driving days in one schedule.
	MaxPlanDays = 1000
)

// ComputeCapacity derives the cycle balance, the daily driving budget and the
// number of driving days the trip needs.
//
// The daily budget is fixed from the starting cycle balance and reused for
// every day of the trip; it is not recomputed as hours are consumed.
func ComputeCapacity(req TripRequest, rules Rules) (Capacity, error) {
	availableCycle := rules.CycleLimit - req.CurrentCycleUsedHours
	availableDaily := math.Min(rules.DailyDrivingLimit, availableCycle)

	capacity := Capacity{
		AvailableCycleHours:   availableCycle,
		AvailableDailyDriving: availableDaily,
	}

	if availableDaily < MinDailyDrivingHours {
		return capacity, &Error{
			Code:  CodeCapacityExhausted,
			Field: "currentCycleUsedHours",
			Message: fmt.Sprintf("no driving hours left: %.2fh used of a %.2fh cycle",
				req.CurrentCycleUsedHours, rules.CycleLimit),
			Err: ErrCapacityExhausted,
		}
	}

	if req.TotalDurationHours <= 0 {
		return capacity, nil
	}

	days := math.Ceil(req.TotalDurationHours / availableDaily)
	if days > 1 && req.TotalDurationHours-(days-1)*availableDaily <= daysTolerance {
		days--
	}

	if math.IsNaN(days) || days > MaxPlanDays {
		return capacity, &Error{
			Code:  CodeTripTooLong,
			Field: "totalDurationHours",
			Message: fmt.Sprintf("%.2fh of driving at %.2fh per day exceeds %d driving days",
				req.TotalDurationHours, availableDaily, MaxPlanDays),
			Err: ErrTripTooLong,
		}
	}
	capacity.DaysNeeded = max(1, int(days))

	return capacity, nil
}
