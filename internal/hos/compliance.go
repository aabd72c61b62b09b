package hos

import "gonum.org/v1/gonum/floats"

// EvaluateCompliance checks the trip against the rolling cycle limit.
// Only driving hours count toward the cycle here; the daily duty limit is
// not consulted.
func EvaluateCompliance(days []DetailedDayPlan, req TripRequest, rules Rules) Compliance {
	used := req.CurrentCycleUsedHours + floats.Sum(drivingHours(days))

	return Compliance{
		IsCompliant:         used <= rules.CycleLimit,
		TotalCycleHoursUsed: used,
		CycleLimit:          rules.CycleLimit,
		RemainingCycleHours: rules.CycleLimit - used,
	}
}
