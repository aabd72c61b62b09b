package hos

import "gonum.org/v1/gonum/floats"

// TripRequest holds the trip totals and the driver's current cycle usage.
type TripRequest struct {
	TotalDistanceMiles    float64
	TotalDurationHours    float64
	CurrentCycleUsedHours float64
}

// Validate rejects inputs the engine cannot plan.
// A cycle usage above the cycle limit is not rejected here; it surfaces as
// ErrCapacityExhausted during the capacity step.
func (r TripRequest) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"totalDistanceMiles", r.TotalDistanceMiles},
		{"totalDurationHours", r.TotalDurationHours},
		{"currentCycleUsedHours", r.CurrentCycleUsedHours},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return invalidInput(f.name, f.name+" must be a finite number")
		}
		if f.value < 0 {
			return invalidInput(f.name, f.name+" must not be negative")
		}
	}

	if r.TotalDurationHours == 0 && r.TotalDistanceMiles > 0 {
		return invalidInput("totalDurationHours", "totalDurationHours is zero but totalDistanceMiles is not")
	}

	return nil
}

// EventKind identifies the activity of a timeline event.
type EventKind string

const (
	// EventDriving is a driving segment.
	EventDriving EventKind = "driving"
	// EventRestBreak is the mandatory rest break.
	EventRestBreak EventKind = "rest_break"
	// EventFuelStop is a fuel stop.
	EventFuelStop EventKind = "fuel_stop"
)

// BreakEvent is a rest break required on a driving day.
type BreakEvent struct {
	DurationHours float64
	Reason        string
}

// FuelStopEvent is a fuel stop required on a driving day.
type FuelStopEvent struct {
	Number        int
	DurationHours float64
	Reason        string
}

// DayPlan is one driving day as produced by allocation.
type DayPlan struct {
	DayIndex      int // 1-based
	DrivingHours  float64
	DistanceMiles float64
	Breaks        []BreakEvent
	FuelStops     []FuelStopEvent

	// EstimatedOnDutyHours is the aggregate estimate made during allocation.
	// DetailedDayPlan.TotalOnDutyHours supersedes it.
	EstimatedOnDutyHours float64
}

// TimelineEvent is one activity on a driving day's clock.
// Times are hours on a per-day clock starting at Rules.ShiftStartHour.
type TimelineEvent struct {
	Kind          EventKind
	StartHour     float64
	EndHour       float64
	DurationHours float64
	Description   string
}

// DetailedDayPlan is a DayPlan enriched with its simulated timeline.
type DetailedDayPlan struct {
	DayPlan
	Timeline         []TimelineEvent
	TotalOnDutyHours float64
}

// OffDutyPlan is the mandatory rest following a driving day.
// DayIndex is the index of the driving day it follows.
type OffDutyPlan struct {
	DayIndex      int
	DurationHours float64
	Reason        string
}

// Capacity is the driving budget derived from the cycle balance.
type Capacity struct {
	AvailableCycleHours   float64
	AvailableDailyDriving float64
	DaysNeeded            int
}

// Compliance is the cycle-limit verdict for a schedule.
type Compliance struct {
	IsCompliant         bool
	TotalCycleHoursUsed float64
	CycleLimit          float64
	RemainingCycleHours float64
}

// EntryKind discriminates schedule entries.
type EntryKind string

const (
	// EntryDriving marks a driving day.
	EntryDriving EntryKind = "driving"
	// EntryOffDuty marks an off-duty period.
	EntryOffDuty EntryKind = "off_duty"
)

// Entry is one element of the ordered schedule: exactly one of Day or OffDuty is set.
type Entry struct {
	Kind    EntryKind
	Day     *DetailedDayPlan
	OffDuty *OffDutyPlan
}

// Schedule is the engine's result for one trip.
type Schedule struct {
	Capacity
	Days       []DetailedDayPlan
	OffDuty    []OffDutyPlan
	Compliance Compliance
}

// Entries returns driving days and off-duty periods in schedule order.
// The off-duty period after day N sits between day N and day N+1.
func (s *Schedule) Entries() []Entry {
	entries := make([]Entry, 0, len(s.Days)+len(s.OffDuty))
	for i := range s.Days {
		entries = append(entries, Entry{Kind: EntryDriving, Day: &s.Days[i]})
		if i < len(s.OffDuty) {
			entries = append(entries, Entry{Kind: EntryOffDuty, OffDuty: &s.OffDuty[i]})
		}
	}
	return entries
}

// TotalDrivingHours sums driving hours across all driving days.
func (s *Schedule) TotalDrivingHours() float64 {
	return floats.Sum(drivingHours(s.Days))
}

func drivingHours(days []DetailedDayPlan) []float64 {
	hours := make([]float64, len(days))
	for i := range days {
		hours[i] = days[i].DrivingHours
	}
	return hours
}
