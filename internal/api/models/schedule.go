package models

import (
	"github.com/eldroute/eldroute/internal/hos"
)

// ScheduleComputeRequest is the body of POST /v1/schedules:compute.
// Pointer fields distinguish a missing value from zero.
type ScheduleComputeRequest struct {
	TotalDistanceMiles    *float64 `json:"totalDistanceMiles"`
	TotalDurationHours    *float64 `json:"totalDurationHours"`
	CurrentCycleUsedHours *float64 `json:"currentCycleUsedHours"`
}

// Validate reports missing fields. Range checks belong to the engine.
func (r ScheduleComputeRequest) Validate() []FieldError {
	var errs []FieldError
	if r.TotalDistanceMiles == nil {
		errs = append(errs, FieldError{Field: "totalDistanceMiles", Message: "is required", Code: "REQUIRED"})
	}
	if r.TotalDurationHours == nil {
		errs = append(errs, FieldError{Field: "totalDurationHours", Message: "is required", Code: "REQUIRED"})
	}
	if r.CurrentCycleUsedHours == nil {
		errs = append(errs, FieldError{Field: "currentCycleUsedHours", Message: "is required", Code: "REQUIRED"})
	}
	return errs
}

// TripRequest converts the validated body to engine input.
func (r ScheduleComputeRequest) TripRequest() hos.TripRequest {
	return hos.TripRequest{
		TotalDistanceMiles:    *r.TotalDistanceMiles,
		TotalDurationHours:    *r.TotalDurationHours,
		CurrentCycleUsedHours: *r.CurrentCycleUsedHours,
	}
}

// Schedule is the serialized engine result.
type Schedule struct {
	DaysNeeded            int             `json:"daysNeeded"`
	AvailableCycleHours   float64         `json:"availableCycleHours"`
	AvailableDailyDriving float64         `json:"availableDailyDriving"`
	Entries               []ScheduleEntry `json:"schedule"`
	ComplianceStatus      Compliance      `json:"complianceStatus"`
}

// ScheduleEntry is either a DrivingDay or an OffDutyPeriod.
type ScheduleEntry interface {
	EntryType() string
}

// DrivingDay is a driving day with its breaks, fuel stops and timeline.
type DrivingDay struct {
	Type             string          `json:"type"`
	Day              int             `json:"day"`
	DrivingHours     float64         `json:"drivingHours"`
	DistanceMiles    float64         `json:"distanceMiles"`
	Breaks           []Stop          `json:"breaks"`
	FuelStops        []Stop          `json:"fuelStops"`
	TotalOnDutyHours float64         `json:"totalOnDutyHours"`
	Timeline         []TimelineEvent `json:"timeline"`
}

// EntryType implements ScheduleEntry.
func (d DrivingDay) EntryType() string { return d.Type }

// OffDutyPeriod is the rest following driving day Day.
type OffDutyPeriod struct {
	Type     string  `json:"type"`
	Day      int     `json:"day"`
	Duration float64 `json:"duration"`
	Reason   string  `json:"reason"`
}

// EntryType implements ScheduleEntry.
func (o OffDutyPeriod) EntryType() string { return o.Type }

// Stop is a rest break or fuel stop.
type Stop struct {
	Type       string  `json:"type"`
	StopNumber int     `json:"stopNumber,omitempty"`
	Duration   float64 `json:"duration"`
	Reason     string  `json:"reason"`
}

// TimelineEvent is one activity on a day's clock.
type TimelineEvent struct {
	Type        string  `json:"type"`
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
}

// Compliance is the cycle-limit verdict.
type Compliance struct {
	IsCompliant         bool    `json:"isCompliant"`
	TotalCycleHoursUsed float64 `json:"totalCycleHoursUsed"`
	CycleLimit          float64 `json:"cycleLimit"`
	RemainingCycleHours float64 `json:"remainingCycleHours"`
}

// NewSchedule converts an engine schedule, rounding every number to 2 decimals.
func NewSchedule(s *hos.Schedule) Schedule {
	out := Schedule{
		DaysNeeded:            s.DaysNeeded,
		AvailableCycleHours:   round2(s.AvailableCycleHours),
		AvailableDailyDriving: round2(s.AvailableDailyDriving),
		Entries:               make([]ScheduleEntry, 0, len(s.Days)+len(s.OffDuty)),
		ComplianceStatus:      NewCompliance(s.Compliance),
	}

	for _, e := range s.Entries() {
		switch e.Kind {
		case hos.EntryDriving:
			out.Entries = append(out.Entries, newDrivingDay(e.Day))
		case hos.EntryOffDuty:
			out.Entries = append(out.Entries, OffDutyPeriod{
				Type:     string(hos.EntryOffDuty),
				Day:      e.OffDuty.DayIndex,
				Duration: round2(e.OffDuty.DurationHours),
				Reason:   e.OffDuty.Reason,
			})
		}
	}

	return out
}

// NewCompliance converts a compliance verdict.
func NewCompliance(c hos.Compliance) Compliance {
	return Compliance{
		IsCompliant:         c.IsCompliant,
		TotalCycleHoursUsed: round2(c.TotalCycleHoursUsed),
		CycleLimit:          round2(c.CycleLimit),
		RemainingCycleHours: round2(c.RemainingCycleHours),
	}
}

func newDrivingDay(d *hos.DetailedDayPlan) DrivingDay {
	day := DrivingDay{
		Type:             string(hos.EntryDriving),
		Day:              d.DayIndex,
		DrivingHours:     round2(d.DrivingHours),
		DistanceMiles:    round2(d.DistanceMiles),
		Breaks:           make([]Stop, 0, len(d.Breaks)),
		FuelStops:        make([]Stop, 0, len(d.FuelStops)),
		TotalOnDutyHours: round2(d.TotalOnDutyHours),
		Timeline:         make([]TimelineEvent, 0, len(d.Timeline)),
	}

	for _, b := range d.Breaks {
		day.Breaks = append(day.Breaks, Stop{
			Type:     string(hos.EventRestBreak),
			Duration: round2(b.DurationHours),
			Reason:   b.Reason,
		})
	}
	for _, f := range d.FuelStops {
		day.FuelStops = append(day.FuelStops, Stop{
			Type:       string(hos.EventFuelStop),
			StopNumber: f.Number,
			Duration:   round2(f.DurationHours),
			Reason:     f.Reason,
		})
	}
	for _, ev := range d.Timeline {
		day.Timeline = append(day.Timeline, TimelineEvent{
			Type:        string(ev.Kind),
			StartTime:   round2(ev.StartHour),
			EndTime:     round2(ev.EndHour),
			Duration:    round2(ev.DurationHours),
			Description: ev.Description,
		})
	}

	return day
}
