package hos

import "fmt"

// Engine plans schedules against a fixed set of rules.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules Rules
}

// NewEngine creates an engine after validating the rules.
func NewEngine(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return &Engine{rules: rules}, nil
}

// Rules returns the rules the engine plans against.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Plan builds the full schedule for a trip: capacity, day allocation,
// per-day timelines and the compliance verdict. Any failure is returned as
// an *Error and no partial schedule is produced.
func (e *Engine) Plan(req TripRequest) (*Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	capacity, err := ComputeCapacity(req, e.rules)
	if err != nil {
		return nil, err
	}

	alloc, err := AllocateDays(req, capacity, e.rules)
	if err != nil {
		return nil, err
	}

	days := make([]DetailedDayPlan, len(alloc.Days))
	for i, day := range alloc.Days {
		days[i] = SimulateDay(day, e.rules)
	}

	return &Schedule{
		Capacity:   capacity,
		Days:       days,
		OffDuty:    alloc.OffDuty,
		Compliance: EvaluateCompliance(days, req, e.rules),
	}, nil
}
