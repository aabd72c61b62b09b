package hos

import "errors"

// Sentinel errors for schedule planning.
var (
	// ErrInvalidInput indicates trip totals that cannot be planned (negative, non-finite or ambiguous).
	ErrInvalidInput = errors.New("invalid trip input")
	// ErrCapacityExhausted indicates the driver has no driving hours left in the cycle.
	ErrCapacityExhausted = errors.New("cycle capacity exhausted")
	// ErrDegenerateAllocation indicates a day was reached with no duration left to allocate.
	ErrDegenerateAllocation = errors.New("degenerate day allocation")
	// ErrTripTooLong indicates the trip needs more than MaxPlanDays driving days.
	ErrTripTooLong = errors.New("trip exceeds the planning horizon")
)

// Error codes reported alongside the sentinel errors.
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeCapacityExhausted    = "CAPACITY_EXHAUSTED"
	CodeDegenerateAllocation = "DEGENERATE_ALLOCATION"
	CodeTripTooLong          = "TRIP_TOO_LONG"
)

// Error describes why no schedule could be produced.
type Error struct {
	Code    string // Stable machine-readable code
	Field   string // Offending input field, if any
	Message string // Human-readable detail
	Err     error  // One of the sentinel errors
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidInput(field, message string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Field:   field,
		Message: message,
		Err:     ErrInvalidInput,
	}
}
