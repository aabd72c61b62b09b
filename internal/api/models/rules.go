package models

import "github.com/eldroute/eldroute/internal/hos"

// Rules is the body of GET /v1/rules. The daily duty limit is reported but
// not enforced by the compliance verdict.
type Rules struct {
	hos.Rules
	EnforcedLimits []string `json:"enforcedLimits"`
}

// NewRules wraps the active engine rules.
func NewRules(r hos.Rules) Rules {
	return Rules{
		Rules:          r,
		EnforcedLimits: []string{"dailyDrivingLimit", "cycleLimit"},
	}
}
