package models

import (
	"github.com/eldroute/eldroute/internal/provider/resilience"
)

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the circuit-breaker view of an external provider.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}

// NewProviderStatus converts registry health for one provider.
func NewProviderStatus(h *resilience.ProviderHealth) ProviderStatus {
	ps := ProviderStatus{
		Provider:            h.Name,
		Status:              healthStatusOf(h.Status()),
		CircuitState:        h.CircuitState.String(),
		ConsecutiveFailures: h.Counts.ConsecutiveFailures,
	}
	if h.LastSuccessAt != nil {
		ts := Timestamp(*h.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if h.LastFailureAt != nil {
		ts := Timestamp(*h.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if h.LastError != "" {
		msg := h.LastError
		ps.Message = &msg
	}
	return ps
}

func healthStatusOf(status string) HealthStatus {
	switch status {
	case resilience.StatusUnhealthy:
		return HealthStatusFail
	case resilience.StatusDegraded:
		return HealthStatusDegraded
	default:
		return HealthStatusOK
	}
}

// Worst returns the most severe of the given statuses.
func Worst(statuses ...HealthStatus) HealthStatus {
	worst := HealthStatusOK
	for _, s := range statuses {
		switch {
		case s == HealthStatusFail:
			return HealthStatusFail
		case s == HealthStatusDegraded:
			worst = HealthStatusDegraded
		}
	}
	return worst
}
