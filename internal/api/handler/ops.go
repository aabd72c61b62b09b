package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/api/response"
	"github.com/eldroute/eldroute/internal/provider/resilience"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency that can report reachability, such as a *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig holds the dependencies reported by the ops endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string
	Registry  *resilience.Registry // optional
	Database  Pinger               // optional; nil when the geocode cache is in memory
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	database  Pinger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		database:  cfg.Database,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"service":   "ELD Route Planner API",
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It fails when the database is
// configured but unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	db := h.databaseStatus(r.Context())

	status := http.StatusOK
	if db.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, r, status, models.Health{
		Status:  db.Status,
		Time:    models.Timestamp(time.Now()),
		Details: map[string]interface{}{db.Name: db},
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	db := h.databaseStatus(r.Context())

	status := models.SystemStatus{
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{db},
		Providers:  []models.ProviderStatus{},
	}

	statuses := []models.HealthStatus{db.Status}
	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			ps := models.NewProviderStatus(health)
			status.Providers = append(status.Providers, ps)
			statuses = append(statuses, ps.Status)
		}
	}
	status.Status = models.Worst(statuses...)

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) databaseStatus(ctx context.Context) models.SubsystemStatus {
	sub := models.SubsystemStatus{Name: "database", Status: models.HealthStatusOK}
	if h.database == nil {
		detail := "not configured; geocode cache is in memory"
		sub.Detail = &detail
		return sub
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.database.Ping(ctx); err != nil {
		detail := err.Error()
		sub.Status = models.HealthStatusFail
		sub.Detail = &detail
	}
	return sub
}
