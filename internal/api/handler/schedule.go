package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/api/response"
	"github.com/eldroute/eldroute/internal/hos"
)

// ScheduleHandler exposes the schedule engine directly.
type ScheduleHandler struct {
	engine *hos.Engine
	logger zerolog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(engine *hos.Engine, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{engine: engine, logger: logger}
}

// ComputeSchedule handles POST /v1/schedules:compute.
func (h *ScheduleHandler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	var body models.ScheduleComputeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if fieldErrs := body.Validate(); len(fieldErrs) > 0 {
		response.BadRequest(w, r, "request validation failed", fieldErrs)
		return
	}

	schedule, err := h.engine.Plan(body.TripRequest())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewSchedule(schedule))
}

// GetRules handles GET /v1/rules.
func (h *ScheduleHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.NewRules(h.engine.Rules()))
}
