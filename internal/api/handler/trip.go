// Package handler provides HTTP handlers for the ELDRoute API.
package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/api/response"
	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/trip"
)

// Planner plans trips from addresses.
type Planner interface {
	Plan(ctx context.Context, req trip.PlanRequest) (*trip.Plan, error)
}

// TripHandler handles trip endpoints.
type TripHandler struct {
	planner Planner // nil when no routing provider is configured
	engine  *hos.Engine
	logger  zerolog.Logger
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(planner Planner, engine *hos.Engine, logger zerolog.Logger) *TripHandler {
	return &TripHandler{
		planner: planner,
		engine:  engine,
		logger:  logger,
	}
}

// PlanTrip handles POST /v1/trips:plan.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		response.ServiceUnavailable(w, r, "trip planning requires a routing provider; set ORS_API_KEY")
		return
	}

	var body models.TripPlanRequest
	if err := decodeJSON(w, r, &body); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	req, fieldErrs := body.PlanRequest()
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "request validation failed", fieldErrs)
		return
	}

	plan, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewTripPlan(plan))
}

// DemoTrip handles GET /v1/trips/demo.
func (h *TripHandler) DemoTrip(w http.ResponseWriter, r *http.Request) {
	plan, err := trip.DemoPlan(h.engine)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, models.NewTripPlan(plan))
}
