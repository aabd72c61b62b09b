package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api/middleware"
	"github.com/eldroute/eldroute/internal/api/models"
	"github.com/eldroute/eldroute/internal/api/response"
	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/internal/trip"
)

// providerRetryAfter is the Retry-After hint when the routing provider rate limits us.
const providerRetryAfter = 30

// writeError maps a planning error to its problem response. Unclassified
// errors are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var (
		validationErr *trip.ValidationError
		hosErr        *hos.Error
	)
	isScheduleErr := errors.As(err, &hosErr)

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "request validation failed", []models.FieldError{
			{Field: validationErr.Field, Message: validationErr.Message, Code: "INVALID"},
		})

	case isScheduleErr && errors.Is(err, hos.ErrInvalidInput):
		response.BadRequest(w, r, "trip input cannot be planned", []models.FieldError{
			{Field: hosErr.Field, Message: hosErr.Message, Code: hosErr.Code},
		})

	case errors.Is(err, hos.ErrCapacityExhausted), errors.Is(err, hos.ErrDegenerateAllocation),
		errors.Is(err, hos.ErrTripTooLong):
		detail := err.Error()
		if isScheduleErr {
			detail = hosErr.Message
		}
		response.Unprocessable(w, r, models.ProblemTypeUnschedulable, detail, nil)

	case errors.Is(err, routing.ErrAddressNotFound), errors.Is(err, routing.ErrNoRouteFound):
		response.Unprocessable(w, r, models.ProblemTypeUnroutable, routingDetail(err), nil)

	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, routingDetail(err), nil)

	case errors.Is(err, routing.ErrRateLimitExceeded):
		response.TooManyRequests(w, r, "routing provider rate limit exceeded", providerRetryAfter)

	case errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "routing provider is unavailable")

	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("unhandled planning error")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

func routingDetail(err error) string {
	var routingErr *routing.Error
	if errors.As(err, &routingErr) && routingErr.Message != "" {
		return routingErr.Message
	}
	return err.Error()
}
