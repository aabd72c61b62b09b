package trip

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/routing"
)

type metrics struct {
	plans          metric.Int64Counter
	engineFailures metric.Int64Counter
	days           metric.Int64Histogram
	duration       metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	plans, err := meter.Int64Counter(
		"eldroute.trip.plans",
		metric.WithDescription("Trip plan requests by outcome"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return nil, err
	}

	engineFailures, err := meter.Int64Counter(
		"eldroute.schedule.failures",
		metric.WithDescription("Schedule engine failures by error code"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	days, err := meter.Int64Histogram(
		"eldroute.schedule.days",
		metric.WithDescription("Driving days per planned schedule"),
		metric.WithUnit("{day}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 7, 10, 14),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"eldroute.trip.plan.duration",
		metric.WithDescription("Time spent planning a trip, including provider calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		plans:          plans,
		engineFailures: engineFailures,
		days:           days,
		duration:       duration,
	}, nil
}

func (m *metrics) recordPlan(ctx context.Context, plan *Plan, err error, elapsed time.Duration) {
	outcome := planOutcome(plan, err)
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	m.plans.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if plan != nil {
		m.days.Record(ctx, int64(plan.Schedule.DaysNeeded))
	}
}

func planOutcome(plan *Plan, err error) string {
	var hosErr *hos.Error
	var routingErr *routing.Error

	switch {
	case err == nil && plan.Schedule.Compliance.IsCompliant:
		return "compliant"
	case err == nil:
		return "non_compliant"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.As(err, &routingErr):
		return "routing_error"
	case errors.As(err, &hosErr):
		return "schedule_error"
	default:
		return "error"
	}
}
