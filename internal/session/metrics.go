package session

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics counts session and checkout outcomes.
type Metrics struct {
	sessionsCreated metric.Int64Counter
	ordersPlaced    metric.Int64Counter
	paymentFailures metric.Int64Counter
	orderFailures   metric.Int64Counter
}

// NewMetrics registers the counters. A nil provider disables metrics.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("storefront/session")

	var (
		m   Metrics
		err error
	)
	if m.sessionsCreated, err = meter.Int64Counter("storefront.sessions.created",
		metric.WithDescription("Checkout sessions created"),
	); err != nil {
		return nil, errors.Wrap(err, "sessions created counter")
	}
	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders created from a confirmed payment"),
	); err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	if m.paymentFailures, err = meter.Int64Counter("storefront.payments.failed",
		metric.WithDescription("Payment confirmations that failed"),
	); err != nil {
		return nil, errors.Wrap(err, "payment failures counter")
	}
	if m.orderFailures, err = meter.Int64Counter("storefront.orders.failed",
		metric.WithDescription("Order creations that failed after payment"),
	); err != nil {
		return nil, errors.Wrap(err, "order failures counter")
	}
	return &m, nil
}

func (m *Metrics) sessionCreated(ctx context.Context) {
	m.sessionsCreated.Add(ctx, 1)
}

func (m *Metrics) orderPlaced(ctx context.Context) {
	m.ordersPlaced.Add(ctx, 1)
}

func (m *Metrics) paymentFailed(ctx context.Context) {
	m.paymentFailures.Add(ctx, 1)
}

func (m *Metrics) orderFailed(ctx context.Context) {
	m.orderFailures.Add(ctx, 1)
}
