package handler

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	ordersPlaced    metric.Int64Counter
	ordersCancelled metric.Int64Counter
	checkoutFailed  metric.Int64Counter
}

func newMetrics(m metric.Meter) (*metrics, error) {
	placed, err := m.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders successfully placed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	cancelled, err := m.Int64Counter("storefront.orders.cancelled",
		metric.WithDescription("Orders cancelled and restocked"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders cancelled counter")
	}
	failed, err := m.Int64Counter("storefront.checkout.failed",
		metric.WithDescription("Rejected checkout attempts by reason"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "checkout failed counter")
	}
	return &metrics{
		ordersPlaced:    placed,
		ordersCancelled: cancelled,
		checkoutFailed:  failed,
	}, nil
}
