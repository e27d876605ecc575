package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront-sim/internal/domain/checkout"
	"github.com/xenking/storefront-sim/internal/domain/order"
)

func writeOrders(w http.ResponseWriter, orders []*order.Order) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, orders, encodeOrder) })
}

func writeOrder(w http.ResponseWriter, o *order.Order) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// placeOrder checks out the customer's cart. The body is always an order
// result, with success=false and a mapped status on rejection.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder",
		trace.WithAttributes(attribute.String("customer.id", customerID)),
	)
	defer span.End()

	var payment string
	if err := decodeBody(r, fields{"paymentMethod": str(&payment)}); err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.shop.PlaceOrder(ctx, customerID, payment)
	res := checkout.ResultOf(o, err)
	if err != nil {
		reason := failureReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		h.metrics.checkoutFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))

		status := statusOf(err)
		if status == http.StatusInternalServerError {
			fail(w, r, err)
			return
		}
		writeJSON(w, status, func(e *jx.Encoder) { encodeResult(e, res) })
		return
	}

	span.SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int("order.items", o.TotalItems()),
	)
	h.metrics.ordersPlaced.Add(ctx, 1)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeResult(e, res) })
}

func (h *Handler) customerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.shop.CustomerOrders(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrders(w, orders)
}

// listOrders serves all orders, optionally filtered by ?status=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*order.Order
		err    error
	)
	if v := r.URL.Query().Get("status"); v != "" {
		st, perr := order.ParseStatus(v)
		if perr != nil {
			fail(w, r, perr)
			return
		}
		orders, err = h.shop.OrdersByStatus(r.Context(), st)
	} else {
		orders, err = h.shop.AllOrders(r.Context())
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrders(w, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.shop.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOrder(w, o)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := decodeBody(r, fields{"status": str(&raw)}); err != nil {
		fail(w, r, err)
		return
	}
	if raw == "" {
		fail(w, r, errors.Wrap(errInvalidInput, "status is required"))
		return
	}
	st, err := order.ParseStatus(raw)
	if err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.shop.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), st)
	if err != nil {
		fail(w, r, err)
		return
	}
	if st == order.StatusCancelled {
		h.metrics.ordersCancelled.Add(r.Context(), 1)
	}
	writeOrder(w, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.shop.CancelOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	h.metrics.ordersCancelled.Add(r.Context(), 1)
	writeOrder(w, o)
}
