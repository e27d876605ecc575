package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-sim/internal/domain/cart"
	"github.com/xenking/storefront-sim/internal/domain/checkout"
	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/pkg/httpmiddleware"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrNotInCart),
		errors.Is(err, customer.ErrNotWishlisted):
		return http.StatusNotFound
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, product.ErrDuplicate),
		errors.Is(err, customer.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, errInvalidInput),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidRating),
		errors.Is(err, order.ErrUnknownStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// failureReason labels checkout failures in metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, customer.ErrNotFound):
		return "customer_not_found"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, product.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "other"
	}
}

// fail writes err as a JSON error. Internal errors are logged and their text
// is not exposed.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Handler error", zap.Error(err))
		msg = "internal error"
	}
	httpmiddleware.WriteError(w, status, msg)
}
