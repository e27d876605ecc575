package checkout

import (
	"github.com/go-faster/errors"

	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
)

// Result is the user-facing outcome of a checkout attempt.
type Result struct {
	Success bool
	Message string
	Order   *order.Order
}

// ResultOf renders the outcome of PlaceOrder for display.
func ResultOf(o *order.Order, err error) Result {
	if err == nil {
		return Result{Success: true, Message: "Order placed successfully!", Order: o}
	}

	var stockErr *product.InsufficientStockError
	switch {
	case errors.Is(err, customer.ErrNotFound):
		return Result{Message: "Customer not found"}
	case errors.Is(err, ErrEmptyCart):
		return Result{Message: "Cart is empty"}
	case errors.As(err, &stockErr):
		return Result{Message: "Insufficient stock for: " + stockErr.Name}
	default:
		return Result{Message: err.Error()}
	}
}
