// Package checkout turns carts into orders and drives order status changes
// that affect inventory.
//
// Engine is not safe for concurrent use. The whole of PlaceOrder must run
// under the same lock that guards catalog reads, or stock checks and stock
// decrements may observe different snapshots.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-sim/internal/domain/catalog"
	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
)

// ErrEmptyCart is returned when checking out a cart without lines.
var ErrEmptyCart = errors.New("cart is empty")

// IDGenerator issues unique order IDs.
type IDGenerator interface {
	Next() string
}

// Engine places, advances and cancels orders.
type Engine struct {
	catalog   *catalog.Catalog
	customers customer.Repository
	orders    order.Repository
	ids       IDGenerator
	now       func() time.Time
}

// NewEngine creates an Engine over the given catalog and repositories.
func NewEngine(
	cat *catalog.Catalog,
	customers customer.Repository,
	orders order.Repository,
	ids IDGenerator,
) *Engine {
	return &Engine{
		catalog:   cat,
		customers: customers,
		orders:    orders,
		ids:       ids,
		now:       time.Now,
	}
}

// PlaceOrder commits the customer's cart into a new PENDING order. Every line
// is checked against current stock before anything is mutated, so a failure
// leaves catalog, cart and order index untouched.
func (e *Engine) PlaceOrder(ctx context.Context, customerID, paymentMethod string) (*order.Order, error) {
	c, err := e.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	crt := c.Cart()
	if crt.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Validate the full cart first.
	lines := crt.Lines()
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		p, err := e.catalog.Get(ctx, l.Product.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve product %s", l.Product.ID)
		}
		if !p.Available(l.Quantity) {
			return nil, &product.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: l.Quantity,
				Available: p.Stock,
			}
		}
		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
		})
	}

	o := order.New(order.Draft{
		ID:              e.ids.Next(),
		CustomerID:      c.ID,
		Items:           items,
		Subtotal:        crt.Subtotal(),
		Discount:        crt.DiscountAmount(),
		Total:           crt.Total(),
		ShippingAddress: c.Address,
		PaymentMethod:   paymentMethod,
	}, e.now())

	if err := e.takeStock(ctx, items); err != nil {
		return nil, err
	}
	if err := e.orders.Create(ctx, o); err != nil {
		e.returnStock(ctx, items)
		return nil, errors.Wrap(err, "create order")
	}
	c.AddOrder(o)
	crt.Clear()

	return o, nil
}

// Cancel restocks every line of the order and moves it to CANCELLED. Orders
// that already shipped, were delivered or were cancelled are rejected.
func (e *Engine) Cancel(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanCancel() {
		return nil, &order.TransitionError{From: o.Status, To: order.StatusCancelled}
	}
	for _, it := range o.Items {
		if _, err := e.catalog.Get(ctx, it.ProductID); err != nil {
			return nil, errors.Wrapf(err, "resolve product %s", it.ProductID)
		}
	}

	e.returnStock(ctx, o.Items)
	if err := o.Cancel(e.now()); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves the order to next. Cancellation is routed through
// Cancel so stock is always restored.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, next order.Status) (*order.Order, error) {
	if next == order.StatusCancelled {
		return e.Cancel(ctx, orderID)
	}
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.UpdateStatus(next, e.now()); err != nil {
		return nil, err
	}
	return o, nil
}

// takeStock decrements stock for every item, undoing earlier decrements if a
// later one fails.
func (e *Engine) takeStock(ctx context.Context, items []order.Item) error {
	for i, it := range items {
		if err := e.catalog.ReduceStock(ctx, it.ProductID, it.Quantity); err != nil {
			e.returnStock(ctx, items[:i])
			return errors.Wrapf(err, "reduce stock for %s", it.ProductID)
		}
	}
	return nil
}

func (e *Engine) returnStock(ctx context.Context, items []order.Item) {
	for _, it := range items {
		// Products were resolved by the caller; IncreaseStock cannot fail for
		// positive quantities of existing products.
		_ = e.catalog.IncreaseStock(ctx, it.ProductID, it.Quantity)
	}
}
