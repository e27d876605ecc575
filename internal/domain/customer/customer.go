package customer

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/cart"
	"github.com/xenking/storefront-sim/internal/domain/order"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicate is returned when a customer ID is already registered.
	ErrDuplicate = errors.New("customer already exists")
	// ErrNotWishlisted is returned when removing a product that is not on the
	// wishlist.
	ErrNotWishlisted = errors.New("product not in wishlist")
)

// Customer owns exactly one cart, an append-only order history and a
// wishlist.
type Customer struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string

	cart     *cart.Cart
	orders   []*order.Order
	wishlist map[string]struct{}
}

// New creates a customer with an empty cart.
func New(id, name, email, phone, address string) *Customer {
	return &Customer{
		ID:       id,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Address:  address,
		cart:     cart.New(id),
		wishlist: make(map[string]struct{}),
	}
}

// Cart returns the customer's cart. It is never nil.
func (c *Customer) Cart() *cart.Cart { return c.cart }

// AddOrder appends o to the order history.
func (c *Customer) AddOrder(o *order.Order) {
	c.orders = append(c.orders, o)
}

// Orders returns the order history in placement order.
func (c *Customer) Orders() []*order.Order {
	return slices.Clone(c.orders)
}

// OrdersByStatus returns orders currently in status s.
func (c *Customer) OrdersByStatus(s order.Status) []*order.Order {
	var out []*order.Order
	for _, o := range c.orders {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// PurchasedProducts returns distinct product IDs from delivered orders, in
// the order they were first seen.
func (c *Customer) PurchasedProducts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range c.orders {
		if o.Status != order.StatusDelivered {
			continue
		}
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; ok {
				continue
			}
			seen[it.ProductID] = struct{}{}
			out = append(out, it.ProductID)
		}
	}
	return out
}

// HasPurchased reports whether a delivered order contains productID.
func (c *Customer) HasPurchased(productID string) bool {
	for _, o := range c.orders {
		if o.Status == order.StatusDelivered && o.Contains(productID) {
			return true
		}
	}
	return false
}

// TotalSpent sums totals of non-cancelled orders.
func (c *Customer) TotalSpent() decimal.Decimal {
	sum := decimal.Zero
	for _, o := range c.orders {
		if o.Status != order.StatusCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}

// TotalOrders counts non-cancelled orders.
func (c *Customer) TotalOrders() int {
	n := 0
	for _, o := range c.orders {
		if o.Status != order.StatusCancelled {
			n++
		}
	}
	return n
}

// AddToWishlist records productID. Adding twice is a no-op.
func (c *Customer) AddToWishlist(productID string) {
	c.wishlist[productID] = struct{}{}
}

// RemoveFromWishlist drops productID and reports whether it was present.
func (c *Customer) RemoveFromWishlist(productID string) bool {
	if _, ok := c.wishlist[productID]; !ok {
		return false
	}
	delete(c.wishlist, productID)
	return true
}

// InWishlist reports whether productID is wishlisted.
func (c *Customer) InWishlist(productID string) bool {
	_, ok := c.wishlist[productID]
	return ok
}

// Wishlist returns the wishlisted product IDs, sorted.
func (c *Customer) Wishlist() []string {
	out := make([]string, 0, len(c.wishlist))
	for id := range c.wishlist {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Repository stores customers in registration order.
type Repository interface {
	List(ctx context.Context) ([]*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
}
