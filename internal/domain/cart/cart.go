package cart

import (
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/product"
)

var (
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = product.ErrInvalidQuantity
	// ErrNotInCart is returned when removing a product the cart does not hold.
	ErrNotInCart = errors.New("product not in cart")
)

var hundred = decimal.NewFromInt(100)

// Line is a product selection with a positive quantity. Product points at the
// live catalog entry, so cart totals follow price changes until checkout.
type Line struct {
	Product  *product.Product
	Quantity int
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds a customer's pending selections and a discount percentage.
type Cart struct {
	customerID string
	lines      []Line
	discount   decimal.Decimal
}

// New creates an empty cart for customerID.
func New(customerID string) *Cart {
	return &Cart{customerID: customerID, discount: decimal.Zero}
}

// CustomerID returns the owning customer.
func (c *Cart) CustomerID() string { return c.customerID }

// AddItem adds qty units of p, merging with an existing line. Only qty itself
// is checked against current stock; checkout validates the merged total.
func (c *Cart) AddItem(p *product.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Available(qty) {
		return &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: qty,
			Available: p.Stock,
		}
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: qty})
	return nil
}

// RemoveItem drops the line for productID and reports whether it existed.
func (c *Cart) RemoveItem(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// UpdateQuantity replaces the quantity for p. A non-positive qty removes the
// line; removing a missing line is not an error.
func (c *Cart) UpdateQuantity(p *product.Product, qty int) error {
	if qty <= 0 {
		c.RemoveItem(p.ID)
		return nil
	}
	if !p.Available(qty) {
		return &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: qty,
			Available: p.Stock,
		}
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity = qty
		return nil
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: qty})
	return nil
}

// ApplyDiscount sets the discount percentage, clamped to [0, 100].
func (c *Cart) ApplyDiscount(percent decimal.Decimal) {
	switch {
	case percent.IsNegative():
		percent = decimal.Zero
	case percent.GreaterThan(hundred):
		percent = hundred
	}
	c.discount = percent
}

// DiscountPercent returns the current discount percentage.
func (c *Cart) DiscountPercent() decimal.Decimal { return c.discount }

// Clear empties all lines. The discount is kept.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity returns the quantity held for productID, or 0.
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// TotalItems sums line quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums line subtotals at current prices.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// DiscountAmount is Subtotal times the discount percentage.
func (c *Cart) DiscountAmount() decimal.Decimal {
	return c.Subtotal().Mul(c.discount).Div(hundred)
}

// Total is Subtotal minus DiscountAmount.
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Sub(c.DiscountAmount())
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
