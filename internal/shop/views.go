package shop

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/cart"
	"github.com/xenking/storefront-sim/internal/domain/customer"
)

// CartLine is a priced cart line at snapshot time.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// CartSnapshot is a read-only copy of a cart with its totals.
type CartSnapshot struct {
	CustomerID      string
	Lines           []CartLine
	TotalItems      int
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

func snapshotCart(c *cart.Cart) *CartSnapshot {
	lines := c.Lines()
	out := &CartSnapshot{
		CustomerID:      c.CustomerID(),
		Lines:           make([]CartLine, len(lines)),
		TotalItems:      c.TotalItems(),
		Subtotal:        c.Subtotal(),
		DiscountPercent: c.DiscountPercent(),
		Discount:        c.DiscountAmount(),
		Total:           c.Total(),
	}
	for i, l := range lines {
		out.Lines[i] = CartLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		}
	}
	return out
}

// CustomerSummary is a read-only view of a customer.
type CustomerSummary struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	Address           string
	TotalOrders       int
	TotalSpent        decimal.Decimal
	Wishlist          []string
	PurchasedProducts []string
}

func summarize(c *customer.Customer) *CustomerSummary {
	return &CustomerSummary{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		TotalOrders:       c.TotalOrders(),
		TotalSpent:        c.TotalSpent(),
		Wishlist:          c.Wishlist(),
		PurchasedProducts: c.PurchasedProducts(),
	}
}
