package shop

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/cart"
	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/product"
)

// AddToCart adds qty units of productID to the customer's cart.
func (s *Shop) AddToCart(ctx context.Context, customerID, productID string, qty int) error {
	return s.withCartProduct(ctx, customerID, productID, func(c *cart.Cart, p *product.Product) error {
		return c.AddItem(p, qty)
	})
}

// UpdateCartQuantity sets the quantity of productID; qty <= 0 removes it.
func (s *Shop) UpdateCartQuantity(ctx context.Context, customerID, productID string, qty int) error {
	return s.withCartProduct(ctx, customerID, productID, func(c *cart.Cart, p *product.Product) error {
		return c.UpdateQuantity(p, qty)
	})
}

// RemoveFromCart drops productID from the customer's cart.
func (s *Shop) RemoveFromCart(ctx context.Context, customerID, productID string) error {
	return s.withCartProduct(ctx, customerID, productID, func(c *cart.Cart, p *product.Product) error {
		if !c.RemoveItem(p.ID) {
			return cart.ErrNotInCart
		}
		return nil
	})
}

// ApplyDiscount sets the cart discount percentage, clamped to [0, 100].
func (s *Shop) ApplyDiscount(ctx context.Context, customerID string, percent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	c.Cart().ApplyDiscount(percent)
	return nil
}

// ClearCart empties the customer's cart. The discount is kept.
func (s *Shop) ClearCart(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	c.Cart().Clear()
	return nil
}

// Cart returns a priced snapshot of the customer's cart.
func (s *Shop) Cart(ctx context.Context, customerID string) (*CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return snapshotCart(c.Cart()), nil
}

// AddToWishlist records productID on the customer's wishlist.
func (s *Shop) AddToWishlist(ctx context.Context, customerID, productID string) error {
	return s.withCustomerProduct(ctx, customerID, productID, func(c *customer.Customer, p *product.Product) error {
		c.AddToWishlist(p.ID)
		return nil
	})
}

// RemoveFromWishlist drops productID from the customer's wishlist.
func (s *Shop) RemoveFromWishlist(ctx context.Context, customerID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !c.RemoveFromWishlist(productID) {
		return customer.ErrNotWishlisted
	}
	return nil
}

// Wishlist returns the wishlisted products that still exist in the catalog.
func (s *Shop) Wishlist(ctx context.Context, customerID string) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var out []*product.Product
	for _, id := range c.Wishlist() {
		p, err := s.catalog.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Shop) withCartProduct(ctx context.Context, customerID, productID string, fn func(*cart.Cart, *product.Product) error) error {
	return s.withCustomerProduct(ctx, customerID, productID, func(c *customer.Customer, p *product.Product) error {
		return fn(c.Cart(), p)
	})
}

func (s *Shop) withCustomerProduct(ctx context.Context, customerID, productID string, fn func(*customer.Customer, *product.Product) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	return fn(c, p)
}
