package shop

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/product"
)

// GetProduct returns product id.
func (s *Shop) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// AllProducts returns the whole catalog.
func (s *Shop) AllProducts(ctx context.Context) ([]*product.Product, error) {
	return s.queryProducts(func() ([]*product.Product, error) { return s.catalog.All(ctx) })
}

// ProductsByCategory matches category names case-insensitively.
func (s *Shop) ProductsByCategory(ctx context.Context, category string) ([]*product.Product, error) {
	return s.queryProducts(func() ([]*product.Product, error) { return s.catalog.ByCategory(ctx, category) })
}

// Search matches keyword against name, description and category.
func (s *Shop) Search(ctx context.Context, keyword string) ([]*product.Product, error) {
	return s.queryProducts(func() ([]*product.Product, error) { return s.catalog.Search(ctx, keyword) })
}

// LowStock returns in-stock products at or under their threshold.
func (s *Shop) LowStock(ctx context.Context) ([]*product.Product, error) {
	return s.queryProducts(func() ([]*product.Product, error) { return s.catalog.LowStock(ctx) })
}

// TopRated returns the limit best-rated in-stock products.
func (s *Shop) TopRated(ctx context.Context, limit int) ([]*product.Product, error) {
	return s.queryProducts(func() ([]*product.Product, error) { return s.catalog.TopRated(ctx, limit) })
}

// Categories returns distinct categories in catalog order.
func (s *Shop) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Categories(ctx)
}

// SetPrice changes a product's list price.
func (s *Shop) SetPrice(ctx context.Context, id string, price decimal.Decimal) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.SetPrice(ctx, id, price); err != nil {
		return nil, err
	}
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Restock adds qty units to a product.
func (s *Shop) Restock(ctx context.Context, id string, qty int) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.IncreaseStock(ctx, id, qty); err != nil {
		return nil, err
	}
	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (s *Shop) queryProducts(query func() ([]*product.Product, error)) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, err := query()
	if err != nil {
		return nil, err
	}
	return cloneProducts(ps), nil
}
