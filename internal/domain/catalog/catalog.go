// Package catalog implements product browsing and stock bookkeeping on top of
// a product.Repository.
//
// Catalog is not safe for concurrent use; callers serialize access.
package catalog

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/product"
)

// Catalog is the sole authority over product stock counts.
type Catalog struct {
	products product.Repository
}

// New creates a Catalog backed by the given repository.
func New(products product.Repository) *Catalog {
	return &Catalog{products: products}
}

// Add registers a new product.
func (c *Catalog) Add(ctx context.Context, p *product.Product) error {
	if p.Price.IsNegative() {
		return product.ErrInvalidPrice
	}
	if p.Stock < 0 {
		return product.ErrInvalidQuantity
	}
	if err := c.products.Create(ctx, p); err != nil {
		return errors.Wrapf(err, "add product %s", p.ID)
	}
	return nil
}

// Get returns the live product for id.
func (c *Catalog) Get(ctx context.Context, id string) (*product.Product, error) {
	return c.products.GetByID(ctx, id)
}

// All returns every product in catalog order.
func (c *Catalog) All(ctx context.Context) ([]*product.Product, error) {
	return c.products.List(ctx)
}

// ByCategory returns products whose category equals name, ignoring case.
func (c *Catalog) ByCategory(ctx context.Context, name string) ([]*product.Product, error) {
	return c.filter(ctx, func(p *product.Product) bool {
		return strings.EqualFold(p.Category, name)
	})
}

// Search returns products whose name, description or category contains
// keyword, ignoring case.
func (c *Catalog) Search(ctx context.Context, keyword string) ([]*product.Product, error) {
	kw := strings.ToLower(keyword)
	return c.filter(ctx, func(p *product.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), kw) ||
			strings.Contains(strings.ToLower(p.Description), kw) ||
			strings.Contains(strings.ToLower(p.Category), kw)
	})
}

// LowStock returns products that are in stock but at or under their threshold.
func (c *Catalog) LowStock(ctx context.Context) ([]*product.Product, error) {
	return c.filter(ctx, (*product.Product).IsLowStock)
}

// TopRated returns in-stock products ordered by average rating, then by review
// count. A non-positive limit returns all of them.
func (c *Catalog) TopRated(ctx context.Context, limit int) ([]*product.Product, error) {
	ranked, err := c.filter(ctx, (*product.Product).InStock)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ranked, CompareRating)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	all, err := c.products.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range all {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

// ReduceStock takes qty units of product id out of stock.
func (c *Catalog) ReduceStock(ctx context.Context, id string, qty int) error {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return p.ReduceStock(qty)
}

// IncreaseStock puts qty units of product id back into stock.
func (c *Catalog) IncreaseStock(ctx context.Context, id string, qty int) error {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return p.IncreaseStock(qty)
}

// AddReview appends r to product id.
func (c *Catalog) AddReview(ctx context.Context, id string, r product.Review) error {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.AddReview(r)
	return nil
}

// SetPrice changes the list price. Placed orders keep their own snapshot.
func (c *Catalog) SetPrice(ctx context.Context, id string, price decimal.Decimal) error {
	if price.IsNegative() {
		return product.ErrInvalidPrice
	}
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Price = price
	return nil
}

func (c *Catalog) filter(ctx context.Context, keep func(*product.Product) bool) ([]*product.Product, error) {
	all, err := c.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	out := make([]*product.Product, 0, len(all))
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CompareRating orders products by average rating descending, then by review
// count descending.
func CompareRating(a, b *product.Product) int {
	if c := cmp.Compare(b.AverageRating(), a.AverageRating()); c != 0 {
		return c
	}
	return cmp.Compare(b.TotalReviews(), a.TotalReviews())
}
