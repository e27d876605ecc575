// Package recommend ranks products for a customer by category affinity,
// derived from delivered purchases, and backfills with globally top-rated
// items.
package recommend

import (
	"cmp"
	"slices"

	"github.com/xenking/storefront-sim/internal/domain/catalog"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
)

// Recommend returns up to limit products for a customer whose order history
// is orders. products is the catalog in iteration order; ties keep that
// order. Items sitting in the customer's cart are not excluded.
func Recommend(orders []*order.Order, products []*product.Product, limit int) []*product.Product {
	if limit <= 0 {
		return nil
	}

	purchased := make(map[string]struct{})
	for _, o := range orders {
		if o.Status != order.StatusDelivered {
			continue
		}
		for _, it := range o.Items {
			purchased[it.ProductID] = struct{}{}
		}
	}

	affinity := make(map[string]struct{})
	for _, p := range products {
		if _, ok := purchased[p.ID]; ok {
			affinity[p.Category] = struct{}{}
		}
	}

	picked := make(map[string]struct{})
	var out []*product.Product
	for _, p := range products {
		if _, ok := purchased[p.ID]; ok {
			continue
		}
		if _, ok := affinity[p.Category]; !ok || !p.InStock() {
			continue
		}
		out = append(out, p)
		picked[p.ID] = struct{}{}
	}
	slices.SortStableFunc(out, func(a, b *product.Product) int {
		return cmp.Compare(b.AverageRating(), a.AverageRating())
	})

	if len(out) < limit {
		popular := make([]*product.Product, 0, len(products))
		for _, p := range products {
			if p.InStock() {
				popular = append(popular, p)
			}
		}
		slices.SortStableFunc(popular, catalog.CompareRating)

		for _, p := range popular {
			if len(out) >= limit {
				break
			}
			if _, ok := picked[p.ID]; ok {
				continue
			}
			if _, ok := purchased[p.ID]; ok {
				continue
			}
			out = append(out, p)
			picked[p.ID] = struct{}{}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
