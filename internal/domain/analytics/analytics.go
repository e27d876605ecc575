// Package analytics derives read-only sales views from placed orders.
package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/order"
)

// TotalRevenue sums totals of all non-cancelled orders.
func TotalRevenue(orders []*order.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status != order.StatusCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}

// CategorySales maps category to units sold across non-cancelled orders.
// The category comes from the order's own snapshot.
func CategorySales(orders []*order.Order) map[string]int {
	sales := make(map[string]int)
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			sales[it.Category] += it.Quantity
		}
	}
	return sales
}

// ProductSales is a units-sold tally for one product.
type ProductSales struct {
	ProductID string
	Name      string
	Units     int
}

// BestSelling ranks products by units sold across non-cancelled orders. Ties
// keep the order of first sale. A non-positive limit returns every product.
func BestSelling(orders []*order.Order, limit int) []ProductSales {
	index := make(map[string]int)
	var tally []ProductSales
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			i, ok := index[it.ProductID]
			if !ok {
				i = len(tally)
				index[it.ProductID] = i
				tally = append(tally, ProductSales{ProductID: it.ProductID, Name: it.Name})
			}
			tally[i].Units += it.Quantity
		}
	}

	slices.SortStableFunc(tally, func(a, b ProductSales) int {
		return cmp.Compare(b.Units, a.Units)
	})
	if limit > 0 && len(tally) > limit {
		tally = tally[:limit]
	}
	return tally
}

// StatusCounts counts orders per status.
func StatusCounts(orders []*order.Order) map[order.Status]int {
	counts := make(map[order.Status]int, len(order.Statuses))
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}
