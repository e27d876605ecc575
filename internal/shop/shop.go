// Package shop is the in-process surface of the storefront simulator.
//
// Shop serializes every mutation behind a single RWMutex, so a checkout's
// stock check and stock decrement observe one consistent snapshot, and
// readers see either the state before or after a checkout, never a partial
// one. Everything returned to callers is a deep copy.
package shop

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/analytics"
	"github.com/xenking/storefront-sim/internal/domain/catalog"
	"github.com/xenking/storefront-sim/internal/domain/checkout"
	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/domain/recommend"
)

// Shop wires catalog, carts, checkout, recommendations and analytics.
type Shop struct {
	mu sync.RWMutex

	catalog   *catalog.Catalog
	customers customer.Repository
	orders    order.Repository
	checkout  *checkout.Engine

	now      func() time.Time
	reviewID func() string
}

// New creates a Shop over the given repositories. ids issues order IDs.
func New(
	products product.Repository,
	customers customer.Repository,
	orders order.Repository,
	ids checkout.IDGenerator,
) *Shop {
	cat := catalog.New(products)
	return &Shop{
		catalog:   cat,
		customers: customers,
		orders:    orders,
		checkout:  checkout.NewEngine(cat, customers, orders, ids),
		now:       time.Now,
		reviewID:  uuid.NewString,
	}
}

// AddProduct registers p. The shop takes ownership of p.
func (s *Shop) AddProduct(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Add(ctx, p)
}

// AddCustomer registers c. The shop takes ownership of c.
func (s *Shop) AddCustomer(ctx context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.customers.Create(ctx, c); err != nil {
		return errors.Wrapf(err, "add customer %s", c.ID)
	}
	return nil
}

// GetCustomer returns a summary of customer id.
func (s *Shop) GetCustomer(ctx context.Context, id string) (*CustomerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(c), nil
}

// AllCustomers returns summaries of every customer in registration order.
func (s *Shop) AllCustomers(ctx context.Context) ([]*CustomerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*CustomerSummary, len(all))
	for i, c := range all {
		out[i] = summarize(c)
	}
	return out, nil
}

// PlaceOrder checks out the customer's cart. See checkout.Engine.PlaceOrder.
func (s *Shop) PlaceOrder(ctx context.Context, customerID, paymentMethod string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.checkout.PlaceOrder(ctx, customerID, paymentMethod)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// UpdateOrderStatus advances an order. Cancelling through here restocks.
func (s *Shop) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.checkout.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// CancelOrder restocks and cancels an order that has not shipped.
func (s *Shop) CancelOrder(ctx context.Context, orderID string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.checkout.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// GetOrder returns order id.
func (s *Shop) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// AllOrders returns every order in placement order.
func (s *Shop) AllOrders(ctx context.Context) ([]*order.Order, error) {
	return s.listOrders(ctx, func(*order.Order) bool { return true })
}

// OrdersByStatus returns orders currently in status st.
func (s *Shop) OrdersByStatus(ctx context.Context, st order.Status) ([]*order.Order, error) {
	return s.listOrders(ctx, func(o *order.Order) bool { return o.Status == st })
}

// CustomerOrders returns the order history of customer id.
func (s *Shop) CustomerOrders(ctx context.Context, id string) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneOrders(c.Orders()), nil
}

// AddReview records a review by customerID on productID. The review is
// verified when the customer has a delivered order containing the product.
func (s *Shop) AddReview(ctx context.Context, customerID, productID string, rating int, comment string) (product.Review, error) {
	if !product.ValidRating(rating) {
		return product.Review{}, product.ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return product.Review{}, err
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return product.Review{}, err
	}

	r := product.NewReview(s.reviewID(), c.ID, c.Name, rating, comment, c.HasPurchased(productID), s.now())
	if err := s.catalog.AddReview(ctx, productID, r); err != nil {
		return product.Review{}, err
	}
	return r, nil
}

// Recommend suggests up to limit products for customer id.
func (s *Shop) Recommend(ctx context.Context, id string, limit int) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	return cloneProducts(recommend.Recommend(c.Orders(), all, limit)), nil
}

// TotalRevenue sums totals of non-cancelled orders.
func (s *Shop) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return analytics.TotalRevenue(all), nil
}

// CategorySales maps category to units sold, excluding cancelled orders.
func (s *Shop) CategorySales(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.CategorySales(all), nil
}

// StatusCounts counts orders per status.
func (s *Shop) StatusCounts(ctx context.Context) (map[order.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.StatusCounts(all), nil
}

// BestSelling returns unit tallies for the top limit products.
func (s *Shop) BestSelling(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BestSelling(all, limit), nil
}

// BestSellingProducts returns the catalog entries of the top limit sellers.
func (s *Shop) BestSellingProducts(ctx context.Context, limit int) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	ranked := analytics.BestSelling(all, limit)
	out := make([]*product.Product, 0, len(ranked))
	for _, r := range ranked {
		p, err := s.catalog.Get(ctx, r.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Shop) listOrders(ctx context.Context, keep func(*order.Order) bool) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*order.Order
	for _, o := range all {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func cloneOrders(in []*order.Order) []*order.Order {
	out := make([]*order.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}

func cloneProducts(in []*product.Product) []*product.Product {
	out := make([]*product.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
