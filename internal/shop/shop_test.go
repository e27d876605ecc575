package shop

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/xenking/storefront-sim/internal/domain/cart"
	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/storage/memory"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func newTestShop() *Shop {
	s := New(
		memory.NewProductRepository(),
		memory.NewCustomerRepository(),
		memory.NewOrderRepository(),
		order.NewSequence(order.DefaultFirstSequence),
	)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	s.reviewID = func() string { return "review" }
	return s
}

func mustAddProduct(tb testingT, s *Shop, id, category, price string, stock int) {
	tb.Helper()
	p := product.New(id, "Product "+id, category, "", decimal.RequireFromString(price), stock, "S1")
	require.NoError(tb, s.AddProduct(context.Background(), p))
}

func mustAddCustomer(tb testingT, s *Shop, id string) {
	tb.Helper()
	require.NoError(tb, s.AddCustomer(context.Background(), customer.New(id, "Customer "+id, id+"@example.com", "", "Addr "+id)))
}

func deliver(t *testing.T, s *Shop, orderID string) {
	t.Helper()
	for _, st := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		_, err := s.UpdateOrderStatus(context.Background(), orderID, st)
		require.NoError(t, err)
	}
}

func productIDs(ps []*product.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestShop_CheckoutAndCancel(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "10.00", 5)
	mustAddCustomer(t, s, "C1")

	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 3))
	o, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)
	assert.Equal(t, "ORD1001", o.ID)
	assert.True(t, decimal.RequireFromString("30.00").Equal(o.Total))

	p, err := s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	cancelled, err := s.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	p, err = s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	counts, err := s.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[order.StatusCancelled])

	revenue, err := s.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}

func TestShop_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "10.00", 5)
	mustAddCustomer(t, s, "C1")
	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 1))

	o, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)
	o.Status = order.StatusDelivered
	o.Items[0].Quantity = 100

	stored, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.Items[0].Quantity)

	p, err := s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	p.Stock = 0

	again, err := s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 4, again.Stock)
}

func TestShop_PriceChangeDoesNotAlterOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "10.00", 5)
	mustAddCustomer(t, s, "C1")
	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 2))

	o, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)

	_, err = s.SetPrice(ctx, "P1", decimal.RequireFromString("50.00"))
	require.NoError(t, err)

	stored, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(stored.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("20.00").Equal(stored.Total))
}

func TestShop_Cart(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "10.00", 5)
	mustAddProduct(t, s, "P2", "Tools", "4.00", 5)
	mustAddCustomer(t, s, "C1")

	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 2))
	require.NoError(t, s.AddToCart(ctx, "C1", "P2", 1))
	require.NoError(t, s.ApplyDiscount(ctx, "C1", decimal.NewFromInt(50)))

	snap, err := s.Cart(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalItems)
	assert.True(t, decimal.RequireFromString("24.00").Equal(snap.Subtotal))
	assert.True(t, decimal.RequireFromString("12.00").Equal(snap.Total))
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "P1", snap.Lines[0].ProductID)

	require.NoError(t, s.UpdateCartQuantity(ctx, "C1", "P1", 0))
	require.ErrorIs(t, s.RemoveFromCart(ctx, "C1", "P1"), cart.ErrNotInCart)
	require.NoError(t, s.RemoveFromCart(ctx, "C1", "P2"))

	require.ErrorIs(t, s.AddToCart(ctx, "C1", "P1", 6), product.ErrInsufficientStock)
	require.ErrorIs(t, s.AddToCart(ctx, "C1", "missing", 1), product.ErrNotFound)
	require.ErrorIs(t, s.AddToCart(ctx, "C9", "P1", 1), customer.ErrNotFound)

	require.NoError(t, s.ClearCart(ctx, "C1"))
	snap, err = s.Cart(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.True(t, decimal.NewFromInt(50).Equal(snap.DiscountPercent))
}

func TestShop_Wishlist(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "1.00", 1)
	mustAddProduct(t, s, "P2", "Tools", "1.00", 1)
	mustAddCustomer(t, s, "C1")

	require.NoError(t, s.AddToWishlist(ctx, "C1", "P2"))
	require.NoError(t, s.AddToWishlist(ctx, "C1", "P1"))
	require.ErrorIs(t, s.AddToWishlist(ctx, "C1", "P9"), product.ErrNotFound)

	got, err := s.Wishlist(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, productIDs(got))

	require.NoError(t, s.RemoveFromWishlist(ctx, "C1", "P1"))
	require.ErrorIs(t, s.RemoveFromWishlist(ctx, "C1", "P1"), customer.ErrNotWishlisted)
}

func TestShop_AddReview(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "1.00", 5)
	mustAddCustomer(t, s, "C1")

	r, err := s.AddReview(ctx, "C1", "P1", 4, "fine")
	require.NoError(t, err)
	assert.False(t, r.Verified)
	assert.Equal(t, "Customer C1", r.CustomerName)

	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 1))
	o, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)
	deliver(t, s, o.ID)

	r, err = s.AddReview(ctx, "C1", "P1", 5, "great")
	require.NoError(t, err)
	assert.True(t, r.Verified)

	_, err = s.AddReview(ctx, "C1", "P1", 6, "")
	require.ErrorIs(t, err, product.ErrInvalidRating)
	_, err = s.AddReview(ctx, "C1", "P9", 3, "")
	require.ErrorIs(t, err, product.ErrNotFound)

	p, err := s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalReviews())
	assert.InDelta(t, 4.5, p.AverageRating(), 1e-9)
}

func TestShop_Recommend(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "B1", "Books", "10.00", 5)
	mustAddProduct(t, s, "B2", "Books", "12.00", 5)
	mustAddProduct(t, s, "E1", "Electronics", "99.00", 5)
	mustAddCustomer(t, s, "C1")
	mustAddCustomer(t, s, "C2")

	_, err := s.AddReview(ctx, "C2", "E1", 5, "")
	require.NoError(t, err)

	require.NoError(t, s.AddToCart(ctx, "C1", "B1", 1))
	o, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)
	deliver(t, s, o.ID)

	got, err := s.Recommend(ctx, "C1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B2", "E1"}, productIDs(got))

	summary, err := s.GetCustomer(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, summary.PurchasedProducts)
	assert.Equal(t, 1, summary.TotalOrders)

	_, err = s.Recommend(ctx, "C9", 2)
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func TestShop_Analytics(t *testing.T) {
	ctx := context.Background()
	s := newTestShop()
	mustAddProduct(t, s, "P1", "Tools", "2.00", 10)
	mustAddProduct(t, s, "P2", "Books", "5.00", 10)
	mustAddCustomer(t, s, "C1")

	require.NoError(t, s.AddToCart(ctx, "C1", "P1", 4))
	require.NoError(t, s.AddToCart(ctx, "C1", "P2", 1))
	_, err := s.PlaceOrder(ctx, "C1", "card")
	require.NoError(t, err)

	sales, err := s.CategorySales(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Tools": 4, "Books": 1}, sales)

	best, err := s.BestSellingProducts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, productIDs(best))

	revenue, err := s.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.00").Equal(revenue))

	pending, err := s.OrdersByStatus(ctx, order.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestShop_ConcurrentCheckoutNeverOversells(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	s := newTestShop()
	const stock = 7
	const buyers = 32
	mustAddProduct(t, s, "P1", "Tools", "1.00", stock)
	for i := range buyers {
		id := fmt.Sprintf("C%d", i)
		mustAddCustomer(t, s, id)
		require.NoError(t, s.AddToCart(ctx, id, "P1", 1))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for i := range buyers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.PlaceOrder(ctx, id, "card"); err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
			}
			_, _ = s.TopRated(ctx, 3)
		}(fmt.Sprintf("C%d", i))
	}
	wg.Wait()

	assert.Equal(t, stock, placed)
	p, err := s.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Zero(t, p.Stock)

	all, err := s.AllOrders(ctx)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, o := range all {
		assert.False(t, seen[o.ID], "duplicate order id %s", o.ID)
		seen[o.ID] = true
	}
}

// Stock plus units held by live orders always equals the initial stock.
func TestShop_StockConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := newTestShop()
		initial := map[string]int{"P1": 5, "P2": 3}
		for id, n := range initial {
			mustAddProduct(t, s, id, "Tools", "1.00", n)
		}
		mustAddCustomer(t, s, "C1")

		var placed []string
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			switch rapid.IntRange(0, 4).Draw(t, "action") {
			case 0:
				pid := rapid.SampledFrom([]string{"P1", "P2"}).Draw(t, "product")
				_ = s.AddToCart(ctx, "C1", pid, rapid.IntRange(1, 4).Draw(t, "qty"))
			case 1:
				if o, err := s.PlaceOrder(ctx, "C1", "card"); err == nil {
					placed = append(placed, o.ID)
				}
			case 2:
				if len(placed) > 0 {
					id := rapid.SampledFrom(placed).Draw(t, "cancel")
					_, _ = s.CancelOrder(ctx, id)
				}
			case 3:
				if len(placed) > 0 {
					id := rapid.SampledFrom(placed).Draw(t, "advance")
					st := rapid.SampledFrom(order.Statuses).Draw(t, "status")
					_, _ = s.UpdateOrderStatus(ctx, id, st)
				}
			case 4:
				_ = s.ClearCart(ctx, "C1")
			}

			held := make(map[string]int)
			orders, err := s.AllOrders(ctx)
			if err != nil {
				t.Fatal(err)
			}
			for _, o := range orders {
				if o.Status == order.StatusCancelled {
					continue
				}
				for _, it := range o.Items {
					held[it.ProductID] += it.Quantity
				}
			}
			for id, n := range initial {
				p, err := s.GetProduct(ctx, id)
				if err != nil {
					t.Fatal(err)
				}
				if p.Stock < 0 || p.Stock+held[id] != n {
					t.Fatalf("%s: stock %d + held %d != %d", id, p.Stock, held[id], n)
				}
			}
		}
	})
}
