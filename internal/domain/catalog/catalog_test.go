package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/storage/memory"
)

func ids(ps []*product.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func review(rating int) product.Review {
	return product.NewReview("r", "C1", "Alice", rating, "", false, time.Now())
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	ctx := context.Background()
	c := New(memory.NewProductRepository())
	for _, p := range []*product.Product{
		product.New("P1", "Laptop Pro", "Electronics", "Fast notebook", decimal.NewFromInt(1200), 5, "S1"),
		product.New("P2", "Wireless Mouse", "Electronics", "Ergonomic", decimal.NewFromInt(25), 50, "S1"),
		product.New("P3", "Go Programming", "Books", "Learn the language", decimal.NewFromInt(40), 0, "S2"),
		product.New("P4", "Cookbook", "books", "Recipes for electronics lovers", decimal.NewFromInt(30), 12, "S2"),
	} {
		require.NoError(t, c.Add(ctx, p))
	}
	return c
}

func TestCatalog_Add(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	err := c.Add(ctx, product.New("P1", "Dup", "X", "", decimal.NewFromInt(1), 1, ""))
	require.ErrorIs(t, err, product.ErrDuplicate)

	err = c.Add(ctx, product.New("P9", "Neg", "X", "", decimal.NewFromInt(-1), 1, ""))
	require.ErrorIs(t, err, product.ErrInvalidPrice)

	_, err = c.Get(ctx, "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalog_ByCategory(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	got, err := c.ByCategory(ctx, "BOOKS")
	require.NoError(t, err)
	assert.Equal(t, []string{"P3", "P4"}, ids(got))

	got, err = c.ByCategory(ctx, "Book")
	require.NoError(t, err)
	assert.Empty(t, got, "category match is exact")
}

func TestCatalog_Search(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	tests := []struct {
		keyword string
		want    []string
	}{
		{keyword: "laptop", want: []string{"P1"}},
		{keyword: "ELECTRONICS", want: []string{"P1", "P2", "P4"}},
		{keyword: "programming", want: []string{"P3"}},
		{keyword: "nothing-matches", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := c.Search(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCatalog_LowStock(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	got, err := c.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids(got))
}

func TestCatalog_TopRated(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	require.NoError(t, c.AddReview(ctx, "P2", review(4)))
	require.NoError(t, c.AddReview(ctx, "P4", review(4)))
	require.NoError(t, c.AddReview(ctx, "P4", review(4)))
	require.NoError(t, c.AddReview(ctx, "P3", review(5)))

	got, err := c.TopRated(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"P4", "P2", "P1"}, ids(got), "out of stock P3 excluded, review count breaks ties")

	got, err = c.TopRated(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"P4"}, ids(got))
}

func TestCatalog_Stock(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	require.ErrorIs(t, c.ReduceStock(ctx, "P1", 6), product.ErrInsufficientStock)
	require.NoError(t, c.ReduceStock(ctx, "P1", 5))
	require.NoError(t, c.IncreaseStock(ctx, "P1", 2))

	p, err := c.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	require.ErrorIs(t, c.ReduceStock(ctx, "missing", 1), product.ErrNotFound)
}

func TestCatalog_SetPrice(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	require.NoError(t, c.SetPrice(ctx, "P2", decimal.RequireFromString("19.99")))
	p, err := c.Get(ctx, "P2")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price))

	require.ErrorIs(t, c.SetPrice(ctx, "P2", decimal.NewFromInt(-5)), product.ErrInvalidPrice)
}

func TestCatalog_Categories(t *testing.T) {
	c := newTestCatalog(t)

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Books", "books"}, got)
}
