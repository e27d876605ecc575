package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/shop"
	"github.com/xenking/storefront-sim/internal/storage/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeSeed(t *testing.T, name string, products []*product.Product, customers []*customer.Customer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := NewWriter(f)
	for _, p := range products {
		require.NoError(t, w.Product(p))
	}
	for _, c := range customers {
		require.NoError(t, w.Customer(c))
	}
	require.NoError(t, w.Close())
	return path
}

// writeRaw gzips lines verbatim.
func writeRaw(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.jsonl.gz")
	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func newProduct(id, category string, stock int) *product.Product {
	return product.New(id, "Product "+id, category, "", decimal.RequireFromString("9.99"), stock, "S1")
}

func productIDs(ps []*product.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestLoad(t *testing.T) {
	a := writeSeed(t, "a.jsonl.gz",
		[]*product.Product{newProduct("P1", "Tools", 5), newProduct("P2", "Books", 0)},
		[]*customer.Customer{customer.New("C1", "Alice", "a@example.com", "555", "1 Main St")},
	)
	b := writeSeed(t, "b.jsonl.gz",
		[]*product.Product{newProduct("P3", "Tools", 40)},
		[]*customer.Customer{customer.New("C2", "Bob", "", "", "")},
	)

	d, err := Load(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2", "P3"}, productIDs(d.Products))
	require.Len(t, d.Customers, 2)
	assert.Equal(t, "Alice", d.Customers[0].Name)
	assert.Equal(t, "1 Main St", d.Customers[0].Address)

	p := d.Products[0]
	assert.Equal(t, "Tools", p.Category)
	assert.True(t, decimal.RequireFromString("9.99").Equal(p.Price))
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, product.DefaultLowStockThreshold, p.LowStockThreshold)
}

func TestLoad_Duplicates(t *testing.T) {
	for _, tt := range []struct {
		name  string
		files [][]string
		id    string
	}{
		{name: "AcrossFiles", files: [][]string{{"P1", "P2"}, {"P3", "P2"}}, id: "P2"},
		{name: "WithinFile", files: [][]string{{"P1", "P1"}}, id: "P1"},
		{name: "ThirdFile", files: [][]string{{"P1"}, {"P2"}, {"P1"}}, id: "P1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var paths []string
			for i, ids := range tt.files {
				var ps []*product.Product
				for _, id := range ids {
					ps = append(ps, newProduct(id, "Tools", 1))
				}
				paths = append(paths, writeSeed(t, string(rune('a'+i))+".jsonl.gz", ps, nil))
			}

			_, err := Load(context.Background(), paths)
			require.ErrorIs(t, err, ErrDuplicate)
			var dup *DuplicateError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.id, dup.ID)
			assert.Equal(t, paths[len(paths)-1], dup.Path)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	for _, tt := range []struct {
		name  string
		lines []string
		want  string
	}{
		{name: "UnknownKind", lines: []string{`{"kind":"coupon","id":"X"}`}, want: "unknown kind"},
		{name: "MissingID", lines: []string{`{"kind":"product","name":"x"}`}, want: "id is required"},
		{name: "NegativeStock", lines: []string{`{"kind":"product","id":"P1","stock":-1}`}, want: "negative stock"},
		{name: "NegativeThreshold", lines: []string{`{"kind":"product","id":"P1","lowStockThreshold":-1}`}, want: "negative low stock threshold"},
		{name: "BadJSON", lines: []string{`{"kind":"product"`}, want: "line 1"},
		{name: "SecondLine", lines: []string{`{"kind":"customer","id":"C1"}`, `{"kind":"product","price":"x","id":"P"}`}, want: "line 2"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), []string{writeRaw(t, tt.lines...)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_SkipsBlankLinesAndUnknownFields(t *testing.T) {
	path := writeRaw(t,
		`{"kind":"product","id":"P1","price":12.5,"stock":3,"color":"red","lowStockThreshold":2}`,
		``,
		`{"id":"C1","kind":"customer","name":"Zed","tags":["vip"]}`,
	)
	d, err := Load(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, d.Products, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d.Products[0].Price))
	assert.Equal(t, 2, d.Products[0].LowStockThreshold)
	require.Len(t, d.Customers, 1)
	assert.Equal(t, "Zed", d.Customers[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), []string{filepath.Join(t.TempDir(), "nope.gz")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Cancelled(t *testing.T) {
	path := writeSeed(t, "a.jsonl.gz", []*product.Product{newProduct("P1", "Tools", 1)}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, []string{path})
	require.ErrorIs(t, err, context.Canceled)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	path := writeRaw(t,
		`{"kind":"product","id":"P1","name":"Hammer","price":"10","stock":4}`,
		`{"kind":"product","id":"P2","name":"Nails","price":"1","stock":4,"lowStockThreshold":3}`,
		`{"kind":"product","id":"P3","name":"Screws","price":"1","stock":1,"lowStockThreshold":0}`,
		`{"kind":"customer","id":"C1","name":"Alice"}`,
	)
	d, err := Load(ctx, []string{path})
	require.NoError(t, err)

	s := shop.New(
		memory.NewProductRepository(),
		memory.NewCustomerRepository(),
		memory.NewOrderRepository(),
		order.NewSequence(order.DefaultFirstSequence),
	)
	require.NoError(t, Apply(ctx, s, d, 5))

	low, err := s.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, productIDs(low))

	p3, err := s.GetProduct(ctx, "P3")
	require.NoError(t, err)
	assert.Equal(t, 0, p3.LowStockThreshold)

	c, err := s.GetCustomer(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", c.Name)

	require.ErrorIs(t, Apply(ctx, s, &Data{Products: []*product.Product{newProduct("P1", "Tools", 1)}}, 5), product.ErrDuplicate)
}

func TestReadDocument(t *testing.T) {
	doc := `{
		"version": 2,
		"products": [
			{"id": "P1", "name": "Hammer", "category": "Tools", "price": 10.25, "stock": 7},
			{"id": "P2", "name": "Nails", "price": "0.10", "stock": 500, "lowStockThreshold": 50}
		],
		"customers": [{"id": "C1", "name": "Alice", "email": "alice@example.com"}]
	}`
	d, err := ReadDocument(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, productIDs(d.Products))
	assert.Equal(t, InheritThreshold, d.Products[0].LowStockThreshold)
	assert.Equal(t, 50, d.Products[1].LowStockThreshold)
	require.Len(t, d.Customers, 1)
	assert.Equal(t, "alice@example.com", d.Customers[0].Email)

	_, err = ReadDocument(strings.NewReader(`{"products": [{"name": "no id"}]}`))
	require.Error(t, err)
}

func TestWriter_ExplicitZeroThreshold(t *testing.T) {
	p := newProduct("P1", "Tools", 1)
	p.LowStockThreshold = 0
	path := writeSeed(t, "zero.jsonl.gz", []*product.Product{p}, nil)

	d, err := Load(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, d.Products, 1)
	assert.Equal(t, 0, d.Products[0].LowStockThreshold)
	assert.False(t, d.Products[0].IsLowStock())
}

func TestWriterRoundTrip(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(`{"products":[{"id":"P1","price":"3.50","stock":2}],"customers":[{"id":"C1"}]}`))
	require.NoError(t, err)

	path := writeSeed(t, "packed.jsonl.gz", d.Products, d.Customers)
	loaded, err := Load(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, productIDs(loaded.Products))
	assert.True(t, decimal.RequireFromString("3.5").Equal(loaded.Products[0].Price))
	assert.Equal(t, InheritThreshold, loaded.Products[0].LowStockThreshold)
	require.Len(t, loaded.Customers, 1)
}
