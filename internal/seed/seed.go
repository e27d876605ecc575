// Package seed loads demo catalogs from gzipped JSON-lines files.
//
// Each line is one object with a "kind" of "product" or "customer". Files are
// decoded concurrently; product IDs must be unique across all files.
package seed

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/shop"
)

const (
	bloomCapacity = 100_000
	bloomFPR      = 0.001
	maxLineSize   = 1 << 20
)

// ErrDuplicate is matched by every *DuplicateError.
var ErrDuplicate = errors.New("duplicate product id")

// DuplicateError reports a product ID defined more than once.
type DuplicateError struct {
	ID   string
	Path string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate product id %q in %s", e.ID, e.Path)
}

// Is makes errors.Is(err, ErrDuplicate) hold.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Data is the decoded content of seed files, in file then line order.
type Data struct {
	Products  []*product.Product
	Customers []*customer.Customer
}

type fileData struct {
	Data
	filter *bloom.BloomFilter
	// candidates holds IDs the file's own filter had already seen.
	candidates map[string]struct{}
}

// Load decodes paths concurrently and merges them in argument order.
func Load(ctx context.Context, paths []string) (*Data, error) {
	files := make([]*fileData, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			fd, err := loadFile(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			files[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkDuplicates(paths, files); err != nil {
		return nil, err
	}

	var out Data
	for _, fd := range files {
		out.Products = append(out.Products, fd.Products...)
		out.Customers = append(out.Customers, fd.Customers...)
	}
	return &out, nil
}

func loadFile(ctx context.Context, path string) (*fileData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	fd := &fileData{
		filter:     bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		candidates: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fd.add(scanner.Bytes()); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	zctx.From(ctx).Info("Seed file decoded",
		zap.String("path", path),
		zap.Int("products", len(fd.Products)),
		zap.Int("customers", len(fd.Customers)),
	)
	return fd, nil
}

func (fd *fileData) add(line []byte) error {
	var rec record
	if err := rec.decode(jx.DecodeBytes(line)); err != nil {
		return err
	}
	switch rec.kind {
	case kindProduct:
		p, err := rec.product()
		if err != nil {
			return err
		}
		if fd.filter.TestAndAddString(p.ID) {
			fd.candidates[p.ID] = struct{}{}
		}
		fd.Products = append(fd.Products, p)
	case kindCustomer:
		c, err := rec.customer()
		if err != nil {
			return err
		}
		fd.Customers = append(fd.Customers, c)
	default:
		return errors.Errorf("unknown kind %q", rec.kind)
	}
	return nil
}

// checkDuplicates collects IDs that some filter may have seen twice, then
// confirms them with an exact count.
func checkDuplicates(paths []string, files []*fileData) error {
	candidates := make(map[string]struct{})
	for i, fd := range files {
		for id := range fd.candidates {
			candidates[id] = struct{}{}
		}
		for _, p := range fd.Products {
			for j, other := range files {
				if j != i && other.filter.TestString(p.ID) {
					candidates[p.ID] = struct{}{}
					break
				}
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	for i, fd := range files {
		for _, p := range fd.Products {
			if _, ok := candidates[p.ID]; !ok {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				return &DuplicateError{ID: p.ID, Path: paths[i]}
			}
			seen[p.ID] = struct{}{}
		}
	}
	return nil
}

// Apply inserts d into s. Products without a low stock threshold get
// lowStockThreshold.
func Apply(ctx context.Context, s *shop.Shop, d *Data, lowStockThreshold int) error {
	for _, p := range d.Products {
		if p.LowStockThreshold == InheritThreshold {
			p.LowStockThreshold = lowStockThreshold
		}
		if err := s.AddProduct(ctx, p); err != nil {
			return errors.Wrapf(err, "add product %s", p.ID)
		}
	}
	for _, c := range d.Customers {
		if err := s.AddCustomer(ctx, c); err != nil {
			return errors.Wrapf(err, "add customer %s", c.ID)
		}
	}
	zctx.From(ctx).Info("Seed data applied",
		zap.Int("products", len(d.Products)),
		zap.Int("customers", len(d.Customers)),
	)
	return nil
}
