// Command seed-pack converts a {"products": [...], "customers": [...]} JSON
// document into the gzipped JSON-lines format loaded by the API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-sim/internal/seed"
)

func main() {
	var in, out string
	flag.StringVar(&in, "in", "catalog.json", "path to the source JSON document")
	flag.StringVar(&out, "out", "seed.jsonl.gz", "path of the gzipped JSON-lines file to write")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, in, out); err != nil {
		slog.Error("seed pack failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return errors.Wrapf(err, "open %s", in)
	}
	defer func() { _ = src.Close() }()

	data, err := seed.ReadDocument(src)
	if err != nil {
		return errors.Wrapf(err, "read %s", in)
	}

	dst, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "create %s", out)
	}
	if err := write(ctx, dst, data); err != nil {
		_ = dst.Close()
		_ = os.Remove(out)
		return err
	}
	if err := dst.Close(); err != nil {
		return errors.Wrapf(err, "close %s", out)
	}

	// Verify the packed file reads back with unique product IDs.
	if _, err := seed.Load(ctx, []string{out}); err != nil {
		return errors.Wrap(err, "verify output")
	}

	slog.Info("seed file written",
		slog.String("path", out),
		slog.Int("products", len(data.Products)),
		slog.Int("customers", len(data.Customers)),
	)
	return nil
}

func write(ctx context.Context, f *os.File, data *seed.Data) error {
	w := seed.NewWriter(f)
	for _, p := range data.Products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Product(p); err != nil {
			return errors.Wrapf(err, "write product %s", p.ID)
		}
	}
	for _, c := range data.Customers {
		if err := w.Customer(c); err != nil {
			return errors.Wrapf(err, "write customer %s", c.ID)
		}
	}
	return errors.Wrap(w.Close(), "finish gzip stream")
}
