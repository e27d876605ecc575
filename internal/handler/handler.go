// Package handler exposes the shop over JSON/HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/shop"
	"github.com/xenking/storefront-sim/pkg/httpmiddleware"
)

const instrumentationName = "github.com/xenking/storefront-sim/internal/handler"

// Config holds request defaults.
type Config struct {
	// RecommendLimit applies when ?limit is absent on recommendations.
	RecommendLimit int
	// LowStockThreshold applies to created products that do not set one.
	LowStockThreshold int
}

// Handler serves the /api routes.
type Handler struct {
	shop    *shop.Shop
	cfg     Config
	tracer  trace.Tracer
	metrics *metrics
}

// New creates a Handler. Metric instruments are registered on mp.
func New(s *shop.Shop, cfg Config, mp metric.MeterProvider, tp trace.TracerProvider) (*Handler, error) {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = product.DefaultLowStockThreshold
	}
	m, err := newMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}
	return &Handler{
		shop:    s,
		cfg:     cfg,
		tracer:  tp.Tracer(instrumentationName),
		metrics: m,
	}, nil
}

// Routes returns the API router, meant to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpmiddleware.WriteError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpmiddleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/categories", h.categories)
		r.Get("/low-stock", h.lowStock)
		r.Get("/top-rated", h.topRated)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", h.getProduct)
			r.Put("/price", h.setPrice)
			r.Post("/restock", h.restock)
			r.Post("/reviews", h.addReview)
		})
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.getCustomer)

			r.Get("/cart", h.getCart)
			r.Delete("/cart", h.clearCart)
			r.Post("/cart/items", h.addToCart)
			r.Put("/cart/items/{productID}", h.updateCartItem)
			r.Delete("/cart/items/{productID}", h.removeCartItem)
			r.Put("/cart/discount", h.applyDiscount)

			r.Get("/orders", h.customerOrders)
			r.Post("/orders", h.placeOrder)
			r.Get("/recommendations", h.recommend)

			r.Get("/wishlist", h.wishlist)
			r.Put("/wishlist/{productID}", h.addToWishlist)
			r.Delete("/wishlist/{productID}", h.removeFromWishlist)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Get("/{orderID}", h.getOrder)
		r.Put("/{orderID}/status", h.updateOrderStatus)
		r.Post("/{orderID}/cancel", h.cancelOrder)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/revenue", h.revenue)
		r.Get("/category-sales", h.categorySales)
		r.Get("/best-selling", h.bestSelling)
		r.Get("/status-counts", h.statusCounts)
	})

	return r
}

// queryLimit parses ?limit=, falling back to def when absent.
func queryLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(errInvalidInput, "limit %q", v)
	}
	return n, nil
}
