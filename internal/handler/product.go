package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/product"
)

func writeProducts(w http.ResponseWriter, ps []*product.Product) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeList(e, ps, encodeProduct)
	})
}

func writeProduct(w http.ResponseWriter, status int, p *product.Product) {
	writeJSON(w, status, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// listProducts serves the whole catalog, ?category= or ?q= search.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		ps  []*product.Product
		err error
	)
	q := r.URL.Query()
	switch {
	case q.Get("category") != "":
		ps, err = h.shop.ProductsByCategory(r.Context(), q.Get("category"))
	case q.Get("q") != "":
		ps, err = h.shop.Search(r.Context(), q.Get("q"))
	default:
		ps, err = h.shop.AllProducts(r.Context())
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProducts(w, ps)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var (
		id, name, category, description, sellerID string
		price                                     decimal.Decimal
		stock                                     int
		threshold                                 = h.cfg.LowStockThreshold
	)
	err := decodeBody(r, fields{
		"id":                str(&id),
		"name":              str(&name),
		"category":          str(&category),
		"description":       str(&description),
		"sellerId":          str(&sellerID),
		"price":             money(&price),
		"stock":             integer(&stock),
		"lowStockThreshold": integer(&threshold),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	if id == "" || name == "" {
		fail(w, r, errors.Wrap(errInvalidInput, "id and name are required"))
		return
	}
	if threshold < 0 {
		fail(w, r, errors.Wrap(errInvalidInput, "lowStockThreshold must not be negative"))
		return
	}

	p := product.New(id, name, category, description, price, stock, sellerID)
	p.LowStockThreshold = threshold
	if err := h.shop.AddProduct(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	created, err := h.shop.GetProduct(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProduct(w, http.StatusCreated, created)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.shop.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProduct(w, http.StatusOK, p)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.shop.Categories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeStrings(e, cs) })
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	ps, err := h.shop.LowStock(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProducts(w, ps)
}

func (h *Handler) topRated(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 0)
	if err != nil {
		fail(w, r, err)
		return
	}
	ps, err := h.shop.TopRated(r.Context(), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProducts(w, ps)
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	var (
		price decimal.Decimal
		set   bool
	)
	err := decodeBody(r, fields{"price": func(d *jx.Decoder) error {
		set = true
		return money(&price)(d)
	}})
	if err != nil {
		fail(w, r, err)
		return
	}
	if !set {
		fail(w, r, errors.Wrap(errInvalidInput, "price is required"))
		return
	}

	p, err := h.shop.SetPrice(r.Context(), chi.URLParam(r, "productID"), price)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProduct(w, http.StatusOK, p)
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	var qty int
	if err := decodeBody(r, fields{"quantity": integer(&qty)}); err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.shop.Restock(r.Context(), chi.URLParam(r, "productID"), qty)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProduct(w, http.StatusOK, p)
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	var (
		customerID, comment string
		rating              int
	)
	err := decodeBody(r, fields{
		"customerId": str(&customerID),
		"rating":     integer(&rating),
		"comment":    str(&comment),
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	rev, err := h.shop.AddReview(r.Context(), customerID, chi.URLParam(r, "productID"), rating, comment)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeReview(e, rev) })
}
