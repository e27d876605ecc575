package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/customer"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.shop.AllCustomers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, cs, encodeCustomer) })
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var id, name, email, phone, address string
	err := decodeBody(r, fields{
		"id":      str(&id),
		"name":    str(&name),
		"email":   str(&email),
		"phone":   str(&phone),
		"address": str(&address),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	if id == "" || name == "" {
		fail(w, r, errors.Wrap(errInvalidInput, "id and name are required"))
		return
	}

	if err := h.shop.AddCustomer(r.Context(), customer.New(id, name, email, phone, address)); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCustomer(w, r, http.StatusCreated, id)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	h.writeCustomer(w, r, http.StatusOK, chi.URLParam(r, "customerID"))
}

func (h *Handler) writeCustomer(w http.ResponseWriter, r *http.Request, status int, id string) {
	c, err := h.shop.GetCustomer(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

// writeCart responds with the current cart after a successful cart change.
func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, customerID string) {
	c, err := h.shop.Cart(r.Context(), customerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, chi.URLParam(r, "customerID"))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	if err := h.shop.ClearCart(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, id)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var (
		productID string
		qty       int
	)
	err := decodeBody(r, fields{
		"productId": str(&productID),
		"quantity":  integer(&qty),
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	id := chi.URLParam(r, "customerID")
	if err := h.shop.AddToCart(r.Context(), id, productID, qty); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, id)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var qty int
	if err := decodeBody(r, fields{"quantity": integer(&qty)}); err != nil {
		fail(w, r, err)
		return
	}

	id := chi.URLParam(r, "customerID")
	if err := h.shop.UpdateCartQuantity(r.Context(), id, chi.URLParam(r, "productID"), qty); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, id)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	if err := h.shop.RemoveFromCart(r.Context(), id, chi.URLParam(r, "productID")); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, id)
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var percent decimal.Decimal
	if err := decodeBody(r, fields{"percent": money(&percent)}); err != nil {
		fail(w, r, err)
		return
	}

	id := chi.URLParam(r, "customerID")
	if err := h.shop.ApplyDiscount(r.Context(), id, percent); err != nil {
		fail(w, r, err)
		return
	}
	h.writeCart(w, r, id)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, h.cfg.RecommendLimit)
	if err != nil {
		fail(w, r, err)
		return
	}
	ps, err := h.shop.Recommend(r.Context(), chi.URLParam(r, "customerID"), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProducts(w, ps)
}

func (h *Handler) wishlist(w http.ResponseWriter, r *http.Request) {
	ps, err := h.shop.Wishlist(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeProducts(w, ps)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	h.changeWishlist(w, r, h.shop.AddToWishlist)
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	h.changeWishlist(w, r, h.shop.RemoveFromWishlist)
}

func (h *Handler) changeWishlist(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, customerID, productID string) error) {
	if err := change(r.Context(), chi.URLParam(r, "customerID"), chi.URLParam(r, "productID")); err != nil {
		fail(w, r, err)
		return
	}
	h.wishlist(w, r)
}

