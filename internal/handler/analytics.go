package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

const defaultBestSelling = 5

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.shop.TotalRevenue(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("total")
		encodeMoney(e, total)
		e.ObjEnd()
	})
}

func (h *Handler) categorySales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.shop.CategorySales(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCounts(e, sales) })
}

func (h *Handler) bestSelling(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultBestSelling)
	if err != nil {
		fail(w, r, err)
		return
	}
	top, err := h.shop.BestSelling(r.Context(), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeList(e, top, encodeSales) })
}

func (h *Handler) statusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.shop.StatusCounts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCounts(e, counts) })
}
