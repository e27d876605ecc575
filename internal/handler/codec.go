package handler

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/analytics"
	"github.com/xenking/storefront-sim/internal/domain/checkout"
	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/domain/product"
	"github.com/xenking/storefront-sim/internal/shop"
)

const maxBodySize = 1 << 20

var (
	errMalformedBody = errors.New("malformed request body")
	errInvalidInput  = errors.New("invalid input")
)

// fields maps JSON object keys to value decoders. Unknown keys are skipped.
type fields map[string]func(d *jx.Decoder) error

// decodeBody reads a JSON object from the request body. An empty body is an
// empty object.
func decodeBody(r *http.Request, f fields) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrapf(errMalformedBody, "read: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		fn, ok := f[key]
		if !ok {
			return d.Skip()
		}
		if err := fn(d); err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(errMalformedBody, "%v", err)
	}
	return nil
}

func str(dst *string) func(*jx.Decoder) error {
	return func(d *jx.Decoder) (err error) {
		*dst, err = d.Str()
		return err
	}
}

func integer(dst *int) func(*jx.Decoder) error {
	return func(d *jx.Decoder) (err error) {
		*dst, err = d.Int()
		return err
	}
}

// money accepts both 12.5 and "12.50".
func money(dst *decimal.Decimal) func(*jx.Decoder) error {
	return func(d *jx.Decoder) error {
		var raw string
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			raw = s
		case jx.Number:
			n, err := d.Num()
			if err != nil {
				return err
			}
			raw = string(n)
		default:
			return errors.New("expected number")
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Float64(d.Round(2).InexactFloat64())
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeStrings(e *jx.Encoder, ss []string) {
	e.ArrStart()
	for _, s := range ss {
		e.Str(s)
	}
	e.ArrEnd()
}

func encodeList[T any](e *jx.Encoder, items []T, encode func(*jx.Encoder, T)) {
	e.ArrStart()
	for _, it := range items {
		encode(e, it)
	}
	e.ArrEnd()
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("sellerId")
	e.Str(p.SellerID)
	e.FieldStart("price")
	encodeMoney(e, p.Price)
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("lowStock")
	e.Bool(p.IsLowStock())
	e.FieldStart("averageRating")
	e.Float64(p.AverageRating())
	e.FieldStart("totalReviews")
	e.Int(p.TotalReviews())
	e.FieldStart("reviews")
	encodeList(e, p.Reviews, encodeReview)
	e.ObjEnd()
}

func encodeReview(e *jx.Encoder, r product.Review) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("customerId")
	e.Str(r.CustomerID)
	e.FieldStart("customerName")
	e.Str(r.CustomerName)
	e.FieldStart("rating")
	e.Int(r.Rating)
	e.FieldStart("comment")
	e.Str(r.Comment)
	e.FieldStart("createdAt")
	encodeTime(e, r.CreatedAt)
	e.FieldStart("verified")
	e.Bool(r.Verified)
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customerId")
	e.Str(o.CustomerID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("items")
	encodeList(e, o.Items, func(e *jx.Encoder, it order.Item) {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("category")
		e.Str(it.Category)
		e.FieldStart("unitPrice")
		encodeMoney(e, it.UnitPrice)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("subtotal")
		encodeMoney(e, it.Subtotal())
		e.ObjEnd()
	})
	e.FieldStart("subtotal")
	encodeMoney(e, o.Subtotal)
	e.FieldStart("discount")
	encodeMoney(e, o.Discount)
	e.FieldStart("total")
	encodeMoney(e, o.Total)
	e.FieldStart("createdAt")
	encodeTime(e, o.CreatedAt)
	if o.DeliveredAt != nil {
		e.FieldStart("deliveredAt")
		encodeTime(e, *o.DeliveredAt)
	}
	e.FieldStart("shippingAddress")
	e.Str(o.ShippingAddress)
	e.FieldStart("paymentMethod")
	e.Str(o.PaymentMethod)
	e.FieldStart("history")
	encodeList(e, o.History, func(e *jx.Encoder, h order.HistoryEntry) {
		e.ObjStart()
		e.FieldStart("at")
		encodeTime(e, h.At)
		e.FieldStart("status")
		e.Str(string(h.Status))
		e.FieldStart("message")
		e.Str(h.Message)
		e.ObjEnd()
	})
	e.ObjEnd()
}

func encodeResult(e *jx.Encoder, res checkout.Result) {
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(res.Success)
	e.FieldStart("message")
	e.Str(res.Message)
	if res.Order != nil {
		e.FieldStart("order")
		encodeOrder(e, res.Order)
	}
	e.ObjEnd()
}

func encodeCart(e *jx.Encoder, c *shop.CartSnapshot) {
	e.ObjStart()
	e.FieldStart("customerId")
	e.Str(c.CustomerID)
	e.FieldStart("items")
	encodeList(e, c.Lines, func(e *jx.Encoder, l shop.CartLine) {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(l.ProductID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("unitPrice")
		encodeMoney(e, l.UnitPrice)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("subtotal")
		encodeMoney(e, l.Subtotal)
		e.ObjEnd()
	})
	e.FieldStart("totalItems")
	e.Int(c.TotalItems)
	e.FieldStart("subtotal")
	encodeMoney(e, c.Subtotal)
	e.FieldStart("discountPercent")
	e.Float64(c.DiscountPercent.InexactFloat64())
	e.FieldStart("discount")
	encodeMoney(e, c.Discount)
	e.FieldStart("total")
	encodeMoney(e, c.Total)
	e.ObjEnd()
}

func encodeCustomer(e *jx.Encoder, c *shop.CustomerSummary) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("email")
	e.Str(c.Email)
	e.FieldStart("phone")
	e.Str(c.Phone)
	e.FieldStart("address")
	e.Str(c.Address)
	e.FieldStart("totalOrders")
	e.Int(c.TotalOrders)
	e.FieldStart("totalSpent")
	encodeMoney(e, c.TotalSpent)
	e.FieldStart("wishlist")
	encodeStrings(e, c.Wishlist)
	e.FieldStart("purchasedProducts")
	encodeStrings(e, c.PurchasedProducts)
	e.ObjEnd()
}

func encodeSales(e *jx.Encoder, s analytics.ProductSales) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(s.ProductID)
	e.FieldStart("name")
	e.Str(s.Name)
	e.FieldStart("units")
	e.Int(s.Units)
	e.ObjEnd()
}

// encodeCounts writes m as an object with sorted keys.
func encodeCounts[K ~string](e *jx.Encoder, m map[K]int) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(string(k))
		e.Int(m[k])
	}
	e.ObjEnd()
}
