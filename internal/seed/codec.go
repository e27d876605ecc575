package seed

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-sim/internal/domain/customer"
	"github.com/xenking/storefront-sim/internal/domain/product"
)

var newline = []byte{'\n'}

// InheritThreshold marks a decoded product whose seed line had no
// lowStockThreshold. Apply replaces it with the configured default.
const InheritThreshold = -1

const (
	kindProduct  = "product"
	kindCustomer = "customer"
)

// record is the flat union of product and customer fields.
type record struct {
	kind         string
	id           string
	name         string
	category     string
	description  string
	sellerID     string
	email        string
	phone        string
	address      string
	price        decimal.Decimal
	stock        int
	threshold    int
	hasThreshold bool
}

func (r *record) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "kind":
			r.kind, err = d.Str()
		case "id":
			r.id, err = d.Str()
		case "name":
			r.name, err = d.Str()
		case "category":
			r.category, err = d.Str()
		case "description":
			r.description, err = d.Str()
		case "sellerId":
			r.sellerID, err = d.Str()
		case "email":
			r.email, err = d.Str()
		case "phone":
			r.phone, err = d.Str()
		case "address":
			r.address, err = d.Str()
		case "price":
			r.price, err = decodeMoney(d)
		case "stock":
			r.stock, err = d.Int()
		case "lowStockThreshold":
			r.threshold, err = d.Int()
			r.hasThreshold = true
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
}

// product builds a product. A missing threshold becomes InheritThreshold for
// Apply to fill; an explicit 0 disables the low stock flag.
func (r *record) product() (*product.Product, error) {
	switch {
	case r.id == "":
		return nil, errors.New("product id is required")
	case r.price.IsNegative():
		return nil, errors.Wrapf(product.ErrInvalidPrice, "product %s", r.id)
	case r.stock < 0:
		return nil, errors.Errorf("product %s: negative stock", r.id)
	case r.hasThreshold && r.threshold < 0:
		return nil, errors.Errorf("product %s: negative low stock threshold", r.id)
	}
	p := product.New(r.id, r.name, r.category, r.description, r.price, r.stock, r.sellerID)
	p.LowStockThreshold = InheritThreshold
	if r.hasThreshold {
		p.LowStockThreshold = r.threshold
	}
	return p, nil
}

func (r *record) customer() (*customer.Customer, error) {
	if r.id == "" {
		return nil, errors.New("customer id is required")
	}
	return customer.New(r.id, r.name, r.email, r.phone, r.address), nil
}

func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, errors.New("expected number or string")
	}
}

// ReadDocument decodes {"products": [...], "customers": [...]} where every
// element uses the seed line fields without "kind".
func ReadDocument(r io.Reader) (*Data, error) {
	d := jx.Decode(r, 64*1024)
	var data Data
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				var rec record
				if err := rec.decode(d); err != nil {
					return err
				}
				p, err := rec.product()
				if err != nil {
					return err
				}
				data.Products = append(data.Products, p)
				return nil
			})
		case "customers":
			return d.Arr(func(d *jx.Decoder) error {
				var rec record
				if err := rec.decode(d); err != nil {
					return err
				}
				c, err := rec.customer()
				if err != nil {
					return err
				}
				data.Customers = append(data.Customers, c)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return &data, nil
}

// Writer produces a gzipped JSON-lines seed file.
type Writer struct {
	gz *pgzip.Writer
	e  jx.Encoder
}

// NewWriter wraps w. Close must be called to flush the gzip stream; it does
// not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{gz: pgzip.NewWriter(w)}
}

// Product appends a product line.
func (w *Writer) Product(p *product.Product) error {
	w.e.Reset()
	w.e.ObjStart()
	w.field("kind", kindProduct)
	w.field("id", p.ID)
	w.field("name", p.Name)
	w.field("category", p.Category)
	w.field("description", p.Description)
	w.field("sellerId", p.SellerID)
	w.field("price", p.Price.String())
	w.e.FieldStart("stock")
	w.e.Int(p.Stock)
	if p.LowStockThreshold >= 0 {
		w.e.FieldStart("lowStockThreshold")
		w.e.Int(p.LowStockThreshold)
	}
	w.e.ObjEnd()
	return w.flushLine()
}

// Customer appends a customer line.
func (w *Writer) Customer(c *customer.Customer) error {
	w.e.Reset()
	w.e.ObjStart()
	w.field("kind", kindCustomer)
	w.field("id", c.ID)
	w.field("name", c.Name)
	w.field("email", c.Email)
	w.field("phone", c.Phone)
	w.field("address", c.Address)
	w.e.ObjEnd()
	return w.flushLine()
}

// Close flushes and finishes the gzip stream.
func (w *Writer) Close() error {
	return w.gz.Close()
}

func (w *Writer) field(name, value string) {
	w.e.FieldStart(name)
	w.e.Str(value)
}

func (w *Writer) flushLine() error {
	if _, err := w.gz.Write(w.e.Bytes()); err != nil {
		return errors.Wrap(err, "write line")
	}
	if _, err := w.gz.Write(newline); err != nil {
		return errors.Wrap(err, "write line")
	}
	return nil
}
