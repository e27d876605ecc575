package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Item is a line item frozen at order creation. Later catalog changes never
// alter it.
type Item struct {
	ProductID string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal is UnitPrice times Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HistoryEntry is a timestamped status log line.
type HistoryEntry struct {
	At      time.Time
	Status  Status
	Message string
}

// Order is a placed customer order.
type Order struct {
	ID              string
	CustomerID      string
	Items           []Item
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	CreatedAt       time.Time
	DeliveredAt     *time.Time
	ShippingAddress string
	PaymentMethod   string
	History         []HistoryEntry
}

// Draft holds everything needed to open an order.
type Draft struct {
	ID              string
	CustomerID      string
	Items           []Item
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
}

// New opens a PENDING order from d. Items are copied and money is rounded to
// cents.
func New(d Draft, now time.Time) *Order {
	items := make([]Item, len(d.Items))
	copy(items, d.Items)
	return &Order{
		ID:              d.ID,
		CustomerID:      d.CustomerID,
		Items:           items,
		Subtotal:        d.Subtotal.Round(2),
		Discount:        d.Discount.Round(2),
		Total:           d.Total.Round(2),
		Status:          StatusPending,
		CreatedAt:       now,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		History: []HistoryEntry{
			{At: now, Status: StatusPending, Message: "Order created"},
		},
	}
}

// UpdateStatus moves the order to next if the lifecycle allows it. On
// failure the order is unchanged.
func (o *Order) UpdateStatus(next Status, now time.Time) error {
	if !CanTransition(o.Status, next) {
		return &TransitionError{From: o.Status, To: next}
	}
	o.Status = next
	o.History = append(o.History, HistoryEntry{
		At:      now,
		Status:  next,
		Message: "Status changed to: " + string(next),
	})
	if next == StatusDelivered && o.DeliveredAt == nil {
		at := now
		o.DeliveredAt = &at
	}
	return nil
}

// CanCancel reports whether the order has not shipped yet.
func (o *Order) CanCancel() bool {
	return CanTransition(o.Status, StatusCancelled)
}

// Cancel moves the order to CANCELLED. Restocking is the caller's job.
func (o *Order) Cancel(now time.Time) error {
	return o.UpdateStatus(StatusCancelled, now)
}

// TotalItems sums item quantities.
func (o *Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Contains reports whether productID is one of the order's items.
func (o *Order) Contains(productID string) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	c.History = append([]HistoryEntry(nil), o.History...)
	if o.DeliveredAt != nil {
		at := *o.DeliveredAt
		c.DeliveredAt = &at
	}
	return &c
}

// Repository stores orders in placement order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
}
