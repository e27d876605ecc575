package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is applied to products created without an explicit
// threshold.
const DefaultLowStockThreshold = 10

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicate is returned when a product ID is already registered.
	ErrDuplicate = errors.New("product already exists")
	// ErrInsufficientStock is matched by every *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("price must not be negative")
)

// InsufficientStockError reports a request for more units than are on hand.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID                string
	Name              string
	Category          string
	Description       string
	SellerID          string
	Price             decimal.Decimal
	Stock             int
	LowStockThreshold int
	Reviews           []Review
}

// New creates a product with the default low stock threshold.
func New(id, name, category, description string, price decimal.Decimal, stock int, sellerID string) *Product {
	return &Product{
		ID:                id,
		Name:              name,
		Category:          category,
		Description:       description,
		SellerID:          sellerID,
		Price:             price,
		Stock:             stock,
		LowStockThreshold: DefaultLowStockThreshold,
	}
}

// InStock reports whether at least one unit is on hand.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Available reports whether qty units can be taken from stock.
func (p *Product) Available(qty int) bool {
	return p.Stock >= qty
}

// IsLowStock reports whether stock is positive but at or under the threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// ReduceStock takes qty units from stock. Stock never goes negative.
func (p *Product) ReduceStock(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > p.Stock {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: qty,
			Available: p.Stock,
		}
	}
	p.Stock -= qty
	return nil
}

// IncreaseStock returns qty units to stock.
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += qty
	return nil
}

// AddReview appends a review, preserving insertion order.
func (p *Product) AddReview(r Review) {
	p.Reviews = append(p.Reviews, r)
}

// AverageRating is the mean review rating, or 0 without reviews.
func (p *Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range p.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(p.Reviews))
}

// TotalReviews returns the number of reviews.
func (p *Product) TotalReviews() int {
	return len(p.Reviews)
}

// Clone returns a deep copy that shares no mutable state with p.
func (p *Product) Clone() *Product {
	c := *p
	if p.Reviews != nil {
		c.Reviews = make([]Review, len(p.Reviews))
		copy(c.Reviews, p.Reviews)
	}
	return &c
}

// Repository stores products in insertion order.
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
}
