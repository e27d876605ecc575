package memory

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-sim/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository in memory.
type OrderRepository struct {
	items *ordered[*order.Order]
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{items: newOrdered[*order.Order]()}
}

// Create stores a new order. Order IDs are expected to be unique.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	if !r.items.put(o.ID, o) {
		return errors.Errorf("order %q already exists", o.ID)
	}
	return nil
}

// GetByID returns order.ErrNotFound for unknown IDs.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := r.items.get(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

// List returns all orders in placement order.
func (r *OrderRepository) List(_ context.Context) ([]*order.Order, error) {
	return r.items.list(), nil
}
