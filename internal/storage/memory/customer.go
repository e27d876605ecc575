package memory

import (
	"context"

	"github.com/xenking/storefront-sim/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository in memory.
type CustomerRepository struct {
	items *ordered[*customer.Customer]
}

// NewCustomerRepository returns an empty CustomerRepository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{items: newOrdered[*customer.Customer]()}
}

// List returns all customers in registration order.
func (r *CustomerRepository) List(_ context.Context) ([]*customer.Customer, error) {
	return r.items.list(), nil
}

// GetByID returns customer.ErrNotFound for unknown IDs.
func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := r.items.get(id)
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

// Create returns customer.ErrDuplicate if the ID is taken.
func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	if !r.items.put(c.ID, c) {
		return customer.ErrDuplicate
	}
	return nil
}
