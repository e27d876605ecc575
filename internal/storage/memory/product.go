package memory

import (
	"context"

	"github.com/xenking/storefront-sim/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository in memory.
type ProductRepository struct {
	items *ordered[*product.Product]
}

// NewProductRepository returns an empty ProductRepository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: newOrdered[*product.Product]()}
}

// List returns all products in insertion order.
func (r *ProductRepository) List(_ context.Context) ([]*product.Product, error) {
	return r.items.list(), nil
}

// GetByID returns product.ErrNotFound for unknown IDs.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := r.items.get(id)
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

// Create returns product.ErrDuplicate if the ID is taken.
func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	if !r.items.put(p.ID, p) {
		return product.ErrDuplicate
	}
	return nil
}
