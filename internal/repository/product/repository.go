package product

import (
	"context"

	"storefront/internal/domain"
)

// Order selects the listing order.
type Order int

const (
	OrderName Order = iota
	OrderNewest
	OrderOldest
)

// Filter narrows List. Zero values mean no restriction.
type Filter struct {
	// Search is a case-insensitive substring of the product name.
	Search     string
	CategoryID string
	Limit      int
	Order      Order
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
