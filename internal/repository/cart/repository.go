package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores one cart document per user.
type Repository interface {
	// Get returns the user's cart, or an empty cart when none was saved.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// GetForUpdate is Get with the cart row locked until the surrounding
	// transaction ends. It must run inside db.TxManager.WithTransaction.
	GetForUpdate(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}
