package user

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists and fetches user accounts.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// ListCustomersWithStats returns non-admin users with lifetime order counts and totals.
	ListCustomersWithStats(ctx context.Context) ([]domain.UserStats, error)
	UpdateProfile(ctx context.Context, id, address, contactNumber string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Ban(ctx context.Context, id string, ban domain.BanDetails) error
	Unban(ctx context.Context, id string) error
}
