package session

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// Repository is the server-side session store. Get returns domain.ErrNotFound
// for unknown ids.
type Repository interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
