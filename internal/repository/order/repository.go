package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// Transition describes one status move. From, when non-empty, guards the
// update: it applies only while the order is in one of those statuses.
type Transition struct {
	From          []domain.OrderStatus
	To            domain.OrderStatus
	Entry         domain.HistoryEntry
	PaymentMethod string
	PaidAt        *time.Time
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.OrderWithOwner, error)
	// ListCreatedBetween returns orders with start <= createdAt <= end, oldest
	// first. An empty status matches every status.
	ListCreatedBetween(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error)
	// CountByProduct counts orders holding at least one line of the product.
	CountByProduct(ctx context.Context, productID string) (int, error)
	// Apply moves the order and appends t.Entry to its history in one statement.
	Apply(ctx context.Context, id string, t Transition) error
}
