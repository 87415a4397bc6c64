// Package order turns selected cart lines into orders and drives the order
// status lifecycle.
package order

import (
	"context"
	"errors"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"

	"github.com/google/uuid"
)

// PlacedLabel is the history label of the entry written at checkout.
const PlacedLabel = "Order placed"

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.OrderWithOwner, error)
	Apply(ctx context.Context, id string, t orderrepo.Transition) error
}

type cartRepo interface {
	GetForUpdate(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

type Service struct {
	orders orderRepo
	carts  cartRepo
	tx     db.TxManager
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func New(orders orderRepo, carts cartRepo, tx db.TxManager, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, carts: carts, tx: tx, logger: logger, now: time.Now, newID: uuid.NewString}
}

// Checkout moves the cart lines whose "productId|variant" keys are selected
// into a new to_pay order. The order insert and the cart trim commit together.
func (s *Service) Checkout(ctx context.Context, userID string, selected []string) (*domain.Order, error) {
	keys := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		keys[strings.TrimSpace(k)] = struct{}{}
	}

	var placed *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return domain.ErrEmptyCart
		}

		var toOrder []domain.OrderLine
		toKeep := []domain.CartLine{}
		var total int64
		for _, line := range cart.Items {
			if _, ok := keys[line.Key()]; !ok {
				toKeep = append(toKeep, line)
				continue
			}
			sub := line.UnitPriceCents * int64(line.Quantity)
			toOrder = append(toOrder, domain.OrderLine{CartLine: line, SubtotalCents: sub})
			total += sub
		}
		if len(toOrder) == 0 {
			return domain.ErrNothingSelected
		}

		now := s.now().UTC()
		o := domain.Order{
			ID:         s.newID(),
			UserID:     userID,
			Items:      toOrder,
			TotalCents: total,
			Status:     domain.StatusToPay,
			History: []domain.HistoryEntry{{
				Status:    domain.StatusToPay,
				Label:     PlacedLabel,
				UpdatedBy: domain.ActorCustomer,
				Timestamp: now,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		cart.Items = toKeep
		cart.UpdatedAt = now
		if err := s.carts.Save(ctx, *cart); err != nil {
			return err
		}
		placed = &o
		return nil
	})
	if err != nil {
		s.logger.Printf("order service: checkout user_id=%s error=%v", userID, err)
		return nil, err
	}
	s.logger.Printf("order service: placed id=%s user_id=%s total=%d", placed.ID, userID, placed.TotalCents)
	return placed, nil
}

// Pay records the payment method and moves a to_pay order to to_ship.
// Unknown orders and orders of other users are ignored.
func (s *Service) Pay(ctx context.Context, userID, orderID, method string) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return domain.Invalid("Please choose a payment method.")
	}
	o, ok, err := s.owned(ctx, userID, orderID)
	if err != nil || !ok {
		return err
	}
	if o.Status != domain.StatusToPay {
		return domain.ErrInvalidTransition
	}
	now := s.now().UTC()
	return s.orders.Apply(ctx, orderID, orderrepo.Transition{
		From:          []domain.OrderStatus{domain.StatusToPay},
		To:            domain.StatusToShip,
		Entry:         entry(domain.StatusToShip, domain.ActorCustomer, now),
		PaymentMethod: method,
		PaidAt:        &now,
	})
}

// MarkCompleted lets the owner confirm receipt of a paid order.
func (s *Service) MarkCompleted(ctx context.Context, userID, orderID string) error {
	o, ok, err := s.owned(ctx, userID, orderID)
	if err != nil || !ok {
		return err
	}
	completable := []domain.OrderStatus{domain.StatusToShip, domain.StatusToReceive}
	if !slices.Contains(completable, o.Status) {
		return domain.ErrInvalidTransition
	}
	return s.orders.Apply(ctx, orderID, orderrepo.Transition{
		From:  completable,
		To:    domain.StatusCompleted,
		Entry: entry(domain.StatusCompleted, domain.ActorCustomer, s.now().UTC()),
	})
}

// UpdateStatus is the admin override: any known status, from any status.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.Invalid("Unknown order status.")
	}
	err := s.orders.Apply(ctx, orderID, orderrepo.Transition{
		To:    status,
		Entry: entry(status, domain.ActorAdmin, s.now().UTC()),
	})
	if err != nil {
		s.logger.Printf("order service: admin status id=%s status=%s error=%v", orderID, status, err)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetForUser returns the order only when userID owns it.
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, ok, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order, newest first, with the owner's email.
func (s *Service) ListAll(ctx context.Context) ([]domain.OrderWithOwner, error) {
	return s.orders.ListAll(ctx)
}

// GroupByStatus buckets the user's orders for the purchase history view.
// Every status has an entry, possibly empty.
func (s *Service) GroupByStatus(ctx context.Context, userID string) (map[domain.OrderStatus][]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.OrderStatus][]domain.Order, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		grouped[st] = []domain.Order{}
	}
	for _, o := range orders {
		if _, ok := grouped[o.Status]; ok {
			grouped[o.Status] = append(grouped[o.Status], o)
		}
	}
	return grouped, nil
}

// StatusSummary feeds the customer dashboard.
type StatusSummary struct {
	Counts      map[domain.OrderStatus]int `json:"statusCounts"`
	TotalOrders int                        `json:"totalOrders"`
}

func (s *Service) StatusCounts(ctx context.Context, userID string) (*StatusSummary, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &StatusSummary{Counts: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)), TotalOrders: len(orders)}
	for _, st := range domain.OrderStatuses {
		sum.Counts[st] = 0
	}
	for _, o := range orders {
		if _, ok := sum.Counts[o.Status]; ok {
			sum.Counts[o.Status]++
		}
	}
	return sum, nil
}

func (s *Service) owned(ctx context.Context, userID, orderID string) (*domain.Order, bool, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if o.UserID != userID {
		s.logger.Printf("order service: user_id=%s touched foreign order id=%s", userID, orderID)
		return nil, false, nil
	}
	return o, true, nil
}

func entry(status domain.OrderStatus, actor string, at time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{Status: status, Label: status.Label(), UpdatedBy: actor, Timestamp: at}
}
