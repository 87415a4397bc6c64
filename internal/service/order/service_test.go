package order

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOrders struct {
	orders    map[string]domain.Order
	createErr error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]domain.Order{}}
}

func (m *memOrders) Create(_ context.Context, o domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[o.ID] = o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.History = slices.Clone(o.History)
	return &o, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ListAll(_ context.Context) ([]domain.OrderWithOwner, error) {
	var out []domain.OrderWithOwner
	for _, o := range m.orders {
		out = append(out, domain.OrderWithOwner{Order: o, UserEmail: "Unknown"})
	}
	return out, nil
}

func (m *memOrders) Apply(_ context.Context, id string, t orderrepo.Transition) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if len(t.From) > 0 && !slices.Contains(t.From, o.Status) {
		return domain.ErrInvalidTransition
	}
	o.Status = t.To
	o.History = append(slices.Clone(o.History), t.Entry)
	if t.PaymentMethod != "" {
		o.PaymentMethod = t.PaymentMethod
	}
	if t.PaidAt != nil {
		o.PaidAt = t.PaidAt
	}
	o.UpdatedAt = t.Entry.Timestamp
	m.orders[id] = o
	return nil
}

type memCarts struct {
	carts map[string]domain.Cart
}

func (m *memCarts) GetForUpdate(_ context.Context, userID string) (*domain.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return &domain.Cart{UserID: userID}, nil
	}
	c.Items = slices.Clone(c.Items)
	return &c, nil
}

func (m *memCarts) Save(_ context.Context, c domain.Cart) error {
	m.carts[c.UserID] = c
	return nil
}

// rollbackTx keeps a snapshot of both stores and restores it when fn fails.
type rollbackTx struct {
	orders *memOrders
	carts  *memCarts
}

func (r rollbackTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	orders := make(map[string]domain.Order, len(r.orders.orders))
	for k, v := range r.orders.orders {
		orders[k] = v
	}
	carts := make(map[string]domain.Cart, len(r.carts.carts))
	for k, v := range r.carts.carts {
		carts[k] = v
	}
	if err := fn(ctx); err != nil {
		r.orders.orders = orders
		r.carts.carts = carts
		return err
	}
	return nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memOrders, *memCarts) {
	orders := newMemOrders()
	carts := &memCarts{carts: map[string]domain.Cart{}}
	svc := New(orders, carts, rollbackTx{orders: orders, carts: carts}, nil)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "order-1" }
	return svc, orders, carts
}

func cartWith(lines ...domain.CartLine) domain.Cart {
	return domain.Cart{UserID: "u1", Items: lines}
}

var (
	lineA = domain.CartLine{ProductID: "a", Name: "Mug", UnitPriceCents: 500, Quantity: 3}
	lineB = domain.CartLine{ProductID: "b", Variant: domain.OptionalVariant("L"), Name: "Tee", UnitPriceCents: 1500, Quantity: 1}
)

func TestCheckoutMovesSelectedLinesOnly(t *testing.T) {
	svc, orders, carts := newTestService()
	carts.carts["u1"] = cartWith(lineA, lineB)

	o, err := svc.Checkout(context.Background(), "u1", []string{"a|"})
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "a", o.Items[0].ProductID)
	assert.Equal(t, int64(1500), o.Items[0].SubtotalCents)
	assert.Equal(t, int64(1500), o.TotalCents)
	assert.Equal(t, domain.StatusToPay, o.Status)
	require.Len(t, o.History, 1)
	assert.Equal(t, PlacedLabel, o.History[0].Label)

	require.Contains(t, orders.orders, "order-1")
	kept := carts.carts["u1"].Items
	require.Len(t, kept, 1)
	assert.Equal(t, "b|L", kept[0].Key())
}

func TestCheckoutUsesCartPriceSnapshot(t *testing.T) {
	svc, _, carts := newTestService()
	carts.carts["u1"] = cartWith(lineB)

	o, err := svc.Checkout(context.Background(), "u1", []string{"b|L"})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), o.TotalCents)
	assert.Empty(t, carts.carts["u1"].Items)
}

func TestCheckoutPreconditions(t *testing.T) {
	svc, _, carts := newTestService()

	_, err := svc.Checkout(context.Background(), "u1", []string{"a|"})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	carts.carts["u1"] = cartWith(lineA)
	_, err = svc.Checkout(context.Background(), "u1", []string{"zzz|"})
	assert.ErrorIs(t, err, domain.ErrNothingSelected)
	assert.Len(t, carts.carts["u1"].Items, 1)
}

func TestCheckoutRollsBackCartWhenOrderFails(t *testing.T) {
	svc, orders, carts := newTestService()
	carts.carts["u1"] = cartWith(lineA, lineB)
	orders.createErr = errors.New("insert failed")

	_, err := svc.Checkout(context.Background(), "u1", []string{"a|", "b|L"})
	require.Error(t, err)
	assert.Len(t, carts.carts["u1"].Items, 2)
	assert.Empty(t, orders.orders)
}

func placeOrder(t *testing.T, svc *Service, carts *memCarts) *domain.Order {
	t.Helper()
	carts.carts["u1"] = cartWith(lineA, lineB)
	o, err := svc.Checkout(context.Background(), "u1", []string{"a|", "b|L"})
	require.NoError(t, err)
	return o
}

func TestTransitionsAppendHistoryAndKeepTotals(t *testing.T) {
	svc, orders, carts := newTestService()
	ctx := context.Background()
	placed := placeOrder(t, svc, carts)
	first := placed.History[0]

	require.NoError(t, svc.Pay(ctx, "u1", placed.ID, "gcash"))
	require.NoError(t, svc.UpdateStatus(ctx, placed.ID, domain.StatusToReceive))
	require.NoError(t, svc.MarkCompleted(ctx, "u1", placed.ID))

	got := orders.orders[placed.ID]
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, placed.TotalCents, got.TotalCents)
	assert.Equal(t, placed.Items, got.Items)
	assert.Equal(t, "gcash", got.PaymentMethod)
	require.NotNil(t, got.PaidAt)

	require.Len(t, got.History, 4)
	assert.Equal(t, first, got.History[0])
	assert.Equal(t, domain.ActorCustomer, got.History[1].UpdatedBy)
	assert.Equal(t, domain.StatusToShip, got.History[1].Status)
	assert.Equal(t, domain.ActorAdmin, got.History[2].UpdatedBy)
	assert.Equal(t, domain.StatusToReceive.Label(), got.History[2].Label)
	assert.Equal(t, domain.StatusCompleted, got.History[3].Status)
}

func TestPayRequiresToPay(t *testing.T) {
	svc, orders, carts := newTestService()
	ctx := context.Background()
	placed := placeOrder(t, svc, carts)

	require.NoError(t, svc.Pay(ctx, "u1", placed.ID, "card"))
	assert.ErrorIs(t, svc.Pay(ctx, "u1", placed.ID, "card"), domain.ErrInvalidTransition)
	assert.Len(t, orders.orders[placed.ID].History, 2)

	assert.ErrorIs(t, svc.Pay(ctx, "u1", placed.ID, " "), domain.ErrValidation)
}

func TestMarkCompletedRequiresPayment(t *testing.T) {
	svc, orders, carts := newTestService()
	placed := placeOrder(t, svc, carts)

	err := svc.MarkCompleted(context.Background(), "u1", placed.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StatusToPay, orders.orders[placed.ID].Status)
}

func TestCustomerActionsOnForeignOrdersAreIgnored(t *testing.T) {
	svc, orders, carts := newTestService()
	ctx := context.Background()
	placed := placeOrder(t, svc, carts)

	assert.NoError(t, svc.Pay(ctx, "intruder", placed.ID, "card"))
	assert.NoError(t, svc.MarkCompleted(ctx, "intruder", placed.ID))
	assert.NoError(t, svc.Pay(ctx, "u1", "missing", "card"))
	assert.Equal(t, domain.StatusToPay, orders.orders[placed.ID].Status)
	assert.Len(t, orders.orders[placed.ID].History, 1)

	_, err := svc.GetForUser(ctx, "intruder", placed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusAcceptsAnyKnownStatus(t *testing.T) {
	svc, orders, carts := newTestService()
	ctx := context.Background()
	placed := placeOrder(t, svc, carts)

	require.NoError(t, svc.UpdateStatus(ctx, placed.ID, domain.StatusCompleted))
	require.NoError(t, svc.UpdateStatus(ctx, placed.ID, domain.StatusRefund))
	assert.Equal(t, domain.StatusRefund, orders.orders[placed.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, placed.ID, "lost"), domain.ErrValidation)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "missing", domain.StatusCancelled), domain.ErrNotFound)
}

func TestStatusCountsAndGrouping(t *testing.T) {
	svc, orders, _ := newTestService()
	orders.orders["o1"] = domain.Order{ID: "o1", UserID: "u1", Status: domain.StatusToPay}
	orders.orders["o2"] = domain.Order{ID: "o2", UserID: "u1", Status: domain.StatusToPay}
	orders.orders["o3"] = domain.Order{ID: "o3", UserID: "u1", Status: domain.StatusCompleted}
	orders.orders["o4"] = domain.Order{ID: "o4", UserID: "u2", Status: domain.StatusRefund}

	sum, err := svc.StatusCounts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalOrders)
	assert.Equal(t, 2, sum.Counts[domain.StatusToPay])
	assert.Equal(t, 1, sum.Counts[domain.StatusCompleted])
	assert.Len(t, sum.Counts, len(domain.OrderStatuses))

	grouped, err := svc.GroupByStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, grouped[domain.StatusToPay], 2)
	assert.Empty(t, grouped[domain.StatusRefund])
}
