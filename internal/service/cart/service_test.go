package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type memCarts struct {
	carts map[string]domain.Cart
	saves int
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[string]domain.Cart{}}
}

func (m *memCarts) Get(_ context.Context, userID string) (*domain.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return &domain.Cart{UserID: userID}, nil
	}
	c.Items = append([]domain.CartLine(nil), c.Items...)
	return &c, nil
}

func (m *memCarts) GetForUpdate(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.Get(ctx, userID)
}

func (m *memCarts) Save(_ context.Context, c domain.Cart) error {
	m.saves++
	m.carts[c.UserID] = c
	return nil
}

type stubProductRepo struct {
	products map[string]domain.Product
}

func (s stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type inlineTx struct{}

func (inlineTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(carts *memCarts) *Service {
	products := stubProductRepo{products: map[string]domain.Product{
		"mug": {ID: "mug", Name: "Mug", PriceCents: 500},
		"tee": {ID: "tee", Name: "Tee", PriceCents: 1200, Variants: []domain.Variant{{Name: "S", PriceCents: 1200}, {Name: "L", PriceCents: 1500}}},
	}}
	return New(carts, products, inlineTx{}, nil)
}

func TestAddItemMergesSameLine(t *testing.T) {
	carts := newMemCarts()
	svc := newTestService(carts)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "L", Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "L", Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 || cart.Items[0].UnitPriceCents != 1500 {
		t.Fatalf("unexpected line %+v", cart.Items[0])
	}
}

func TestAddItemKeepsVariantsApart(t *testing.T) {
	svc := newTestService(newMemCarts())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "S", Quantity: 1}); err != nil {
		t.Fatalf("add S: %v", err)
	}
	cart, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "L"})
	if err != nil {
		t.Fatalf("add L: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart.Items))
	}
	if cart.Items[1].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", cart.Items[1].Quantity)
	}
	if cart.TotalCents() != 2700 {
		t.Fatalf("unexpected total %d", cart.TotalCents())
	}
}

func TestAddItemErrors(t *testing.T) {
	svc := newTestService(newMemCarts())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "XXL"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateItemRejectsNonPositiveQuantity(t *testing.T) {
	carts := newMemCarts()
	svc := newTestService(carts)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "mug", Quantity: 4}); err != nil {
		t.Fatalf("add: %v", err)
	}
	saves := carts.saves
	for _, qty := range []int{0, -2} {
		_, err := svc.UpdateItem(ctx, "u1", LineInput{ProductID: "mug", Quantity: qty})
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected invalid quantity, got %v", qty, err)
		}
	}
	if carts.saves != saves {
		t.Fatalf("rejected update must not write")
	}
	if got := carts.carts["u1"].Items[0].Quantity; got != 4 {
		t.Fatalf("quantity changed to %d", got)
	}

	cart, err := svc.UpdateItem(ctx, "u1", LineInput{ProductID: "mug", Quantity: 7})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	svc := newTestService(newMemCarts())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "mug"}); err != nil {
		t.Fatalf("add mug: %v", err)
	}
	if _, err := svc.AddItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "S"}); err != nil {
		t.Fatalf("add tee: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, "u1", LineInput{ProductID: "tee", Variant: "S"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "mug" {
		t.Fatalf("unexpected cart %+v", cart.Items)
	}
	if _, err := svc.RemoveItem(ctx, "u1", LineInput{ProductID: "absent"}); err != nil {
		t.Fatalf("removing an absent line should be a no-op, got %v", err)
	}
}

func TestAddItemDefaultsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(newMemCarts())

	cart, err := svc.AddItem(context.Background(), "u1", LineInput{ProductID: "mug", Quantity: -3})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("expected one line with quantity 1, got %+v", cart.Items)
	}
}
