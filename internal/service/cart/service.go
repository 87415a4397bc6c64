package cart

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	GetForUpdate(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo        cartRepo
	productRepo productRepo
	tx          db.TxManager
	logger      *log.Logger
	now         func() time.Time
}

func New(repo cartRepo, productRepo productRepo, tx db.TxManager, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, productRepo: productRepo, tx: tx, logger: logger, now: time.Now}
}

// LineInput identifies a cart line by product and optional variant name.
type LineInput struct {
	ProductID string `json:"productId" form:"productId"`
	Variant   string `json:"variant" form:"variant"`
	Quantity  int    `json:"quantity" form:"quantity"`
}

func (in LineInput) variant() *string {
	return domain.OptionalVariant(strings.TrimSpace(in.Variant))
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, userID)
}

// AddItem snapshots the product (or variant) price and merges the quantity
// into an existing line with the same identity.
func (s *Service) AddItem(ctx context.Context, userID string, in LineInput) (*domain.Cart, error) {
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	variant := in.variant()
	price := product.PriceCents
	if variant != nil {
		v, ok := product.Variant(*variant)
		if !ok {
			return nil, domain.Invalid("Unknown variant.")
		}
		price = v.PriceCents
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) {
		for i := range cart.Items {
			if cart.Items[i].Matches(product.ID, variant) {
				cart.Items[i].Quantity += qty
				return
			}
		}
		cart.Items = append(cart.Items, domain.CartLine{
			ProductID:      product.ID,
			Variant:        variant,
			Name:           product.Name,
			ImgURL:         product.ImgURL,
			UnitPriceCents: price,
			Quantity:       qty,
		})
	})
}

// UpdateItem overwrites a line's quantity. Quantities below one are rejected;
// removal goes through RemoveItem.
func (s *Service) UpdateItem(ctx context.Context, userID string, in LineInput) (*domain.Cart, error) {
	if in.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	variant := in.variant()
	return s.mutate(ctx, userID, func(cart *domain.Cart) {
		for i := range cart.Items {
			if cart.Items[i].Matches(in.ProductID, variant) {
				cart.Items[i].Quantity = in.Quantity
				return
			}
		}
	})
}

// RemoveItem drops the matching line; absent lines are ignored.
func (s *Service) RemoveItem(ctx context.Context, userID string, in LineInput) (*domain.Cart, error) {
	variant := in.variant()
	return s.mutate(ctx, userID, func(cart *domain.Cart) {
		kept := cart.Items[:0]
		for _, line := range cart.Items {
			if !line.Matches(in.ProductID, variant) {
				kept = append(kept, line)
			}
		}
		cart.Items = kept
	})
}

func (s *Service) mutate(ctx context.Context, userID string, apply func(*domain.Cart)) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		apply(cart)
		cart.UserID = userID
		cart.UpdatedAt = s.now().UTC()
		if err := s.repo.Save(ctx, *cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		s.logger.Printf("cart service: user_id=%s error=%v", userID, err)
		return nil, err
	}
	return out, nil
}
