package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"

	"github.com/google/uuid"
)

const (
	featuredCount = 3
	newestCount   = 6
)

type orderCounter interface {
	CountByProduct(ctx context.Context, productID string) (int, error)
}

type Service struct {
	repo   productrepo.Repository
	orders orderCounter
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func New(repo productrepo.Repository, orders orderCounter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, orders: orders, logger: logger, now: time.Now, newID: uuid.NewString}
}

// VariantInput is one row of the variant editor. Rows with an empty name or
// price are ignored.
type VariantInput struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Input is the admin product form. Prices are decimal strings.
type Input struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	CategoryID  string         `json:"categoryId"`
	ImgURL      string         `json:"imgUrl"`
	HasVariants bool           `json:"hasVariants"`
	Variants    []VariantInput `json:"variants"`
}

func (s *Service) List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Featured returns the first products in catalog order.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{Order: productrepo.OrderOldest, Limit: featuredCount})
}

func (s *Service) Newest(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.Filter{Order: productrepo.OrderNewest, Limit: newestCount})
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.build(ctx, in, "")
	if err != nil {
		return nil, err
	}
	p.ID = s.newID()
	p.CreatedAt = s.now().UTC()
	created, err := s.repo.Create(ctx, *p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, duplicateName(p.Name)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.build(ctx, in, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, *p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, duplicateName(p.Name)
	}
	return updated, err
}

// Delete refuses to remove a product that any order line still points at.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.orders.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Printf("product service: delete id=%s blocked orders=%d", id, n)
		return domain.Invalid(fmt.Sprintf("Cannot delete this product because it is already used in %d orders.", n))
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(ctx context.Context, in Input, selfID string) (*domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CategoryID:  strings.TrimSpace(in.CategoryID),
		ImgURL:      strings.TrimSpace(in.ImgURL),
	}
	if p.Name == "" || p.CategoryID == "" {
		return nil, domain.Invalid("Name and Category are required.")
	}

	if in.HasVariants {
		for _, v := range in.Variants {
			name := strings.TrimSpace(v.Name)
			if name == "" || strings.TrimSpace(v.Price) == "" {
				continue
			}
			cents, err := domain.ParseCents(v.Price)
			if err != nil {
				return nil, domain.Invalid("Variant prices must be valid positive numbers.")
			}
			p.Variants = append(p.Variants, domain.Variant{Name: name, PriceCents: cents})
		}
	}
	if len(p.Variants) > 0 {
		p.PriceCents = p.DisplayPriceCents()
	} else {
		cents, err := domain.ParseCents(in.Price)
		if err != nil {
			return nil, err
		}
		p.PriceCents = cents
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameTaken(ctx, p.Name, selfID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateName(p.Name)
	}
	return &p, nil
}

func duplicateName(name string) error {
	return domain.Invalid(fmt.Sprintf("A product with the name %q already exists.", name))
}
