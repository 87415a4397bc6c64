package category

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/category"

	"github.com/google/uuid"
)

type Service struct {
	repo  category.Repository
	now   func() time.Time
	newID func() string
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString}
}

// Input is the admin category form.
type Input struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("Category name is required.")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Category{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now().UTC(),
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, domain.Category{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		UpdatedAt:   s.now().UTC(),
	})
}

// Delete removes the category. Products that referenced it keep their
// category id and read back as Uncategorized.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
