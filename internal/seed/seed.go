// Package seed loads a small demo catalogue and an admin account for manual
// testing.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type categoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type productWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Admin is the optional admin account to create.
type Admin struct {
	Email    string
	Password string
}

var (
	plushID = "5d1c5b6e-0c55-4c1b-9a57-6f0a1a000001"
	mugsID  = "5d1c5b6e-0c55-4c1b-9a57-6f0a1a000002"
)

func categories() []domain.Category {
	return []domain.Category{
		{ID: plushID, Name: "Plush", Description: "Soft toys"},
		{ID: mugsID, Name: "Mugs", Description: "Ceramic drinkware"},
	}
}

func products() []domain.Product {
	return []domain.Product{
		{
			ID:          "5d1c5b6e-0c55-4c1b-9a57-6f0a1a000101",
			Name:        "Demo Bear",
			Description: "Plush bear in two sizes",
			CategoryID:  plushID,
			Variants: []domain.Variant{
				{Name: "Small", PriceCents: 1299},
				{Name: "Large", PriceCents: 2499},
			},
		},
		{
			ID:          "5d1c5b6e-0c55-4c1b-9a57-6f0a1a000102",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  899,
			CategoryID:  mugsID,
		},
	}
}

// Apply upserts the demo catalogue by fixed ids, so running it twice leaves
// one copy of each row. The admin is created only when absent.
func Apply(ctx context.Context, pool *pgxpool.Pool, cats categoryWriter, prods productWriter, admin Admin) error {
	now := time.Now().UTC()
	for _, c := range categories() {
		c.UpdatedAt = now
		if _, err := cats.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Name, err)
		}
	}
	for _, p := range products() {
		if p.HasVariants() {
			p.PriceCents = p.DisplayPriceCents()
		}
		p.UpdatedAt = now
		if _, err := prods.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	if strings.TrimSpace(admin.Email) == "" {
		return nil
	}
	if err := ensureAdmin(ctx, pool, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	if admin.Password == "" {
		return fmt.Errorf("admin password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (id, email, password_hash, first_name, role, is_email_verified)
VALUES ($1, $2, $3, 'Admin', $4, TRUE)
ON CONFLICT ((lower(email))) DO NOTHING
`
	_, err = pool.Exec(ctx, q, uuid.NewString(), strings.ToLower(strings.TrimSpace(admin.Email)), string(hash), string(domain.RoleAdmin))
	return err
}
