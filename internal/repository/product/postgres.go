package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectProduct = `
SELECT p.id::text, p.name, p.description, p.price_cents, COALESCE(p.category_id::text, ''),
       COALESCE(c.name, ''), p.img_url, p.variants, p.created_at, p.updated_at
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
`

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, fmt.Sprintf(`p.name ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if f.CategoryID != "" {
		if !domain.ValidID(f.CategoryID) {
			return nil, nil
		}
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf(`p.category_id = $%d`, len(args)))
	}

	q := selectProduct
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	switch f.Order {
	case OrderNewest:
		q += "ORDER BY p.created_at DESC, p.name ASC\n"
	case OrderOldest:
		q += "ORDER BY p.created_at ASC, p.name ASC\n"
	default:
		q += "ORDER BY lower(p.name) ASC\n"
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf("LIMIT $%d\n", len(args))
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list search=%q category=%s error=%v", f.Search, f.CategoryID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	p, err := r.scanProduct(db.Conn(ctx, r.pool).QueryRow(ctx, selectProduct+`WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s not found", id)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT 1 FROM products
    WHERE lower(name) = lower($1) AND ($2 = '' OR id::text <> $2)
)
`
	var taken bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, q, strings.TrimSpace(name), excludeID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := domain.CheckCategoryID(p.CategoryID); err != nil {
		return nil, err
	}
	variants, err := encodeVariants(p.Variants)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (id, name, description, price_cents, category_id, img_url, variants, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $8)
`
	if _, err := db.Conn(ctx, r.pool).Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, p.CategoryID, p.ImgURL, variants, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", p.ID, p.Name)
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if !domain.ValidID(p.ID) {
		return nil, domain.ErrNotFound
	}
	if err := domain.CheckCategoryID(p.CategoryID); err != nil {
		return nil, err
	}
	variants, err := encodeVariants(p.Variants)
	if err != nil {
		return nil, err
	}
	const q = `
UPDATE products
SET name = $2, description = $3, price_cents = $4, category_id = NULLIF($5, '')::uuid,
    img_url = $6, variants = $7, updated_at = $8
WHERE id = $1
`
	cmd, err := db.Conn(ctx, r.pool).Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, p.CategoryID, p.ImgURL, variants, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ErrNotFound
	}
	cmd, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

// Upsert inserts or replaces a product keyed by its application id.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := domain.CheckCategoryID(p.CategoryID); err != nil {
		return nil, err
	}
	variants, err := encodeVariants(p.Variants)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (id, name, description, price_cents, category_id, img_url, variants, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $8)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    category_id = EXCLUDED.category_id,
    img_url = EXCLUDED.img_url,
    variants = EXCLUDED.variants,
    updated_at = EXCLUDED.updated_at
`
	if _, err := db.Conn(ctx, r.pool).Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, p.CategoryID, p.ImgURL, variants, p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: upsert id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s name=%q", p.ID, p.Name)
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var variants []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.CategoryID,
		&p.CategoryName, &p.ImgURL, &variants, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: scan error=%v", err)
		return nil, err
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			r.logger.Printf("product repo: decode variants id=%s err=%v", p.ID, err)
			return nil, err
		}
	}
	if p.CategoryName == "" {
		p.CategoryName = domain.UncategorizedLabel
	}
	return &p, nil
}

func encodeVariants(v []domain.Variant) ([]byte, error) {
	if v == nil {
		v = []domain.Variant{}
	}
	return json.Marshal(v)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
