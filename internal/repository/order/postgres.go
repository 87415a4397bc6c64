package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

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

const orderColumns = `o.id::text, o.user_id::text, o.items, o.total_cents, o.status,
       COALESCE(o.payment_method, ''), o.paid_at, o.history, o.created_at, o.updated_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	history, err := json.Marshal(o.History)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO orders (id, user_id, items, total_cents, status, history, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
`
	if _, err := db.Conn(ctx, r.pool).Exec(ctx, q, o.ID, o.UserID, items, o.TotalCents, string(o.Status), history, o.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create id=%s user_id=%s error=%v", o.ID, o.UserID, err)
		return err
	}
	r.logger.Printf("order repo: created id=%s user_id=%s total=%d lines=%d", o.ID, o.UserID, o.TotalCents, len(o.Items))
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	o, err := r.scanOrder(db.Conn(ctx, r.pool).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("order repo: get id=%s not found", id)
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) ListCreatedBetween(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders o
WHERE o.created_at >= $1 AND o.created_at <= $2 AND ($3 = '' OR o.status = $3)
ORDER BY o.created_at ASC`
	return r.list(ctx, q, start, end, string(status))
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.OrderWithOwner, error) {
	q := `SELECT ` + orderColumns + `, COALESCE(u.email, 'Unknown')
FROM orders o
LEFT JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q)
	if err != nil {
		r.logger.Printf("order repo: list all error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderWithOwner
	for rows.Next() {
		var out domain.OrderWithOwner
		o, err := r.scanOrder(rows, &out.UserEmail)
		if err != nil {
			return nil, err
		}
		out.Order = *o
		result = append(result, out)
	}
	return result, rows.Err()
}

func (r *postgresRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	probe, err := json.Marshal([]map[string]string{{"productId": productID}})
	if err != nil {
		return 0, err
	}
	var n int
	err = db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE items @> $1::jsonb`, string(probe)).Scan(&n)
	if err != nil {
		r.logger.Printf("order repo: count product_id=%s error=%v", productID, err)
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) Apply(ctx context.Context, id string, t Transition) error {
	if !domain.ValidID(id) {
		return domain.ErrNotFound
	}
	entry, err := json.Marshal([]domain.HistoryEntry{t.Entry})
	if err != nil {
		return err
	}
	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, string(s))
	}
	const q = `
UPDATE orders
SET status = $2,
    history = history || $3::jsonb,
    payment_method = COALESCE(NULLIF($4, ''), payment_method),
    paid_at = COALESCE($5, paid_at),
    updated_at = $6
WHERE id = $1 AND (cardinality($7::text[]) = 0 OR status = ANY($7::text[]))
`
	cmd, err := db.Conn(ctx, r.pool).Exec(ctx, q, id, string(t.To), string(entry), t.PaymentMethod, t.PaidAt, t.Entry.Timestamp, from)
	if err != nil {
		r.logger.Printf("order repo: apply id=%s to=%s error=%v", id, t.To, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		if len(from) > 0 {
			return domain.ErrInvalidTransition
		}
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: id=%s status=%s by=%s", id, t.To, t.Entry.UpdatedBy)
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scanOrder(row pgx.Row, extra ...any) (*domain.Order, error) {
	var o domain.Order
	var status string
	var items, history []byte
	dest := append([]any{&o.ID, &o.UserID, &items, &o.TotalCents, &status,
		&o.PaymentMethod, &o.PaidAt, &history, &o.CreatedAt, &o.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: scan error=%v", err)
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		r.logger.Printf("order repo: decode items id=%s err=%v", o.ID, err)
		return nil, err
	}
	if err := json.Unmarshal(history, &o.History); err != nil {
		r.logger.Printf("order repo: decode history id=%s err=%v", o.ID, err)
		return nil, err
	}
	return &o, nil
}
