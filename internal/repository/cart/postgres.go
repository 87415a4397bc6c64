package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNoTx = errors.New("cart repo: GetForUpdate outside a transaction")

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

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `SELECT user_id::text, items, updated_at FROM carts WHERE user_id = $1`
	return r.fetchCart(db.Conn(ctx, r.pool).QueryRow(ctx, q, userID), userID)
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, userID string) (*domain.Cart, error) {
	if !db.InTx(ctx) {
		return nil, errNoTx
	}
	conn := db.Conn(ctx, r.pool)
	// A row must exist for FOR UPDATE to serialise the first add.
	if _, err := conn.Exec(ctx, `
INSERT INTO carts (user_id, items, updated_at)
VALUES ($1, '[]'::jsonb, now())
ON CONFLICT (user_id) DO NOTHING
`, userID); err != nil {
		r.logger.Printf("cart repo: ensure user_id=%s error=%v", userID, err)
		return nil, err
	}
	const q = `SELECT user_id::text, items, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`
	return r.fetchCart(conn.QueryRow(ctx, q, userID), userID)
}

func (r *postgresRepo) Save(ctx context.Context, cart domain.Cart) error {
	items := cart.Items
	if items == nil {
		items = []domain.CartLine{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO carts (user_id, items, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
`
	if _, err := db.Conn(ctx, r.pool).Exec(ctx, q, cart.UserID, raw, cart.UpdatedAt); err != nil {
		r.logger.Printf("cart repo: save user_id=%s error=%v", cart.UserID, err)
		return err
	}
	r.logger.Printf("cart repo: saved user_id=%s lines=%d", cart.UserID, len(items))
	return nil
}

func (r *postgresRepo) fetchCart(row pgx.Row, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	var raw []byte
	if err := row.Scan(&cart.UserID, &raw, &cart.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Cart{UserID: userID, Items: []domain.CartLine{}}, nil
		}
		r.logger.Printf("cart repo: get user_id=%s error=%v", userID, err)
		return nil, err
	}
	if err := json.Unmarshal(raw, &cart.Items); err != nil {
		r.logger.Printf("cart repo: decode items user_id=%s err=%v", userID, err)
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}
	return &cart, nil
}
