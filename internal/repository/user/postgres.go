package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
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

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const userColumns = `id::text, email, password_hash, first_name, last_name, role, account_status,
       is_email_verified, ban_reason, banned_at, ban_expires_at, address, contact_number, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (
    id, email, password_hash, first_name, last_name, role, account_status, is_email_verified,
    address, contact_number, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING ` + userColumns
	return r.scanUser(db.Conn(ctx, r.pool).QueryRow(
		ctx,
		q,
		u.ID,
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(u.Role),
		string(u.AccountStatus),
		u.IsEmailVerified,
		u.Address,
		u.ContactNumber,
		u.CreatedAt,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return r.scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, q, strings.TrimSpace(email)))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListCustomersWithStats(ctx context.Context) ([]domain.UserStats, error) {
	q := `
SELECT ` + userColumns + `, COALESCE(s.total_orders, 0), COALESCE(s.total_spent, 0)
FROM users
LEFT JOIN (
    SELECT user_id, COUNT(*) AS total_orders, SUM(total_cents) AS total_spent
    FROM orders
    GROUP BY user_id
) s ON s.user_id = users.id
WHERE role <> 'admin'
ORDER BY created_at DESC`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q)
	if err != nil {
		r.logger.Printf("user repo: list customers error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserStats
	for rows.Next() {
		var s domain.UserStats
		u, err := r.scanUser(rows, &s.TotalOrders, &s.TotalSpent)
		if err != nil {
			return nil, err
		}
		s.User = *u
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id, address, contactNumber string) (*domain.User, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	q := `
UPDATE users SET address = $2, contact_number = $3, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns
	return r.scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, q, id, address, contactNumber))
}

func (r *postgresRepo) MarkVerified(ctx context.Context, id string) error {
	return r.exec(ctx, "mark verified", id, `UPDATE users SET is_email_verified = TRUE, updated_at = now() WHERE id = $1`, id)
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "update password", id, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *postgresRepo) Ban(ctx context.Context, id string, ban domain.BanDetails) error {
	const q = `
UPDATE users
SET account_status = 'banned', ban_reason = $2, banned_at = $3, ban_expires_at = $4, updated_at = now()
WHERE id = $1`
	return r.exec(ctx, "ban", id, q, id, ban.Reason, ban.BannedAt, ban.ExpiresAt)
}

func (r *postgresRepo) Unban(ctx context.Context, id string) error {
	const q = `
UPDATE users
SET account_status = 'active', ban_reason = NULL, banned_at = NULL, ban_expires_at = NULL, updated_at = now()
WHERE id = $1`
	return r.exec(ctx, "unban", id, q, id)
}

func (r *postgresRepo) exec(ctx context.Context, op, id, q string, args ...any) error {
	if !domain.ValidID(id) {
		return domain.ErrNotFound
	}
	cmd, err := db.Conn(ctx, r.pool).Exec(ctx, q, args...)
	if err != nil {
		r.logger.Printf("user repo: %s id=%s error=%v", op, id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: %s id=%s", op, id)
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row, extra ...any) (*domain.User, error) {
	var u domain.User
	var role, status string
	var banReason *string
	var bannedAt, banExpires *time.Time
	dest := append([]any{
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&role,
		&status,
		&u.IsEmailVerified,
		&banReason,
		&bannedAt,
		&banExpires,
		&u.Address,
		&u.ContactNumber,
		&u.CreatedAt,
		&u.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	u.Role = domain.Role(role)
	u.AccountStatus = domain.AccountStatus(status)
	if banExpires != nil {
		u.Ban = &domain.BanDetails{ExpiresAt: *banExpires}
		if banReason != nil {
			u.Ban.Reason = *banReason
		}
		if bannedAt != nil {
			u.Ban.BannedAt = *bannedAt
		}
	}
	return &u, nil
}
