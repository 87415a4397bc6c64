package token

import (
	"context"
	"time"
)

// Kinds of single-use account tokens.
const (
	KindVerify = "verify"
	KindReset  = "reset"
)

type Token struct {
	Token     string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// DeleteByUser drops every token of kind issued to the user.
	DeleteByUser(ctx context.Context, userID, kind string) error
}
