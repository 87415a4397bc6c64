package user

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

type tokenManager struct {
	repo  tokenrepo.Repository
	now   func() time.Time
	newID func() string
}

func newTokenManager(repo tokenrepo.Repository, now func() time.Time, newID func() string) *tokenManager {
	return &tokenManager{repo: repo, now: now, newID: newID}
}

// Issue stores a fresh token of kind for the user and returns its value.
func (m *tokenManager) Issue(ctx context.Context, userID, kind string, ttl time.Duration) (string, error) {
	now := m.now()
	for i := 0; i < 5; i++ {
		token := m.newID()
		err := m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			UserID:    userID,
			Kind:      kind,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// Validate returns the stored token when it exists with the expected kind.
// Expired tokens are removed and reported as domain.ErrExpiredToken.
func (m *tokenManager) Validate(ctx context.Context, token, kind string) (*tokenrepo.Token, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if meta.Kind != kind {
		return nil, domain.ErrNotFound
	}
	if meta.Expired(m.now()) {
		_ = m.repo.Delete(ctx, token)
		return nil, domain.ErrExpiredToken
	}
	return meta, nil
}

func (m *tokenManager) Consume(ctx context.Context, token string) error {
	err := m.repo.Delete(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Replace drops older tokens of the same kind before issuing a new one.
func (m *tokenManager) Replace(ctx context.Context, userID, kind string, ttl time.Duration) (string, error) {
	if err := m.repo.DeleteByUser(ctx, userID, kind); err != nil {
		return "", err
	}
	return m.Issue(ctx, userID, kind, ttl)
}
