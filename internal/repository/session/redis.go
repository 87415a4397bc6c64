package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores sessions as JSON values. ttl bounds how long an abandoned
// session survives in Redis; it should exceed the idle timeout so idle
// sessions are still observed and reported as such.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{client: client, ttl: ttl}
}

func (r *redisRepo) Create(ctx context.Context, s domain.Session) error {
	return r.put(ctx, s)
}

func (r *redisRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *redisRepo) Touch(ctx context.Context, id string, at time.Time) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.LastActivity = at
	return r.put(ctx, *s)
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyPrefix+id).Err()
}

func (r *redisRepo) put(ctx context.Context, s domain.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+s.ID, b, r.ttl).Err()
}
