package user

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// ErrSessionIdle is returned by Resolve after an idle session was evicted.
var ErrSessionIdle = errors.New("session idle")

type sessionRepo interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// Sessions issues and resolves server-side sessions with idle eviction.
type Sessions struct {
	repo   sessionRepo
	idle   time.Duration
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func NewSessions(repo sessionRepo, idle time.Duration, logger *log.Logger) *Sessions {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sessions{repo: repo, idle: idle, logger: logger, now: time.Now, newID: uuid.NewString}
}

func (s *Sessions) Start(ctx context.Context, u domain.User) (*domain.Session, error) {
	now := s.now().UTC()
	sess := domain.Session{
		ID:           s.newID(),
		UserID:       u.ID,
		Name:         u.FirstName,
		Email:        u.Email,
		Role:         u.Role,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Resolve loads the session and refreshes its activity time. An idle session
// is deleted before ErrSessionIdle is returned; unknown ids yield
// domain.ErrNotFound.
func (s *Sessions) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if sess.Idle(now, s.idle) {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Printf("session: evicted idle session user=%s", sess.UserID)
		return nil, ErrSessionIdle
	}
	if err := s.repo.Touch(ctx, id, now); err != nil {
		return nil, err
	}
	sess.LastActivity = now
	return sess, nil
}

func (s *Sessions) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
