// Package user implements registration, login, password recovery, profile
// and admin account management.
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"storefront/internal/captcha"
	"storefront/internal/domain"
	"storefront/internal/mail"
	tokenrepo "storefront/internal/repository/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL          = time.Hour
	defaultBanReason  = "Violation of Terms"
	VerifyPendingText = "Check your email to verify your account."
	VerifiedText      = "Your email has been verified! You can log in now."
	// ForgotPasswordText is shown whether or not the email is registered.
	ForgotPasswordText = "If an account with that email exists, a reset link has been sent."
)

var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = domain.Invalid("Invalid Credentials.")
	ErrInvalidResetToken  = domain.Invalid("Invalid or expired password reset token.")
	errEmailTaken         = domain.Invalid("Email already exists.")
)

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListCustomersWithStats(ctx context.Context) ([]domain.UserStats, error)
	UpdateProfile(ctx context.Context, id, address, contactNumber string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Ban(ctx context.Context, id string, ban domain.BanDetails) error
	Unban(ctx context.Context, id string) error
}

type Service struct {
	users    userRepo
	tokens   *tokenManager
	sessions *Sessions
	mailer   mail.Sender
	verifier captcha.Verifier
	baseURL  string
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
}

// Deps groups the collaborators of Service.
type Deps struct {
	Users    userRepo
	Tokens   tokenrepo.Repository
	Sessions *Sessions
	Mailer   mail.Sender
	Captcha  captcha.Verifier
	BaseURL  string
	Logger   *log.Logger
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	verifier := d.Captcha
	if verifier == nil {
		verifier = captcha.Disabled{}
	}
	s := &Service{
		users:    d.Users,
		sessions: d.Sessions,
		mailer:   d.Mailer,
		verifier: verifier,
		baseURL:  strings.TrimRight(d.BaseURL, "/"),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	s.tokens = newTokenManager(d.Tokens, func() time.Time { return s.now() }, func() string { return s.newID() })
	return s
}

// Challenge is the bot-verification token posted with a form.
type Challenge struct {
	Token    string `form:"cf-turnstile-response" json:"captchaToken"`
	RemoteIP string `form:"-" json:"-"`
}

type RegisterInput struct {
	Challenge
	FirstName       string `form:"firstName" json:"firstName"`
	LastName        string `form:"lastName" json:"lastName"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

// Register creates an unverified customer and mails the verification link.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := s.verifier.Verify(ctx, in.Token, in.RemoteIP); err != nil {
		return nil, err
	}
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.FirstName) == "" {
		return nil, domain.Invalid("First name and email are required.")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	created, err := s.users.Create(ctx, domain.User{
		ID:            s.newID(),
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Role:          domain.RoleCustomer,
		AccountStatus: domain.AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, errEmailTaken
		}
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, created.ID, tokenrepo.KindVerify, tokenTTL)
	if err != nil {
		return nil, err
	}
	link := s.baseURL + "/auth/verify/" + token
	if err := s.mailer.Send(ctx, mail.Verification(created.Email, created.FirstName, link)); err != nil {
		s.logger.Printf("user service: verification mail user=%s error=%v", created.ID, err)
		return nil, err
	}
	return created, nil
}

// Verify marks the token's user as verified and consumes the token.
func (s *Service) Verify(ctx context.Context, token string) error {
	meta, err := s.tokens.Validate(ctx, token, tokenrepo.KindVerify)
	if err != nil {
		return err
	}
	if err := s.users.MarkVerified(ctx, meta.UserID); err != nil {
		return err
	}
	return s.tokens.Consume(ctx, token)
}

type LoginInput struct {
	Challenge
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Login checks credentials and opens a session. A ban whose expiry has passed
// is lifted once the password matches.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, *domain.Session, error) {
	if err := s.verifier.Verify(ctx, in.Token, in.RemoteIP); err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	now := s.now().UTC()
	lapsed := u.BanLapsed(now)
	if u.AccountStatus != domain.AccountActive && !lapsed {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if lapsed {
		if err := s.users.Unban(ctx, u.ID); err != nil {
			return nil, nil, err
		}
		u.AccountStatus = domain.AccountActive
		u.Ban = nil
		s.logger.Printf("user service: lifted lapsed ban user=%s", u.ID)
	}

	sess, err := s.sessions.Start(ctx, *u)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

type ForgotInput struct {
	Challenge
	Email string `form:"email" json:"email"`
}

// ForgotPassword mails a reset link when the email is registered. Callers show
// ForgotPasswordText on success either way.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotInput) error {
	if err := s.verifier.Verify(ctx, in.Token, in.RemoteIP); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	token, err := s.tokens.Replace(ctx, u.ID, tokenrepo.KindReset, tokenTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, mail.PasswordReset(u.Email, s.baseURL+"/auth/reset/"+token)); err != nil {
		s.logger.Printf("user service: reset mail user=%s error=%v", u.ID, err)
		return err
	}
	return nil
}

// CheckResetToken reports ErrInvalidResetToken for unknown or expired tokens.
func (s *Service) CheckResetToken(ctx context.Context, token string) error {
	_, err := s.resetToken(ctx, token)
	return err
}

func (s *Service) resetToken(ctx context.Context, token string) (*tokenrepo.Token, error) {
	meta, err := s.tokens.Validate(ctx, token, tokenrepo.KindReset)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrExpiredToken) {
		return nil, ErrInvalidResetToken
	}
	return meta, err
}

type ResetInput struct {
	Challenge
	ResetToken      string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if err := s.verifier.Verify(ctx, in.Token, in.RemoteIP); err != nil {
		return err
	}
	if in.Password != in.ConfirmPassword {
		return errPasswordMismatch
	}
	meta, err := s.resetToken(ctx, in.ResetToken)
	if err != nil {
		return err
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, meta.UserID, string(hash)); err != nil {
		return err
	}
	return s.tokens.Consume(ctx, in.ResetToken)
}

func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

type ProfileInput struct {
	Address       string `form:"address" json:"address"`
	ContactNumber string `form:"contactNumber" json:"contactNumber"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	return s.users.UpdateProfile(ctx, userID, strings.TrimSpace(in.Address), strings.TrimSpace(in.ContactNumber))
}

// ListCustomers returns every non-admin account with order totals.
func (s *Service) ListCustomers(ctx context.Context) ([]domain.UserStats, error) {
	return s.users.ListCustomersWithStats(ctx)
}

type BanInput struct {
	UserID string `form:"userId" json:"userId"`
	Reason string `form:"reason" json:"reason"`
	// Duration is "permanent", "custom", or a number of days.
	Duration       string `form:"duration" json:"duration"`
	CustomDuration string `form:"customDuration" json:"customDuration"`
}

func (s *Service) Ban(ctx context.Context, in BanInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.Invalid("User is required.")
	}
	now := s.now().UTC()
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = defaultBanReason
	}
	ban := domain.BanDetails{
		Reason:    reason,
		BannedAt:  now,
		ExpiresAt: banExpiry(in.Duration, in.CustomDuration, now),
	}
	if err := s.users.Ban(ctx, in.UserID, ban); err != nil {
		return fmt.Errorf("ban user %s: %w", in.UserID, err)
	}
	return nil
}

func (s *Service) Unban(ctx context.Context, userID string) error {
	if err := s.users.Unban(ctx, userID); err != nil {
		return fmt.Errorf("unban user %s: %w", userID, err)
	}
	return nil
}

// banExpiry falls back to a permanent ban when the day count is not positive.
func banExpiry(duration, custom string, now time.Time) time.Time {
	raw := duration
	switch duration {
	case "permanent":
		return domain.PermanentBanExpiry
	case "custom":
		raw = custom
	}
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days <= 0 {
		return domain.PermanentBanExpiry
	}
	return now.AddDate(0, 0, days)
}
