// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Settings mirrors the SMTP part of config.Config.
type Settings struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *log.Logger
}

// New returns an SMTP sender, or a sender that only logs when no SMTP host is
// configured.
func New(s Settings, logger *log.Logger) Sender {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if s.Host == "" {
		logger.Printf("mail: SMTP_HOST not set, messages will be logged only")
		return &logSender{logger: logger}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(s.Host, s.Port, s.User, s.Pass),
		from:   s.From,
		logger: logger,
	}
}

func (s *smtpSender) Send(_ context.Context, m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Printf("mail: send to=%s subject=%q error=%v", m.To, m.Subject, err)
		return fmt.Errorf("%w: send mail: %v", domain.ErrExternalService, err)
	}
	s.logger.Printf("mail: sent to=%s subject=%q", m.To, m.Subject)
	return nil
}

type logSender struct {
	logger *log.Logger
}

func (s *logSender) Send(_ context.Context, m Message) error {
	s.logger.Printf("mail (disabled): to=%s subject=%q body=%s", m.To, m.Subject, m.HTML)
	return nil
}
