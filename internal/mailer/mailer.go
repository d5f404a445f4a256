// Package mailer delivers transactional email. Delivery is a collaborator:
// callers decide whether a failure is fatal (OTP send) or best-effort
// (clerk welcome mail).
package mailer

import (
	"context"
	"errors"
	"log"
)

// ErrDisabled is returned when no SMTP credentials were configured.
var ErrDisabled = errors.New("mailer: disabled")

// Mailer sends a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Config holds SMTP settings. Host left empty disables delivery.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer, or a disabled one that logs a warning per send
// when credentials are absent. Missing mail credentials must never prevent
// the process from starting.
func New(cfg Config) Mailer {
	if cfg.Host == "" || cfg.Username == "" {
		log.Println("mailer: SMTP not configured, email delivery disabled")
		return disabled{}
	}
	return NewSMTP(cfg)
}

type disabled struct{}

func (disabled) Send(ctx context.Context, to, subject, html string) error {
	log.Printf("mailer: delivery disabled, dropping mail to %s (%q)", to, subject)
	return ErrDisabled
}
