// Package otp implements the short-lived one-time-code flow gating
// registration. Codes are six digits, expire after thirty minutes and allow
// five attempts.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"printhub.org/internal/mailer"
	"printhub.org/internal/obs"
)

const (
	codeLength  = 6
	defaultTTL  = 30 * time.Minute
	maxAttempts = 5
)

var (
	ErrInvalidInput      = errors.New("otp: invalid input")
	ErrNotFound          = errors.New("otp: no code requested")
	ErrInvalidCode       = errors.New("otp: invalid code")
	ErrExpired           = errors.New("otp: code expired")
	ErrAttemptsExhausted = errors.New("otp: attempts exhausted")
	ErrDelivery          = errors.New("otp: delivery failed")
)

// Record is the per-email verification state.
type Record struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// Service issues and verifies one-time codes. A Send whose email dispatch
// fails rolls the record back so no valid-but-undeliverable code survives.
type Service struct {
	store Store
	mail  mailer.Mailer
	now   func() time.Time
	ttl   time.Duration
}

// Option configures Service.
type Option func(*Service)

// WithTTL overrides the default thirty minute expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the OTP service.
func NewService(store Store, mail mailer.Mailer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("otp: store is required")
	}
	if mail == nil {
		return nil, fmt.Errorf("otp: mailer is required")
	}
	s := &Service{
		store: store,
		mail:  mail,
		now:   time.Now,
		ttl:   defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send issues a fresh code for the email, invalidating any prior unverified
// one, and dispatches it. On dispatch failure the record is rolled back and
// ErrDelivery returned.
func (s *Service) Send(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	rec := &Record{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	// Put replaces any outstanding record for the email.
	if err := s.store.Put(ctx, rec); err != nil {
		return err
	}
	if err := s.dispatch(ctx, rec); err != nil {
		if delErr := s.store.Delete(ctx, email); delErr != nil {
			_ = obs.LogEvent(ctx, "otp.rollback_failed", map[string]any{
				"email": email,
				"error": delErr.Error(),
			})
		}
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	obs.OTPSent.Inc()
	return nil
}

// Resend re-delivers the outstanding unexpired code if one exists, so a
// client retrying within the window can still verify with the first mail it
// received. Otherwise it behaves like Send.
func (s *Service) Resend(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	rec, err := s.store.Find(ctx, normalized)
	if err != nil || rec.Verified || !s.now().UTC().Before(rec.ExpiresAt) {
		return s.Send(ctx, normalized)
	}
	if err := s.dispatch(ctx, rec); err != nil {
		// The first delivery already carried this code; keep the record.
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	obs.OTPSent.Inc()
	return nil
}

// Verify checks the code. A wrong guess increments the attempt counter and
// reports the remaining attempts; once the counter reaches the limit, every
// further attempt fails with ErrAttemptsExhausted and removes the record.
func (s *Service) Verify(ctx context.Context, email, code string) (remaining int, err error) {
	email, err = normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	code = strings.TrimSpace(code)
	rec, err := s.store.Find(ctx, email)
	if err != nil {
		return 0, ErrNotFound
	}
	now := s.now().UTC()
	if !now.Before(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, email)
		return 0, ErrExpired
	}
	if rec.Verified {
		return maxAttempts - rec.Attempts, nil
	}
	if rec.Attempts >= maxAttempts {
		_ = s.store.Delete(ctx, email)
		return 0, ErrAttemptsExhausted
	}
	if rec.Code != code {
		rec.Attempts++
		if err := s.store.Update(ctx, rec); err != nil {
			return 0, err
		}
		remaining = maxAttempts - rec.Attempts
		return remaining, ErrInvalidCode
	}
	rec.Verified = true
	if err := s.store.Update(ctx, rec); err != nil {
		return 0, err
	}
	return maxAttempts - rec.Attempts, nil
}

// CheckVerified reports whether the email holds a verified, unexpired record.
func (s *Service) CheckVerified(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	rec, err := s.store.Find(ctx, email)
	if err != nil {
		return false, nil
	}
	if !s.now().UTC().Before(rec.ExpiresAt) {
		return false, nil
	}
	return rec.Verified, nil
}

func (s *Service) dispatch(ctx context.Context, rec *Record) error {
	subject, html := mailer.OTPCode(rec.Code, time.Until(rec.ExpiresAt))
	return s.mail.Send(ctx, rec.Email, subject, html)
}

func generateCode() (string, error) {
	// Six digits with leading zeros preserved.
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}
