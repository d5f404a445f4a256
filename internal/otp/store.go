package otp

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persists one record per email. Implementations expire records at
// ExpiresAt (native TTL for Redis, lazy sweep for the in-memory store).
type Store interface {
	// Put stores the record, replacing any existing one for the email.
	Put(ctx context.Context, rec *Record) error
	Find(ctx context.Context, email string) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, email string) error
}

// InMemory implements Store with lazy expiry on access.
type InMemory struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

// InMemoryOption configures InMemory.
type InMemoryOption func(*InMemory)

// WithStoreClock overrides the expiry sweep's time source (useful for
// tests). It should match the service clock, otherwise a skewed sweep can
// drop records the service still considers merely expired.
func WithStoreClock(fn func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewInMemory creates an empty OTP store.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		records: make(map[string]*Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Put(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[key(rec.Email)] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, email string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key(email)]
	if !ok {
		return nil, ErrNotFound
	}
	// TTL sweep: drop records long past expiry. Recently expired ones are
	// kept so Verify can report ErrExpired instead of ErrNotFound.
	if s.now().UTC().After(rec.ExpiresAt.Add(24 * time.Hour)) {
		delete(s.records, key(email))
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemory) Update(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key(rec.Email)]; !ok {
		return ErrNotFound
	}
	cp := *rec
	s.records[key(rec.Email)] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key(email))
	return nil
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
