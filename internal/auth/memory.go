package auth

import (
	"context"
	"strings"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. The HTTP
// layer tests run against it; production uses the Postgres store.
type InMemory struct {
	mu      sync.RWMutex
	admins  map[string]*Admin
	clerks  map[string]*Clerk
	clients map[string]*Client
}

// NewInMemory creates an empty credential store.
func NewInMemory() *InMemory {
	return &InMemory{
		admins:  make(map[string]*Admin),
		clerks:  make(map[string]*Clerk),
		clients: make(map[string]*Client),
	}
}

func (s *InMemory) Admins() AdminStore   { return (*memAdmins)(s) }
func (s *InMemory) Clerks() ClerkStore   { return (*memClerks)(s) }
func (s *InMemory) Clients() ClientStore { return (*memClients)(s) }

type memAdmins InMemory

func (s *memAdmins) Create(ctx context.Context, a *Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrConflict
		}
	}
	cp := *a
	s.admins[a.ID] = &cp
	return nil
}

func (s *memAdmins) Find(ctx context.Context, id string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memAdmins) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memAdmins) Update(ctx context.Context, a *Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	s.admins[a.ID] = &cp
	return nil
}

type memClerks InMemory

func (s *memClerks) Create(ctx context.Context, c *Clerk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clerks {
		if strings.EqualFold(existing.Email, c.Email) {
			return ErrConflict
		}
	}
	cp := *c
	s.clerks[c.ID] = &cp
	return nil
}

func (s *memClerks) Find(ctx context.Context, id string) (*Clerk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clerks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memClerks) FindByEmail(ctx context.Context, email string) (*Clerk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clerks {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memClerks) ListByAdmin(ctx context.Context, adminID string) ([]*Clerk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Clerk
	for _, c := range s.clerks {
		if c.AdminID == adminID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memClerks) Update(ctx context.Context, c *Clerk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clerks[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	s.clerks[c.ID] = &cp
	return nil
}

type memClients InMemory

func (s *memClients) Create(ctx context.Context, c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if strings.EqualFold(existing.Email, c.Email) {
			return ErrConflict
		}
	}
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}

func (s *memClients) Find(ctx context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memClients) FindByEmail(ctx context.Context, email string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memClients) Update(ctx context.Context, c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}
