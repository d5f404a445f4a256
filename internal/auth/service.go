package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"printhub.org/internal/ids"
	"printhub.org/internal/mailer"
)

// Service provides registration, authentication and clerk onboarding for all
// principal kinds. Token issuance is delegated to Tokens.
type Service struct {
	store  Store
	tokens *Tokens
	mail   mailer.Mailer
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithMailer enables best-effort onboarding email delivery.
func WithMailer(m mailer.Mailer) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.mail = m
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the credential service.
func NewService(store Store, tokens *Tokens, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("auth: store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("auth: tokens is required")
	}
	s := &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterAdminInput carries the fields of an admin registration.
type RegisterAdminInput struct {
	Email    string
	Password string
	Name     string
	Location string
}

// RegisterAdmin creates an admin tenancy root and returns it with a signed token.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterAdminInput) (*Admin, string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.store.Admins().FindByEmail(ctx, email); err == nil {
		return nil, "", ErrConflict
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	now := s.now().UTC()
	admin := &Admin{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Location:     strings.TrimSpace(in.Location),
		Permissions:  append([]Permission(nil), AdminDefaultPermissions...),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Admins().Create(ctx, admin); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.IssueAdmin(admin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// LoginAdmin authenticates an admin by email and password. Missing, inactive
// and wrong-password cases all return ErrInvalidCredentials so callers cannot
// enumerate accounts.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (*Admin, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	admin, err := s.store.Admins().FindByEmail(ctx, email)
	if err != nil || !admin.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	s.touchAdminLogin(ctx, admin)
	token, err := s.tokens.IssueAdmin(admin)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// LoginClerk authenticates a clerk. Clerk tokens embed the owning admin id.
func (s *Service) LoginClerk(ctx context.Context, email, password string) (*Clerk, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	clerk, err := s.store.Clerks().FindByEmail(ctx, email)
	if err != nil || !clerk.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := VerifyPassword(clerk.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	now := s.now().UTC()
	clerk.LastLogin = &now
	if err := s.store.Clerks().Update(ctx, clerk); err != nil {
		log.Printf("auth: update clerk last login: %v", err)
	}
	token, err := s.tokens.IssueClerk(clerk)
	if err != nil {
		return nil, "", err
	}
	return clerk, token, nil
}

// RegisterClientInput carries the fields of a client registration.
type RegisterClientInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

// RegisterClient creates a tenant-agnostic client account.
func (s *Service) RegisterClient(ctx context.Context, in RegisterClientInput) (*Client, string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, "", fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if _, err := s.store.Clients().FindByEmail(ctx, email); err == nil {
		return nil, "", ErrConflict
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	now := s.now().UTC()
	client := &Client{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Clients().Create(ctx, client); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.IssueClient(client)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

// LoginClient authenticates a client by email and password.
func (s *Service) LoginClient(ctx context.Context, email, password string) (*Client, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	client, err := s.store.Clients().FindByEmail(ctx, email)
	if err != nil || !client.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := VerifyPassword(client.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	now := s.now().UTC()
	client.LastLogin = &now
	if err := s.store.Clients().Update(ctx, client); err != nil {
		log.Printf("auth: update client last login: %v", err)
	}
	token, err := s.tokens.IssueClient(client)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

// CreateClerkInput carries the fields of an admin-driven clerk creation.
// Password left empty means a temporary one is generated and mailed.
type CreateClerkInput struct {
	Email       string
	Name        string
	Password    string
	Location    string
	Permissions []Permission
}

// CreateClerk creates a clerk under the given admin tenancy. The welcome mail
// carrying the temporary password is best-effort: delivery failure is logged
// and never fails the creation.
func (s *Service) CreateClerk(ctx context.Context, adminID string, in CreateClerkInput) (*Clerk, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, fmt.Errorf("%w: admin id is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.store.Clerks().FindByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	}

	password := in.Password
	if password == "" {
		password, err = GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	perms := dedupePermissions(in.Permissions)
	if len(perms) == 0 {
		perms = append([]Permission(nil), ClerkDefaultPermissions...)
	}
	now := s.now().UTC()
	clerk := &Clerk{
		ID:                  ids.New(),
		Email:               email,
		PasswordHash:        hash,
		Name:                name,
		AdminID:             adminID,
		Location:            strings.TrimSpace(in.Location),
		Permissions:         perms,
		IsActive:            true,
		IsTemporaryPassword: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.Clerks().Create(ctx, clerk); err != nil {
		return nil, err
	}

	if s.mail != nil {
		subject, html := mailer.WelcomeClerk(clerk.Name, clerk.Email, password)
		if err := s.mail.Send(ctx, clerk.Email, subject, html); err != nil {
			log.Printf("auth: welcome mail to %s failed: %v", clerk.Email, err)
		}
	}
	return clerk, nil
}

// ListClerks returns the clerks of an admin tenancy.
func (s *Service) ListClerks(ctx context.Context, adminID string) ([]*Clerk, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, fmt.Errorf("%w: admin id is required", ErrInvalidInput)
	}
	return s.store.Clerks().ListByAdmin(ctx, adminID)
}

// ChangePassword verifies the current password and replaces it. For clerks
// the temporary-password flag is cleared; this is the only path that does.
func (s *Service) ChangePassword(ctx context.Context, p Principal, current, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	switch p.Kind {
	case KindAdmin:
		admin, err := s.store.Admins().Find(ctx, p.ID)
		if err != nil {
			return ErrInvalidCredentials
		}
		if err := VerifyPassword(admin.PasswordHash, current); err != nil {
			return ErrInvalidCredentials
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		admin.PasswordHash = hash
		admin.UpdatedAt = s.now().UTC()
		return s.store.Admins().Update(ctx, admin)
	case KindClerk:
		clerk, err := s.store.Clerks().Find(ctx, p.ID)
		if err != nil {
			return ErrInvalidCredentials
		}
		if err := VerifyPassword(clerk.PasswordHash, current); err != nil {
			return ErrInvalidCredentials
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		clerk.PasswordHash = hash
		clerk.IsTemporaryPassword = false
		clerk.UpdatedAt = s.now().UTC()
		return s.store.Clerks().Update(ctx, clerk)
	case KindClient:
		client, err := s.store.Clients().Find(ctx, p.ID)
		if err != nil {
			return ErrInvalidCredentials
		}
		if err := VerifyPassword(client.PasswordHash, current); err != nil {
			return ErrInvalidCredentials
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		client.PasswordHash = hash
		client.UpdatedAt = s.now().UTC()
		return s.store.Clients().Update(ctx, client)
	default:
		return ErrInvalidCredentials
	}
}

func (s *Service) touchAdminLogin(ctx context.Context, admin *Admin) {
	now := s.now().UTC()
	admin.LastLogin = &now
	if err := s.store.Admins().Update(ctx, admin); err != nil {
		log.Printf("auth: update admin last login: %v", err)
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}
