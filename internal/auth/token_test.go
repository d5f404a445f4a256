package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestTokens(t *testing.T, opts ...TokensOption) *Tokens {
	t.Helper()
	tokens, err := NewTokens("test-secret", opts...)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	return tokens
}

func TestTokenRoundTripAdmin(t *testing.T) {
	tokens := newTestTokens(t)
	admin := &Admin{
		ID:          "admin-1",
		Email:       "boss@example.com",
		Permissions: AdminDefaultPermissions,
	}
	raw, err := tokens.IssueAdmin(admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := tokens.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Kind != KindAdmin {
		t.Fatalf("kind = %q, want admin", p.Kind)
	}
	if p.ID != "admin-1" || p.Email != "boss@example.com" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if f := p.TenantFilter(); f.AdminID != "admin-1" {
		t.Fatalf("admin tenant filter = %+v, want own id", f)
	}
	if !p.HasPermission(PermManageUsers) {
		t.Fatalf("admin missing manage_users")
	}
}

func TestTokenRoundTripClerk(t *testing.T) {
	tokens := newTestTokens(t)
	clerk := &Clerk{
		ID:          "clerk-1",
		AdminID:     "admin-1",
		Email:       "clerk@example.com",
		Permissions: ClerkDefaultPermissions,
	}
	raw, err := tokens.IssueClerk(clerk)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := tokens.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Kind != KindClerk {
		t.Fatalf("kind = %q, want clerk", p.Kind)
	}
	if p.ID != "clerk-1" || p.AdminID != "admin-1" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if f := p.TenantFilter(); f.AdminID != "admin-1" {
		t.Fatalf("clerk tenant filter = %+v, want owning admin", f)
	}
	if p.HasPermission(PermManageUsers) {
		t.Fatalf("clerk unexpectedly holds manage_users")
	}
}

func TestTokenRoundTripClient(t *testing.T) {
	tokens := newTestTokens(t)
	client := &Client{ID: "client-1", Email: "buyer@example.com"}
	raw, err := tokens.IssueClient(client)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := tokens.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Kind != KindClient {
		t.Fatalf("kind = %q, want client", p.Kind)
	}
	if !p.TenantFilter().Unscoped() {
		t.Fatalf("client tenant filter should be unscoped")
	}
}

func TestTokenRejectsAmbiguousShapes(t *testing.T) {
	cases := []struct {
		name   string
		claims Claims
	}{
		{"empty", Claims{}},
		{"client without user id", Claims{Type: "client"}},
		{"client with clerk id", Claims{Type: "client", UserID: "u", ClerkID: "c"}},
		{"clerk without admin id", Claims{ClerkID: "c"}},
		{"clerk with type", Claims{ClerkID: "c", AdminID: "a", Type: "clerk"}},
		{"admin with admin id", Claims{UserID: "u", AdminID: "a"}},
		{"unknown type", Claims{UserID: "u", Type: "robot"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := resolvePrincipal(&tc.claims); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	current := time.Now()
	tokens := newTestTokens(t,
		WithTokenTTL(time.Hour),
		WithTokensClock(func() time.Time { return current }))

	raw, err := tokens.IssueAdmin(&Admin{ID: "admin-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Decode(raw); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, err := tokens.Decode(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tokens := newTestTokens(t)
	raw, err := tokens.IssueAdmin(&Admin{ID: "admin-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, err := NewTokens("other-secret")
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	if _, err := other.Decode(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token err = %v, want ErrInvalidToken", err)
	}
}
