package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer          = "printhub"
	defaultTokenTTL = 7 * 24 * time.Hour
)

// Claims is the JWT payload shared by all principal kinds. The populated
// fields disambiguate: admins carry only UserID, clerks carry ClerkID plus
// AdminID, clients carry UserID plus Type="client".
type Claims struct {
	UserID      string       `json:"userId,omitempty"`
	ClerkID     string       `json:"clerkId,omitempty"`
	AdminID     string       `json:"adminId,omitempty"`
	Type        string       `json:"type,omitempty"`
	Email       string       `json:"email,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies bearer tokens with HS256.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokensOption configures Tokens.
type TokensOption func(*Tokens)

// WithTokenTTL overrides the default seven day expiry.
func WithTokenTTL(ttl time.Duration) TokensOption {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokensClock overrides the time source (useful for tests).
func WithTokensClock(fn func() time.Time) TokensOption {
	return func(t *Tokens) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokens constructs a token signer/verifier for the given secret.
func NewTokens(secret string, opts ...TokensOption) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	t := &Tokens{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// IssueAdmin signs a token for an admin principal.
func (t *Tokens) IssueAdmin(a *Admin) (string, error) {
	return t.sign(Claims{
		UserID:      a.ID,
		Email:       a.Email,
		Permissions: dedupePermissions(a.Permissions),
	})
}

// IssueClerk signs a token for a clerk principal. The owning admin id is
// embedded so that requests can be tenant-scoped without a lookup.
func (t *Tokens) IssueClerk(c *Clerk) (string, error) {
	return t.sign(Claims{
		ClerkID:     c.ID,
		AdminID:     c.AdminID,
		Email:       c.Email,
		Permissions: dedupePermissions(c.Permissions),
	})
}

// IssueClient signs a token for a client principal.
func (t *Tokens) IssueClient(c *Client) (string, error) {
	return t.sign(Claims{
		UserID: c.ID,
		Type:   string(KindClient),
		Email:  c.Email,
	})
}

func (t *Tokens) sign(claims Claims) (string, error) {
	now := t.now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Decode verifies the token and resolves it into a Principal. Signature,
// expiry and issuer checks fail closed; ambiguous payload shapes are rejected.
func (t *Tokens) Decode(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(func() time.Time { return t.now().UTC() }))
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	return resolvePrincipal(claims)
}

func resolvePrincipal(claims *Claims) (Principal, error) {
	switch {
	case claims.Type == string(KindClient):
		if claims.UserID == "" || claims.ClerkID != "" {
			return Principal{}, ErrInvalidToken
		}
		return Principal{
			Kind:  KindClient,
			ID:    claims.UserID,
			Email: claims.Email,
		}, nil
	case claims.ClerkID != "":
		if claims.AdminID == "" || claims.Type != "" {
			return Principal{}, ErrInvalidToken
		}
		return Principal{
			Kind:        KindClerk,
			ID:          claims.ClerkID,
			Email:       claims.Email,
			AdminID:     claims.AdminID,
			Permissions: dedupePermissions(claims.Permissions),
		}, nil
	case claims.UserID != "":
		if claims.Type != "" || claims.AdminID != "" {
			return Principal{}, ErrInvalidToken
		}
		return Principal{
			Kind:        KindAdmin,
			ID:          claims.UserID,
			Email:       claims.Email,
			Permissions: dedupePermissions(claims.Permissions),
		}, nil
	default:
		return Principal{}, ErrInvalidToken
	}
}
