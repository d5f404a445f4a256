package auth

import "context"

// Store describes persistence operations required by the credential layer.
// Email uniqueness is enforced per principal kind; cross-kind duplicates are
// allowed (see DESIGN.md).
type Store interface {
	Admins() AdminStore
	Clerks() ClerkStore
	Clients() ClientStore
}

// AdminStore manages admin records.
type AdminStore interface {
	Create(ctx context.Context, a *Admin) error
	Find(ctx context.Context, id string) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Update(ctx context.Context, a *Admin) error
}

// ClerkStore manages clerk records.
type ClerkStore interface {
	Create(ctx context.Context, c *Clerk) error
	Find(ctx context.Context, id string) (*Clerk, error)
	FindByEmail(ctx context.Context, email string) (*Clerk, error)
	ListByAdmin(ctx context.Context, adminID string) ([]*Clerk, error)
	Update(ctx context.Context, c *Clerk) error
}

// ClientStore manages client records.
type ClientStore interface {
	Create(ctx context.Context, c *Client) error
	Find(ctx context.Context, id string) (*Client, error)
	FindByEmail(ctx context.Context, email string) (*Client, error)
	Update(ctx context.Context, c *Client) error
}
