package auth

import "time"

// Kind identifies the principal type carried by a token.
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindClerk  Kind = "clerk"
	KindClient Kind = "client"
)

// Permission is a fine-grained capability attached to admins and clerks.
type Permission string

const (
	PermManageUsers    Permission = "manage_users"
	PermManageJobs     Permission = "manage_jobs"
	PermSubmitPrints   Permission = "submit_prints"
	PermViewAgents     Permission = "view_agents"
	PermViewDashboard  Permission = "view_dashboard"
	PermManageSettings Permission = "manage_settings"
)

// AdminDefaultPermissions is granted to every admin at registration.
var AdminDefaultPermissions = []Permission{
	PermManageUsers,
	PermManageJobs,
	PermSubmitPrints,
	PermViewAgents,
	PermViewDashboard,
	PermManageSettings,
}

// ClerkDefaultPermissions is applied when a clerk is created without an
// explicit permission set.
var ClerkDefaultPermissions = []Permission{
	PermManageJobs,
	PermViewDashboard,
}

// Admin is the root of a tenancy. Every clerk and print job traces back to
// exactly one admin via its AdminID.
type Admin struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	Location     string       `json:"location,omitempty"`
	Permissions  []Permission `json:"permissions"`
	IsActive     bool         `json:"is_active"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Clerk is a tenant member created by an admin. AdminID is immutable.
type Clerk struct {
	ID                  string       `json:"id"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"`
	Name                string       `json:"name"`
	AdminID             string       `json:"admin_id"`
	Location            string       `json:"location,omitempty"`
	Permissions         []Permission `json:"permissions"`
	IsActive            bool         `json:"is_active"`
	IsTemporaryPassword bool         `json:"is_temporary_password"`
	LastLogin           *time.Time   `json:"last_login,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// Client submits print jobs. It is not tied to an admin; its jobs carry the
// tenant association instead.
type Client struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	PhoneNumber  string     `json:"phone_number"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func dedupePermissions(perms []Permission) []Permission {
	if len(perms) == 0 {
		return nil
	}
	seen := make(map[Permission]struct{}, len(perms))
	var out []Permission
	for _, p := range perms {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
