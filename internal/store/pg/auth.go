package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"printhub.org/internal/auth"
)

var _ auth.Store = (*Store)(nil)

func (s *Store) Admins() auth.AdminStore   { return (*adminStore)(s) }
func (s *Store) Clerks() auth.ClerkStore   { return (*clerkStore)(s) }
func (s *Store) Clients() auth.ClientStore { return (*clientStore)(s) }

type adminStore Store

func (s *adminStore) Create(ctx context.Context, a *auth.Admin) error {
	perms, err := marshalPermissions(a.Permissions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into admins (id, email, password_hash, name, location, permissions, is_active, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.Email, a.PasswordHash, a.Name, nullIfEmpty(a.Location), perms, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *adminStore) Find(ctx context.Context, id string) (*auth.Admin, error) {
	return s.scanOne(ctx, `
		select id, email, password_hash, name, location, permissions, is_active, last_login, created_at, updated_at
		from admins where id = $1
	`, id)
}

func (s *adminStore) FindByEmail(ctx context.Context, email string) (*auth.Admin, error) {
	return s.scanOne(ctx, `
		select id, email, password_hash, name, location, permissions, is_active, last_login, created_at, updated_at
		from admins where lower(email) = lower($1)
	`, email)
}

func (s *adminStore) Update(ctx context.Context, a *auth.Admin) error {
	perms, err := marshalPermissions(a.Permissions)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update admins
		set email = $2, password_hash = $3, name = $4, location = $5,
		    permissions = $6, is_active = $7, last_login = $8, updated_at = $9
		where id = $1
	`, a.ID, a.Email, a.PasswordHash, a.Name, nullIfEmpty(a.Location), perms, a.IsActive, nullTime(a.LastLogin), a.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *adminStore) scanOne(ctx context.Context, query string, args ...any) (*auth.Admin, error) {
	var (
		a        auth.Admin
		location sql.NullString
		rawPerms []byte
		last     sql.NullTime
	)
	row := s.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &location, &rawPerms, &a.IsActive, &last, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Location = location.String
	a.LastLogin = timePtr(last)
	if a.Permissions, err = unmarshalPermissions(rawPerms); err != nil {
		return nil, err
	}
	return &a, nil
}

type clerkStore Store

func (s *clerkStore) Create(ctx context.Context, c *auth.Clerk) error {
	perms, err := marshalPermissions(c.Permissions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into clerks (id, email, password_hash, name, admin_id, location, permissions,
		                    is_active, is_temporary_password, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.Email, c.PasswordHash, c.Name, c.AdminID, nullIfEmpty(c.Location), perms,
		c.IsActive, c.IsTemporaryPassword, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *clerkStore) Find(ctx context.Context, id string) (*auth.Clerk, error) {
	return s.scanOne(ctx, clerkSelect+` where id = $1`, id)
}

func (s *clerkStore) FindByEmail(ctx context.Context, email string) (*auth.Clerk, error) {
	return s.scanOne(ctx, clerkSelect+` where lower(email) = lower($1)`, email)
}

func (s *clerkStore) ListByAdmin(ctx context.Context, adminID string) ([]*auth.Clerk, error) {
	rows, err := s.db.QueryContext(ctx, clerkSelect+` where admin_id = $1 order by created_at desc`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.Clerk
	for rows.Next() {
		c, err := scanClerk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *clerkStore) Update(ctx context.Context, c *auth.Clerk) error {
	perms, err := marshalPermissions(c.Permissions)
	if err != nil {
		return err
	}
	// admin_id is immutable and deliberately absent from the set list.
	res, err := s.db.ExecContext(ctx, `
		update clerks
		set email = $2, password_hash = $3, name = $4, location = $5, permissions = $6,
		    is_active = $7, is_temporary_password = $8, last_login = $9, updated_at = $10
		where id = $1
	`, c.ID, c.Email, c.PasswordHash, c.Name, nullIfEmpty(c.Location), perms,
		c.IsActive, c.IsTemporaryPassword, nullTime(c.LastLogin), c.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

const clerkSelect = `
	select id, email, password_hash, name, admin_id, location, permissions,
	       is_active, is_temporary_password, last_login, created_at, updated_at
	from clerks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClerk(row rowScanner) (*auth.Clerk, error) {
	var (
		c        auth.Clerk
		location sql.NullString
		rawPerms []byte
		last     sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.AdminID, &location, &rawPerms,
		&c.IsActive, &c.IsTemporaryPassword, &last, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Location = location.String
	c.LastLogin = timePtr(last)
	if c.Permissions, err = unmarshalPermissions(rawPerms); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *clerkStore) scanOne(ctx context.Context, query string, args ...any) (*auth.Clerk, error) {
	c, err := scanClerk(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	return c, err
}

type clientStore Store

func (s *clientStore) Create(ctx context.Context, c *auth.Client) error {
	_, err := s.db.ExecContext(ctx, `
		insert into clients (id, email, password_hash, full_name, phone_number, is_active, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Email, c.PasswordHash, c.FullName, nullIfEmpty(c.PhoneNumber), c.IsActive, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *clientStore) Find(ctx context.Context, id string) (*auth.Client, error) {
	return s.scanOne(ctx, clientSelect+` where id = $1`, id)
}

func (s *clientStore) FindByEmail(ctx context.Context, email string) (*auth.Client, error) {
	return s.scanOne(ctx, clientSelect+` where lower(email) = lower($1)`, email)
}

func (s *clientStore) Update(ctx context.Context, c *auth.Client) error {
	res, err := s.db.ExecContext(ctx, `
		update clients
		set email = $2, password_hash = $3, full_name = $4, phone_number = $5,
		    is_active = $6, last_login = $7, updated_at = $8
		where id = $1
	`, c.ID, c.Email, c.PasswordHash, c.FullName, nullIfEmpty(c.PhoneNumber), c.IsActive, nullTime(c.LastLogin), c.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

const clientSelect = `
	select id, email, password_hash, full_name, phone_number, is_active, last_login, created_at, updated_at
	from clients`

func (s *clientStore) scanOne(ctx context.Context, query string, args ...any) (*auth.Client, error) {
	var (
		c     auth.Client
		phone sql.NullString
		last  sql.NullTime
	)
	row := s.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FullName, &phone, &c.IsActive, &last, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.PhoneNumber = phone.String
	c.LastLogin = timePtr(last)
	return &c, nil
}

func marshalPermissions(perms []auth.Permission) ([]byte, error) {
	if perms == nil {
		perms = []auth.Permission{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("marshal permissions: %w", err)
	}
	return data, nil
}

func unmarshalPermissions(raw []byte) ([]auth.Permission, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var perms []auth.Permission
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return perms, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
