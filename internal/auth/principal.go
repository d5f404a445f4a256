package auth

// Principal is the decoded identity behind a bearer token.
type Principal struct {
	Kind        Kind
	ID          string
	Email       string
	AdminID     string // owning tenant; set only for clerks
	Permissions []Permission
}

// TenantFilter is the adminId constraint applied to every print job query.
// The zero value places no restriction.
type TenantFilter struct {
	AdminID string
}

// Unscoped reports whether the filter places no tenant restriction.
func (f TenantFilter) Unscoped() bool { return f.AdminID == "" }

// Allows reports whether a record owned by adminID passes the filter.
func (f TenantFilter) Allows(adminID string) bool {
	return f.AdminID == "" || f.AdminID == adminID
}

// TenantFilter derives the tenant scope for the principal. A clerk is pinned
// to the admin that created it, an admin to itself. Clients and unauthenticated
// callers get no restriction; their routes must be gated separately.
func (p Principal) TenantFilter() TenantFilter {
	switch p.Kind {
	case KindAdmin:
		return TenantFilter{AdminID: p.ID}
	case KindClerk:
		return TenantFilter{AdminID: p.AdminID}
	default:
		return TenantFilter{}
	}
}

// HasPermission reports whether the principal carries the permission.
func (p Principal) HasPermission(perm Permission) bool {
	for _, have := range p.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}

// RequirePermission returns ErrForbidden unless the permission is held.
func (p Principal) RequirePermission(perm Permission) error {
	if !p.HasPermission(perm) {
		return ErrForbidden
	}
	return nil
}

// RequireKind returns ErrForbidden unless the principal is one of the kinds.
func (p Principal) RequireKind(kinds ...Kind) error {
	for _, k := range kinds {
		if p.Kind == k {
			return nil
		}
	}
	return ErrForbidden
}
