package printjob

import (
	"context"
	"time"

	"printhub.org/internal/auth"
)

// Query narrows a job listing. Page is 1-indexed; zero time bounds are open.
type Query struct {
	Statuses []Status
	ClientID string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

// Store describes persistence for print jobs. Every read and mutation takes
// the caller's tenant filter; implementations must apply it so a record
// outside the tenancy is indistinguishable from a missing one.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Find(ctx context.Context, id string, f auth.TenantFilter) (*Job, error)
	List(ctx context.Context, f auth.TenantFilter, q Query) ([]*Job, int, error)
	Update(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id string, f auth.TenantFilter) error
	CountByStatus(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[Status]int, error)
	CountByDay(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[string]int, error)
}
