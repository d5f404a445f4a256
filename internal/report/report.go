// Package report provides read-only dashboard aggregations over the print
// job store, always through the caller's tenant filter.
package report

import (
	"context"
	"fmt"
	"time"

	"printhub.org/internal/auth"
	"printhub.org/internal/printjob"
)

const jobsByDateLimit = 500

// Service answers dashboard queries.
type Service struct {
	jobs printjob.Store
	now  func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the reporting service.
func NewService(jobs printjob.Store, opts ...Option) (*Service, error) {
	if jobs == nil {
		return nil, fmt.Errorf("report: job store is required")
	}
	s := &Service{jobs: jobs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Stats aggregates the tenant's jobs, optionally restricted to one day.
func (s *Service) Stats(ctx context.Context, f auth.TenantFilter, date *time.Time) (printjob.Stats, error) {
	var from, to time.Time
	if date != nil {
		from, to = dayBounds(*date)
	}
	counts, err := s.jobs.CountByStatus(ctx, f, from, to)
	if err != nil {
		return printjob.Stats{}, err
	}
	return printjob.StatsFromCounts(counts), nil
}

// DayCount is one day of activity, keyed by the UTC date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// WeeklyActivity returns per-day job counts for the trailing seven days,
// oldest first, with zero-filled gaps.
func (s *Service) WeeklyActivity(ctx context.Context, f auth.TenantFilter) ([]DayCount, error) {
	now := s.now().UTC()
	end := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -7)

	counts, err := s.jobs.CountByDay(ctx, f, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]DayCount, 0, 7)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		out = append(out, DayCount{Date: key, Count: counts[key]})
	}
	return out, nil
}

// JobsByDate lists the tenant's jobs created on the given day, newest first.
func (s *Service) JobsByDate(ctx context.Context, f auth.TenantFilter, date time.Time) ([]*printjob.Job, error) {
	from, to := dayBounds(date)
	items, _, err := s.jobs.List(ctx, f, printjob.Query{
		From:  from,
		To:    to,
		Page:  1,
		Limit: jobsByDateLimit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*printjob.Job{}
	}
	return items, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := date.UTC().Truncate(24 * time.Hour)
	return from, from.Add(24 * time.Hour)
}
