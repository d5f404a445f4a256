package printjob

import (
	"context"
	"sort"
	"sync"
	"time"

	"printhub.org/internal/auth"
)

// InMemory implements Store with in-process concurrency safety. Used by the
// HTTP layer tests; production uses the Postgres store.
type InMemory struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewInMemory creates an empty job store.
func NewInMemory() *InMemory {
	return &InMemory{jobs: make(map[string]*Job)}
}

func (s *InMemory) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string, f auth.TenantFilter) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || !f.Allows(job.AdminID) {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, f auth.TenantFilter, q Query) ([]*Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Job
	for _, job := range s.jobs {
		if !f.Allows(job.AdminID) {
			continue
		}
		if !matchQuery(job, q) {
			continue
		}
		matched = append(matched, job)
	}
	// Newest first; ids are ULIDs, so they break creation-time ties.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = total
	}
	start := (page - 1) * limit
	if start >= total {
		return []*Job{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]*Job, 0, end-start)
	for _, job := range matched[start:end] {
		cp := *job
		out = append(out, &cp)
	}
	return out, total, nil
}

func (s *InMemory) Update(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string, f auth.TenantFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || !f.Allows(job.AdminID) {
		return ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *InMemory) CountByStatus(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Status]int)
	for _, job := range s.jobs {
		if !f.Allows(job.AdminID) {
			continue
		}
		if !inRange(job.CreatedAt, from, to) {
			continue
		}
		counts[job.Status]++
	}
	return counts, nil
}

func (s *InMemory) CountByDay(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, job := range s.jobs {
		if !f.Allows(job.AdminID) {
			continue
		}
		if !inRange(job.CreatedAt, from, to) {
			continue
		}
		counts[job.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return counts, nil
}

func matchQuery(job *Job, q Query) bool {
	if len(q.Statuses) > 0 {
		found := false
		for _, st := range q.Statuses {
			if job.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.ClientID != "" && job.ClientID != q.ClientID {
		return false
	}
	return inRange(job.CreatedAt, q.From, q.To)
}

func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}
