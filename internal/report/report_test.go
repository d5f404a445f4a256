package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"printhub.org/internal/auth"
	"printhub.org/internal/printjob"
)

func seedJob(t *testing.T, store printjob.Store, adminID string, created time.Time, status printjob.Status) {
	t.Helper()
	job := &printjob.Job{
		ID:        fmt.Sprintf("job-%s-%d", adminID, created.UnixNano()),
		Status:    status,
		Artwork:   "poster.pdf",
		Width:     210,
		Height:    297,
		Quantity:  10,
		Location:  "front desk",
		ClientID:  "client-1",
		AdminID:   adminID,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func TestWeeklyActivity(t *testing.T) {
	store := printjob.NewInMemory()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc, err := NewService(store, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f := auth.TenantFilter{AdminID: "admin-1"}

	// two today, one three days ago, one outside the window, one foreign tenant
	seedJob(t, store, "admin-1", now.Add(-time.Hour), printjob.StatusPending)
	seedJob(t, store, "admin-1", now.Add(-2*time.Hour), printjob.StatusCompleted)
	seedJob(t, store, "admin-1", now.AddDate(0, 0, -3), printjob.StatusPending)
	seedJob(t, store, "admin-1", now.AddDate(0, 0, -8), printjob.StatusPending)
	seedJob(t, store, "admin-2", now.Add(-time.Hour), printjob.StatusPending)

	days, err := svc.WeeklyActivity(context.Background(), f)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7 zero-filled days", len(days))
	}
	if days[0].Date != "2026-03-04" || days[6].Date != "2026-03-10" {
		t.Fatalf("window = %s..%s", days[0].Date, days[6].Date)
	}
	for i := 1; i < len(days); i++ {
		if days[i].Date <= days[i-1].Date {
			t.Fatalf("days not sorted oldest first: %v", days)
		}
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if total != 3 {
		t.Fatalf("total in window = %d, want 3", total)
	}
	if days[6].Count != 2 {
		t.Fatalf("today count = %d, want 2", days[6].Count)
	}
	if days[3].Count != 1 {
		t.Fatalf("three days ago count = %d, want 1", days[3].Count)
	}
}

func TestStatsForDay(t *testing.T) {
	store := printjob.NewInMemory()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc, err := NewService(store, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f := auth.TenantFilter{AdminID: "admin-1"}

	seedJob(t, store, "admin-1", now.Add(-time.Hour), printjob.StatusCompleted)
	seedJob(t, store, "admin-1", now.Add(-2*time.Hour), printjob.StatusFailed)
	seedJob(t, store, "admin-1", now.AddDate(0, 0, -2), printjob.StatusCompleted)

	day := now
	stats, err := svc.Stats(context.Background(), f, &day)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalJobs != 2 || stats.CompletedJobs != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.SuccessRate != 0.5 {
		t.Fatalf("success rate = %v", stats.SuccessRate)
	}

	all, err := svc.Stats(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("stats all: %v", err)
	}
	if all.TotalJobs != 3 {
		t.Fatalf("all-time total = %d, want 3", all.TotalJobs)
	}
}

func TestJobsByDate(t *testing.T) {
	store := printjob.NewInMemory()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc, err := NewService(store, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f := auth.TenantFilter{AdminID: "admin-1"}

	seedJob(t, store, "admin-1", now.Add(-time.Hour), printjob.StatusPending)
	seedJob(t, store, "admin-1", now.AddDate(0, 0, -1), printjob.StatusPending)

	jobs, err := svc.JobsByDate(context.Background(), f, now)
	if err != nil {
		t.Fatalf("jobs by date: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len = %d, want 1", len(jobs))
	}

	empty, err := svc.JobsByDate(context.Background(), f, now.AddDate(0, 0, -10))
	if err != nil {
		t.Fatalf("empty day: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty day = %#v, want empty non-nil slice", empty)
	}
}
