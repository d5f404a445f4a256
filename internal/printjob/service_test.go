package printjob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"printhub.org/internal/assets"
	"printhub.org/internal/auth"
)

func newTestLocal(t *testing.T) *assets.LocalStore {
	t.Helper()
	local, err := assets.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	return local
}

type fakeRemote struct {
	uploads    int
	deletes    []string
	failUpload bool
	failDelete bool
}

func (f *fakeRemote) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	f.uploads++
	if f.failUpload {
		return "", errors.New("storage down")
	}
	return "https://cdn.example.com/" + name, nil
}

func (f *fakeRemote) Delete(_ context.Context, ref string) error {
	f.deletes = append(f.deletes, ref)
	if f.failDelete {
		return errors.New("storage down")
	}
	return nil
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(NewInMemory(), opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		Artwork:  "poster.pdf",
		Width:    210,
		Height:   297,
		Quantity: 50,
		Location: "front desk",
		ClientID: "client-1",
		AdminID:  "admin-1",
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	in := CreateInput{}
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	for _, field := range []string{"artwork", "width", "height", "quantity", "location", "adminId"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error %q does not name field %s", err, field)
		}
	}
}

func TestCreateStartsPending(t *testing.T) {
	svc := newTestService(t)
	job, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != StatusPending {
		t.Fatalf("status = %q, want pending", job.Status)
	}
	if job.ID == "" {
		t.Fatalf("no id assigned")
	}
	if job.Copies != 1 {
		t.Fatalf("copies = %d, want default 1", job.Copies)
	}
}

func TestCreateUploadsRemote(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestService(t, WithRemoteStore(remote))

	in := validInput()
	in.File = strings.NewReader("pdf-bytes")
	in.FileName = "poster.pdf"

	job, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.RemoteRef == "" {
		t.Fatalf("remote ref not recorded")
	}
	if remote.uploads != 1 {
		t.Fatalf("uploads = %d", remote.uploads)
	}
}

func TestCreateSurvivesRemoteFailure(t *testing.T) {
	remote := &fakeRemote{failUpload: true}
	local := newTestLocal(t)
	svc := newTestService(t, WithRemoteStore(remote), WithLocalStore(local))

	in := validInput()
	in.File = strings.NewReader("pdf-bytes")
	in.FileName = "poster.pdf"

	job, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create with failing remote: %v", err)
	}
	if job.RemoteRef != "" {
		t.Fatalf("remote ref set despite failure")
	}
	if job.FilePath == "" {
		t.Fatalf("local fallback path not recorded")
	}
}

func TestTenantScopedAccess(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	own := auth.TenantFilter{AdminID: "admin-1"}
	other := auth.TenantFilter{AdminID: "admin-2"}

	if _, err := svc.Get(ctx, job.ID, own); err != nil {
		t.Fatalf("own tenant get: %v", err)
	}
	// foreign tenants must observe the record as missing, not forbidden
	if _, err := svc.Get(ctx, job.ID, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross tenant err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateStatus(ctx, job.ID, StatusProcessing, other, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross tenant update err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, job.ID, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross tenant delete err = %v, want ErrNotFound", err)
	}
}

func TestStatusLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	job, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// pending cannot jump straight to completed
	if _, err := svc.UpdateStatus(ctx, job.ID, StatusCompleted, f, ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pending->completed err = %v, want ErrInvalidState", err)
	}

	if _, err := svc.UpdateStatus(ctx, job.ID, StatusProcessing, f, ""); err != nil {
		t.Fatalf("pending->processing: %v", err)
	}
	got, err := svc.UpdateStatus(ctx, job.ID, StatusCompleted, f, "")
	if err != nil {
		t.Fatalf("processing->completed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q", got.Status)
	}

	// terminal states are frozen
	if _, err := svc.UpdateStatus(ctx, job.ID, StatusPending, f, ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("completed->pending err = %v, want ErrInvalidState", err)
	}
}

func TestFailedStatusRecordsMessage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	job, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.UpdateStatus(ctx, job.ID, StatusFailed, f, "out of ink")
	if err != nil {
		t.Fatalf("pending->failed: %v", err)
	}
	if got.ErrorMessage != "out of ink" {
		t.Fatalf("error message = %q", got.ErrorMessage)
	}
}

func TestCompletedTriggersRemoteCleanup(t *testing.T) {
	remote := &fakeRemote{failDelete: true}
	svc := newTestService(t, WithRemoteStore(remote))
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	in := validInput()
	in.File = strings.NewReader("pdf-bytes")
	in.FileName = "poster.pdf"
	job, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, job.ID, StatusProcessing, f, ""); err != nil {
		t.Fatalf("to processing: %v", err)
	}
	// cleanup failure must not fail the transition
	got, err := svc.UpdateStatus(ctx, job.ID, StatusCompleted, f, "")
	if err != nil {
		t.Fatalf("to completed with failing cleanup: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if len(remote.deletes) != 1 {
		t.Fatalf("remote deletes = %v, want one attempt", remote.deletes)
	}
}

func TestListPagination(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	svc := newTestService(t, WithClock(func() time.Time { return current }))
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	for i := 0; i < 5; i++ {
		current = base.Add(time.Duration(i) * time.Minute)
		if _, err := svc.Create(ctx, validInput()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	jobs, total, err := svc.List(ctx, f, Query{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(jobs) != 2 {
		t.Fatalf("page size = %d, want 2", len(jobs))
	}
	// newest first
	if jobs[0].CreatedAt.Before(jobs[1].CreatedAt) {
		t.Fatalf("jobs not sorted newest first")
	}

	jobs, _, err = svc.List(ctx, f, Query{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("last page size = %d, want 1", len(jobs))
	}

	jobs, _, err = svc.List(ctx, f, Query{Page: 99, Limit: 2})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if jobs == nil || len(jobs) != 0 {
		t.Fatalf("past-end page = %#v, want empty non-nil slice", jobs)
	}
}

func TestListStatusFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	a, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, StatusProcessing, f, ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	jobs, total, err := svc.List(ctx, f, Query{Statuses: []Status{StatusProcessing}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(jobs) != 1 || jobs[0].ID != a.ID {
		t.Fatalf("filtered list = %d/%d", len(jobs), total)
	}

	if _, _, err := svc.List(ctx, f, Query{Statuses: []Status{"bogus"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bogus status err = %v", err)
	}
}

func TestStatsZeroJobs(t *testing.T) {
	svc := newTestService(t)
	stats, err := svc.Stats(context.Background(), auth.TenantFilter{AdminID: "admin-1"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalJobs != 0 || stats.SuccessRate != 0 {
		t.Fatalf("empty stats = %+v", stats)
	}
}

func TestStatsSuccessRate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	f := auth.TenantFilter{AdminID: "admin-1"}

	var jobs []*Job
	for i := 0; i < 4; i++ {
		job, err := svc.Create(ctx, validInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		jobs = append(jobs, job)
	}
	for _, job := range jobs[:2] {
		if _, err := svc.UpdateStatus(ctx, job.ID, StatusProcessing, f, ""); err != nil {
			t.Fatalf("update: %v", err)
		}
		if _, err := svc.UpdateStatus(ctx, job.ID, StatusCompleted, f, ""); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	stats, err := svc.Stats(ctx, f)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalJobs != 4 || stats.CompletedJobs != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.SuccessRate != 0.5 {
		t.Fatalf("success rate = %v, want 0.5", stats.SuccessRate)
	}
}
