package printjob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"printhub.org/internal/assets"
	"printhub.org/internal/auth"
	"printhub.org/internal/ids"
	"printhub.org/internal/obs"
)

const (
	defaultPageLimit     = 10
	maxPageLimit         = 100
	defaultUploadTimeout = 15 * time.Second
)

// Service owns print job creation, listing and the status lifecycle. Every
// operation takes the caller's tenant filter exactly once and passes it to
// the store; client-supplied adminId values are used only at creation.
type Service struct {
	store         Store
	remote        assets.RemoteStore
	local         *assets.LocalStore
	now           func() time.Time
	uploadTimeout time.Duration
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithRemoteStore sets the external asset store used best-effort.
func WithRemoteStore(remote assets.RemoteStore) ServiceOption {
	return func(s *Service) {
		if remote != nil {
			s.remote = remote
		}
	}
}

// WithLocalStore sets the fallback file store.
func WithLocalStore(local *assets.LocalStore) ServiceOption {
	return func(s *Service) { s.local = local }
}

// WithUploadTimeout bounds remote upload/delete calls.
func WithUploadTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.uploadTimeout = d
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the print job service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("printjob: store is required")
	}
	s := &Service{
		store:         store,
		remote:        assets.NewRemote("", ""),
		now:           time.Now,
		uploadTimeout: defaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput carries a client print submission. File may be nil when the
// submission references artwork by name only.
type CreateInput struct {
	Artwork      string
	Width        float64
	Height       float64
	Size         string
	Quantity     int
	Location     string
	Description  string
	PrinterName  string
	Copies       int
	Duplex       bool
	Color        bool
	ClientID     string
	AdminID      string
	File         io.Reader
	FileName     string
	FileSize     int64
	OriginalName string
}

// Create validates the submission and stores the job with status pending.
// The remote asset upload is best-effort with a bounded timeout; on failure
// the local file reference is kept instead, so a submission never fails just
// because third-party storage is down.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Job, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &Job{
		ID:           ids.New(),
		FileName:     strings.TrimSpace(in.FileName),
		FileSize:     in.FileSize,
		OriginalName: strings.TrimSpace(in.OriginalName),
		Status:       StatusPending,
		PrinterName:  strings.TrimSpace(in.PrinterName),
		Copies:       max(in.Copies, 1),
		Duplex:       in.Duplex,
		Color:        in.Color,
		Artwork:      strings.TrimSpace(in.Artwork),
		Width:        in.Width,
		Height:       in.Height,
		Size:         strings.TrimSpace(in.Size),
		Quantity:     in.Quantity,
		Location:     strings.TrimSpace(in.Location),
		Description:  strings.TrimSpace(in.Description),
		ClientID:     strings.TrimSpace(in.ClientID),
		AdminID:      strings.TrimSpace(in.AdminID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.File != nil {
		s.storeArtwork(ctx, job, in.File)
	}

	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	obs.PrintJobsCreated.Inc()
	return job, nil
}

// storeArtwork tries the remote store first and falls back to local disk.
func (s *Service) storeArtwork(ctx context.Context, job *Job, file io.Reader) {
	name := job.FileName
	if name == "" {
		name = job.ID
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	ref, err := s.remote.Upload(uploadCtx, name, file)
	if err == nil {
		job.RemoteRef = ref
		job.FilePath = ref
		return
	}
	_ = obs.LogEvent(ctx, "printjob.asset.upload_failed", map[string]any{
		"job_id": job.ID,
		"error":  err.Error(),
	})

	if s.local == nil {
		return
	}
	// The remote attempt may have consumed part of the stream; seekable
	// readers are rewound before the fallback write.
	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return
		}
	}
	path, err := s.local.Save(name, file)
	if err != nil {
		_ = obs.LogEvent(ctx, "printjob.asset.local_fallback_failed", map[string]any{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		return
	}
	job.FilePath = path
}

// Get returns a job visible through the tenant filter. A job of another
// tenant is reported as missing, never as forbidden.
func (s *Service) Get(ctx context.Context, id string, f auth.TenantFilter) (*Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	return s.store.Find(ctx, id, f)
}

// List returns a page of jobs newest-first along with the total match count.
func (s *Service) List(ctx context.Context, f auth.TenantFilter, q Query) ([]*Job, int, error) {
	for _, st := range q.Statuses {
		if !st.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	items, total, err := s.store.List(ctx, f, q)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Job{}
	}
	return items, total, nil
}

// UpdateStatus applies a lifecycle transition. Entering completed triggers a
// best-effort remote asset cleanup; its failure never fails the update.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, f auth.TenantFilter, errorMessage string) (*Job, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}
	job, err := s.store.Find(ctx, id, f)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidState, job.Status, next)
	}
	job.Status = next
	job.UpdatedAt = s.now().UTC()
	if next == StatusFailed {
		job.ErrorMessage = strings.TrimSpace(errorMessage)
	}
	if err := s.store.Update(ctx, job); err != nil {
		return nil, err
	}
	obs.PrintJobStatusChanges.WithLabelValues(string(next)).Inc()

	if next == StatusCompleted && job.RemoteRef != "" {
		s.deleteRemote(ctx, job)
	}
	return job, nil
}

// Delete removes a job after best-effort cleanup of its stored assets.
func (s *Service) Delete(ctx context.Context, id string, f auth.TenantFilter) error {
	job, err := s.store.Find(ctx, id, f)
	if err != nil {
		return err
	}
	if job.RemoteRef != "" {
		s.deleteRemote(ctx, job)
	}
	if s.local != nil && job.FilePath != "" && job.FilePath != job.RemoteRef {
		if err := s.local.Remove(job.FilePath); err != nil {
			_ = obs.LogEvent(ctx, "printjob.asset.local_delete_failed", map[string]any{
				"job_id": job.ID,
				"error":  err.Error(),
			})
		}
	}
	return s.store.Delete(ctx, id, f)
}

func (s *Service) deleteRemote(ctx context.Context, job *Job) {
	deleteCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	if err := s.remote.Delete(deleteCtx, job.RemoteRef); err != nil {
		_ = obs.LogEvent(ctx, "printjob.asset.remote_delete_failed", map[string]any{
			"job_id": job.ID,
			"ref":    job.RemoteRef,
			"error":  err.Error(),
		})
	}
}

// Stats aggregates the tenant's jobs. SuccessRate is zero when there are no jobs.
func (s *Service) Stats(ctx context.Context, f auth.TenantFilter) (Stats, error) {
	counts, err := s.store.CountByStatus(ctx, f, time.Time{}, time.Time{})
	if err != nil {
		return Stats{}, err
	}
	return StatsFromCounts(counts), nil
}

// StatsFromCounts derives the aggregate view from per-status counts.
func StatsFromCounts(counts map[Status]int) Stats {
	if counts == nil {
		counts = make(map[Status]int)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	completed := counts[StatusCompleted]
	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}
	return Stats{
		CountsByStatus: counts,
		TotalJobs:      total,
		CompletedJobs:  completed,
		SuccessRate:    rate,
	}
}

func validateCreate(in CreateInput) error {
	var missing []string
	if strings.TrimSpace(in.Artwork) == "" {
		missing = append(missing, "artwork")
	}
	if in.Width <= 0 {
		missing = append(missing, "width")
	}
	if in.Height <= 0 {
		missing = append(missing, "height")
	}
	if in.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(in.AdminID) == "" {
		missing = append(missing, "adminId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid fields: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
