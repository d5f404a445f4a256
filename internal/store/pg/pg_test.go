package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"printhub.org/internal/auth"
	"printhub.org/internal/printjob"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminCreateConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("insert into admins").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Admins().Create(context.Background(), &auth.Admin{
		ID:    "admin-1",
		Email: "boss@example.com",
	})
	if !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	expectMet(t, mock)
}

func TestAdminFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "location", "permissions",
		"is_active", "last_login", "created_at", "updated_at",
	}).AddRow("admin-1", "boss@example.com", "hash", "Boss", nil,
		[]byte(`["manage_users","manage_jobs"]`), true, nil, now, now)

	mock.ExpectQuery("from admins where lower\\(email\\)").
		WithArgs("Boss@Example.com").
		WillReturnRows(rows)

	admin, err := store.Admins().FindByEmail(context.Background(), "Boss@Example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if admin.ID != "admin-1" || len(admin.Permissions) != 2 {
		t.Fatalf("admin = %+v", admin)
	}
	if admin.LastLogin != nil {
		t.Fatalf("last login = %v, want nil", admin.LastLogin)
	}
	expectMet(t, mock)
}

func TestAdminFindMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from admins where id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.Admins().Find(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectMet(t, mock)
}

func TestClerkUpdateMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("update clerks").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Clerks().Update(context.Background(), &auth.Clerk{ID: "ghost"})
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectMet(t, mock)
}

func TestClerkListByAdmin(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "admin_id", "location", "permissions",
		"is_active", "is_temporary_password", "last_login", "created_at", "updated_at",
	}).
		AddRow("clerk-2", "c2@example.com", "hash", "C2", "admin-1", nil, []byte(`[]`), true, true, nil, now, now).
		AddRow("clerk-1", "c1@example.com", "hash", "C1", "admin-1", nil, []byte(`[]`), true, false, nil, now.Add(-time.Hour), now)

	mock.ExpectQuery("from clerks where admin_id").
		WithArgs("admin-1").
		WillReturnRows(rows)

	clerks, err := store.Clerks().ListByAdmin(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clerks) != 2 || clerks[0].ID != "clerk-2" {
		t.Fatalf("clerks = %+v", clerks)
	}
	expectMet(t, mock)
}

func jobRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "file_name", "file_path", "file_size", "original_name", "status", "printer_name",
		"copies", "duplex", "color", "artwork", "width", "height", "size", "quantity", "location",
		"description", "client_id", "admin_id", "remote_ref", "error_message", "created_at", "updated_at",
	}).AddRow("job-1", nil, nil, 0, nil, "pending", nil, 1, false, false,
		"poster.pdf", 210.0, 297.0, nil, 25, "front desk", nil, "client-1", "admin-1", nil, nil, now, now)
}

func TestJobFindScoped(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from print_jobs where id = \\$1 and admin_id = \\$2").
		WithArgs("job-1", "admin-1").
		WillReturnRows(jobRows())

	job, err := store.Find(context.Background(), "job-1", auth.TenantFilter{AdminID: "admin-1"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if job.Status != printjob.StatusPending || job.AdminID != "admin-1" {
		t.Fatalf("job = %+v", job)
	}
	expectMet(t, mock)
}

func TestJobFindCrossTenant(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from print_jobs where id = \\$1 and admin_id = \\$2").
		WithArgs("job-1", "admin-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.Find(context.Background(), "job-1", auth.TenantFilter{AdminID: "admin-2"}); !errors.Is(err, printjob.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectMet(t, mock)
}

func TestJobListBuildsConditions(t *testing.T) {
	store, mock := newMockStore(t)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(`select count\(\*\) from print_jobs where admin_id = \$1 and status in \(\$2, \$3\) and created_at >= \$4 and created_at < \$5`).
		WithArgs("admin-1", "pending", "processing", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`from print_jobs where admin_id = \$1 and status in \(\$2, \$3\) and created_at >= \$4 and created_at < \$5 order by created_at desc, id desc limit \$6 offset \$7`).
		WithArgs("admin-1", "pending", "processing", from, to, 10, 0).
		WillReturnRows(jobRows())

	jobs, total, err := store.List(context.Background(), auth.TenantFilter{AdminID: "admin-1"}, printjob.Query{
		Statuses: []printjob.Status{printjob.StatusPending, printjob.StatusProcessing},
		From:     from,
		To:       to,
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(jobs) != 1 {
		t.Fatalf("list = %d/%d", len(jobs), total)
	}
	expectMet(t, mock)
}

func TestJobDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("delete from print_jobs where id = \\$1 and admin_id = \\$2").
		WithArgs("job-1", "admin-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "job-1", auth.TenantFilter{AdminID: "admin-2"}); !errors.Is(err, printjob.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	expectMet(t, mock)
}

func TestCountByStatus(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("pending", 3).
		AddRow("completed", 2)
	mock.ExpectQuery(`select status, count\(\*\) from print_jobs where admin_id = \$1 group by status`).
		WithArgs("admin-1").
		WillReturnRows(rows)

	counts, err := store.CountByStatus(context.Background(), auth.TenantFilter{AdminID: "admin-1"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[printjob.StatusPending] != 3 || counts[printjob.StatusCompleted] != 2 {
		t.Fatalf("counts = %v", counts)
	}
	expectMet(t, mock)
}

func TestCountByDay(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"day", "count"}).
		AddRow("2026-03-01", 4)
	mock.ExpectQuery(`select to_char\(created_at at time zone 'UTC', 'YYYY-MM-DD'\), count\(\*\)`).
		WithArgs("admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	counts, err := store.CountByDay(context.Background(), auth.TenantFilter{AdminID: "admin-1"}, from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["2026-03-01"] != 4 {
		t.Fatalf("counts = %v", counts)
	}
	expectMet(t, mock)
}
