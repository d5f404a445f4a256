package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"printhub.org/internal/auth"
	"printhub.org/internal/printjob"
)

var _ printjob.Store = (*Store)(nil)

const jobColumns = `id, file_name, file_path, file_size, original_name, status, printer_name,
	copies, duplex, color, artwork, width, height, size, quantity, location, description,
	client_id, admin_id, remote_ref, error_message, created_at, updated_at`

func (s *Store) Create(ctx context.Context, job *printjob.Job) error {
	_, err := s.db.ExecContext(ctx, `
		insert into print_jobs (`+jobColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`,
		job.ID, nullIfEmpty(job.FileName), nullIfEmpty(job.FilePath), job.FileSize,
		nullIfEmpty(job.OriginalName), string(job.Status), nullIfEmpty(job.PrinterName),
		job.Copies, job.Duplex, job.Color, job.Artwork, job.Width, job.Height,
		nullIfEmpty(job.Size), job.Quantity, job.Location, nullIfEmpty(job.Description),
		job.ClientID, job.AdminID, nullIfEmpty(job.RemoteRef), nullIfEmpty(job.ErrorMessage),
		job.CreatedAt, job.UpdatedAt)
	return err
}

func (s *Store) Find(ctx context.Context, id string, f auth.TenantFilter) (*printjob.Job, error) {
	query := `select ` + jobColumns + ` from print_jobs where id = $1`
	args := []any{id}
	if !f.Unscoped() {
		query += ` and admin_id = $2`
		args = append(args, f.AdminID)
	}
	job, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, printjob.ErrNotFound
	}
	return job, err
}

func (s *Store) List(ctx context.Context, f auth.TenantFilter, q printjob.Query) ([]*printjob.Job, int, error) {
	where, args := jobConditions(f, q.Statuses, q.ClientID, q.From, q.To)

	var total int
	countQuery := `select count(*) from print_jobs` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = total
	}
	listQuery := fmt.Sprintf(
		`select `+jobColumns+` from print_jobs%s order by created_at desc, id desc limit $%d offset $%d`,
		where, len(args)+1, len(args)+2)
	listArgs := append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*printjob.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, job)
	}
	return items, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, job *printjob.Job) error {
	// admin_id and client_id are immutable after creation.
	res, err := s.db.ExecContext(ctx, `
		update print_jobs
		set file_name = $2, file_path = $3, file_size = $4, original_name = $5, status = $6,
		    printer_name = $7, copies = $8, duplex = $9, color = $10, artwork = $11,
		    width = $12, height = $13, size = $14, quantity = $15, location = $16,
		    description = $17, remote_ref = $18, error_message = $19, updated_at = $20
		where id = $1
	`,
		job.ID, nullIfEmpty(job.FileName), nullIfEmpty(job.FilePath), job.FileSize,
		nullIfEmpty(job.OriginalName), string(job.Status), nullIfEmpty(job.PrinterName),
		job.Copies, job.Duplex, job.Color, job.Artwork, job.Width, job.Height,
		nullIfEmpty(job.Size), job.Quantity, job.Location, nullIfEmpty(job.Description),
		nullIfEmpty(job.RemoteRef), nullIfEmpty(job.ErrorMessage), job.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return printjob.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string, f auth.TenantFilter) error {
	query := `delete from print_jobs where id = $1`
	args := []any{id}
	if !f.Unscoped() {
		query += ` and admin_id = $2`
		args = append(args, f.AdminID)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return printjob.ErrNotFound
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[printjob.Status]int, error) {
	where, args := jobConditions(f, nil, "", from, to)
	rows, err := s.db.QueryContext(ctx, `select status, count(*) from print_jobs`+where+` group by status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[printjob.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[printjob.Status(status)] = n
	}
	return counts, rows.Err()
}

func (s *Store) CountByDay(ctx context.Context, f auth.TenantFilter, from, to time.Time) (map[string]int, error) {
	where, args := jobConditions(f, nil, "", from, to)
	rows, err := s.db.QueryContext(ctx, `
		select to_char(created_at at time zone 'UTC', 'YYYY-MM-DD'), count(*)
		from print_jobs`+where+`
		group by 1
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

func jobConditions(f auth.TenantFilter, statuses []printjob.Status, clientID string, from, to time.Time) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !f.Unscoped() {
		add("admin_id = $%d", f.AdminID)
	}
	if clientID != "" {
		add("client_id = $%d", clientID)
	}
	if len(statuses) > 0 {
		placeholders := make([]string, 0, len(statuses))
		for _, st := range statuses {
			args = append(args, string(st))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, "status in ("+strings.Join(placeholders, ", ")+")")
	}
	if !from.IsZero() {
		add("created_at >= $%d", from)
	}
	if !to.IsZero() {
		add("created_at < $%d", to)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func scanJob(row rowScanner) (*printjob.Job, error) {
	var (
		job          printjob.Job
		fileName     sql.NullString
		filePath     sql.NullString
		originalName sql.NullString
		status       string
		printerName  sql.NullString
		size         sql.NullString
		description  sql.NullString
		remoteRef    sql.NullString
		errorMessage sql.NullString
	)
	err := row.Scan(&job.ID, &fileName, &filePath, &job.FileSize, &originalName, &status,
		&printerName, &job.Copies, &job.Duplex, &job.Color, &job.Artwork, &job.Width,
		&job.Height, &size, &job.Quantity, &job.Location, &description, &job.ClientID,
		&job.AdminID, &remoteRef, &errorMessage, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.FileName = fileName.String
	job.FilePath = filePath.String
	job.OriginalName = originalName.String
	job.Status = printjob.Status(status)
	job.PrinterName = printerName.String
	job.Size = size.String
	job.Description = description.String
	job.RemoteRef = remoteRef.String
	job.ErrorMessage = errorMessage.String
	return &job, nil
}
