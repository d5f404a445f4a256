package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"printhub.org/internal/auth"
	"printhub.org/internal/printjob"
)

var (
	errInvalidStatus = errors.New("unknown status filter")
	errInvalidDate   = errors.New("dates must be formatted YYYY-MM-DD")
)

type updateStatusRequest struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type jobListResponse struct {
	Jobs  []*printjob.Job `json:"jobs"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// maxUploadBytes caps a single artwork file inside the multipart form.
const maxUploadBytes = 20 << 20

func (a *API) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindClient)
	if !ok {
		return
	}
	clientID := r.PathValue("clientId")
	if clientID != p.ID {
		// a client may only submit under its own id
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := printjob.CreateInput{
		Artwork:     strings.TrimSpace(r.FormValue("artwork")),
		Size:        strings.TrimSpace(r.FormValue("size")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: strings.TrimSpace(r.FormValue("description")),
		PrinterName: strings.TrimSpace(r.FormValue("printer_name")),
		ClientID:    clientID,
		AdminID:     strings.TrimSpace(r.FormValue("admin_id")),
	}
	var fieldErrs []string
	if v := r.FormValue("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, "width must be a number")
		}
		in.Width = f
	}
	if v := r.FormValue("height"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, "height must be a number")
		}
		in.Height = f
	}
	if v := r.FormValue("quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fieldErrs = append(fieldErrs, "quantity must be an integer")
		}
		in.Quantity = n
	}
	if v := r.FormValue("copies"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fieldErrs = append(fieldErrs, "copies must be an integer")
		}
		in.Copies = n
	}
	in.Duplex = r.FormValue("duplex") == "true"
	in.Color = r.FormValue("color") == "true"
	if len(fieldErrs) > 0 {
		writeError(w, r, http.StatusBadRequest, "validation failed", fieldErrs...)
		return
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		in.File = file
		in.FileName = header.Filename
		in.FileSize = header.Size
		in.OriginalName = header.Filename
	}

	job, err := a.jobs.Create(r.Context(), in)
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, job)
}

func (a *API) handleListJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}
	q, err := parseJobQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filter := p.TenantFilter()
	if p.Kind == auth.KindClient {
		// clients see their own submissions only, across tenants
		q.ClientID = p.ID
	}
	jobs, total, err := a.jobs.List(r.Context(), filter, q)
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, jobListResponse{
		Jobs:  jobs,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	})
}

func (a *API) handleGetJob(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}
	job, err := a.jobs.Get(r.Context(), r.PathValue("id"), p.TenantFilter())
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	// a client may fetch only its own submissions; foreign jobs look missing
	if p.Kind == auth.KindClient && job.ClientID != p.ID {
		writeError(w, r, http.StatusNotFound, "print job not found")
		return
	}
	writeData(w, http.StatusOK, job)
}

func (a *API) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermManageJobs); !ok {
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.jobs.UpdateStatus(r.Context(), r.PathValue("id"),
		printjob.Status(req.Status), p.TenantFilter(), req.ErrorMessage)
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, job)
}

func (a *API) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermManageJobs); !ok {
		return
	}
	if err := a.jobs.Delete(r.Context(), r.PathValue("id"), p.TenantFilter()); err != nil {
		handleJobError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "print job deleted")
}

func (a *API) handleJobStats(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	stats, err := a.jobs.Stats(r.Context(), p.TenantFilter())
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func parseJobQuery(r *http.Request) (printjob.Query, error) {
	var q printjob.Query
	vals := r.URL.Query()

	page, err := parsePositiveInt(vals.Get("page"), 1, 1, 1<<30)
	if err != nil {
		return q, err
	}
	limit, err := parsePositiveInt(vals.Get("limit"), 10, 1, 100)
	if err != nil {
		return q, err
	}
	q.Page = page
	q.Limit = limit

	if raw := vals.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := printjob.Status(strings.TrimSpace(s))
			if !st.Valid() {
				return q, errInvalidStatus
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	if raw := vals.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return q, errInvalidDate
		}
		q.From = t
	}
	if raw := vals.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return q, errInvalidDate
		}
		// to is inclusive at the API, exclusive in the store
		q.To = t.AddDate(0, 0, 1)
	}
	return q, nil
}
