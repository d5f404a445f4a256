package httpapi

import (
	"net/http"
	"time"

	"printhub.org/internal/auth"
)

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermViewDashboard); !ok {
		return
	}
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errInvalidDate.Error())
			return
		}
		date = &t
	}
	stats, err := a.reports.Stats(r.Context(), p.TenantFilter(), date)
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (a *API) handleDashboardWeekly(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermViewDashboard); !ok {
		return
	}
	days, err := a.reports.WeeklyActivity(r.Context(), p.TenantFilter())
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, days)
}

func (a *API) handleDashboardJobsByDate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requireKind(w, r, auth.KindAdmin, auth.KindClerk)
	if !ok {
		return
	}
	if _, ok := a.requirePermission(w, r, auth.PermViewDashboard); !ok {
		return
	}
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, errInvalidDate.Error())
		return
	}
	jobs, err := a.reports.JobsByDate(r.Context(), p.TenantFilter(), date)
	if err != nil {
		handleJobError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, jobs)
}
