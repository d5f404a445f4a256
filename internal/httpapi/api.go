package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"printhub.org/internal/auth"
	"printhub.org/internal/obs"
	"printhub.org/internal/otp"
	"printhub.org/internal/printjob"
	"printhub.org/internal/report"
)

// ReadyProbe checks readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the services the HTTP layer fronts.
type Options struct {
	Auth       *auth.Service
	Tokens     *auth.Tokens
	Jobs       *printjob.Service
	OTP        *otp.Service
	Reports    *report.Service
	ReadyProbe ReadyProbe
	Version    string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	tokens     *auth.Tokens
	jobs       *printjob.Service
	otp        *otp.Service
	reports    *report.Service
	readyProbe ReadyProbe
	version    string
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		tokens:     opts.Tokens,
		jobs:       opts.Jobs,
		otp:        opts.OTP,
		reports:    opts.Reports,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
	}

	// health/ready
	a.mux.HandleFunc("GET /health", a.Health)
	a.mux.HandleFunc("GET /readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("GET /metrics", obs.Handler())

	// admin auth
	a.mux.HandleFunc("POST /auth/register", a.handleAdminRegister)
	a.mux.HandleFunc("POST /auth/login", a.handleAdminLogin)
	a.mux.HandleFunc("POST /auth/change-password", a.handleChangePassword)

	// client auth
	a.mux.HandleFunc("POST /clients/register", a.handleClientRegister)
	a.mux.HandleFunc("POST /clients/login", a.handleClientLogin)

	// clerk management
	a.mux.HandleFunc("POST /users", a.handleCreateClerk)
	a.mux.HandleFunc("GET /users", a.handleListClerks)

	// print jobs
	a.mux.HandleFunc("POST /print/submit/client/{clientId}", a.handleSubmitJob)
	a.mux.HandleFunc("GET /print/jobs", a.handleListJobs)
	a.mux.HandleFunc("GET /print/jobs/{id}", a.handleGetJob)
	a.mux.HandleFunc("PUT /print/jobs/{id}/status", a.handleUpdateJobStatus)
	a.mux.HandleFunc("DELETE /print/jobs/{id}", a.handleDeleteJob)
	a.mux.HandleFunc("GET /print/stats", a.handleJobStats)

	// dashboard
	a.mux.HandleFunc("GET /dashboard/stats", a.handleDashboardStats)
	a.mux.HandleFunc("GET /dashboard/weekly", a.handleDashboardWeekly)
	a.mux.HandleFunc("GET /dashboard/jobs-by-date", a.handleDashboardJobsByDate)

	// email verification
	a.mux.HandleFunc("POST /otp/send-otp", a.handleSendOTP)
	a.mux.HandleFunc("POST /otp/verify-otp", a.handleVerifyOTP)
	a.mux.HandleFunc("POST /otp/resend-otp", a.handleResendOTP)
	a.mux.HandleFunc("GET /otp/check-verification/{email}", a.handleCheckVerification)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the full handler chain: metrics around auth around routes.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "printhub-api",
		"version":   a.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeMessage(w, http.StatusOK, "ready")
}
