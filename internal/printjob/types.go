package printjob

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("printjob: not found")
	ErrInvalidInput = errors.New("printjob: invalid input")
	ErrInvalidState = errors.New("printjob: invalid status transition")
)

// Status is the lifecycle state of a print job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is allowed:
// pending -> processing -> completed, failed reachable from any
// non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Job is a print job record. AdminID is the tenant partition key, set at
// creation and never changed.
type Job struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name,omitempty"`
	FilePath     string    `json:"file_path,omitempty"`
	FileSize     int64     `json:"file_size,omitempty"`
	OriginalName string    `json:"original_name,omitempty"`
	Status       Status    `json:"status"`
	PrinterName  string    `json:"printer_name,omitempty"`
	Copies       int       `json:"copies"`
	Duplex       bool      `json:"duplex"`
	Color        bool      `json:"color"`
	Artwork      string    `json:"artwork"`
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
	Size         string    `json:"size,omitempty"`
	Quantity     int       `json:"quantity"`
	Location     string    `json:"location"`
	Description  string    `json:"description,omitempty"`
	ClientID     string    `json:"client_id"`
	AdminID      string    `json:"admin_id"`
	RemoteRef    string    `json:"remote_ref,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stats aggregates a tenant's jobs.
type Stats struct {
	CountsByStatus map[Status]int `json:"counts_by_status"`
	TotalJobs      int            `json:"total_jobs"`
	CompletedJobs  int            `json:"completed_jobs"`
	SuccessRate    float64        `json:"success_rate"`
}
