package runs

import (
	"errors"
	"time"
)

// Status is the outcome of one extraction run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultListLimit and MaxListLimit bound ListByDocument.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrInvalidInput = errors.New("invalid input")

// Run records a single TOC extraction attempt for a document.
type Run struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	JobID        string    `json:"jobId,omitempty"`
	Status       Status    `json:"status"`
	HeadingCount int       `json:"headingCount"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Duration is the wall time the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ClampLimit maps a caller-provided limit into [1, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
