package toc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"doctoc-backend/internal/runs"
	"doctoc-backend/internal/shared/metrics"
	"doctoc-backend/internal/shared/telemetry"
	"doctoc-backend/internal/shared/util"
)

// ErrExtractionFailed wraps any failure of the remote extraction or of
// parsing its result.
var ErrExtractionFailed = errors.New("extraction failed")

// ErrInvalidDocumentID is returned for ids that cannot name a stored document.
var ErrInvalidDocumentID = errors.New("invalid document id")

// Extraction is what an Extractor returns for one PDF. JobID may be set even
// when extraction failed.
type Extraction struct {
	JobID    string
	Headings []Heading
}

// Extractor turns PDF bytes into headings.
type Extractor interface {
	ExtractTOC(ctx context.Context, pdf []byte) (Extraction, error)
}

// DocumentReader loads stored PDFs by id.
type DocumentReader interface {
	Read(ctx context.Context, docID string) ([]byte, error)
}

// Service builds tables of contents for stored documents.
type Service struct {
	Docs      DocumentReader
	Extractor Extractor
	Runs      runs.Repo
	Now       func() time.Time
}

// TOC reads the document and runs one extraction for it. Document lookup
// errors are returned unchanged so callers can tell a missing document from
// a failed extraction.
func (s *Service) TOC(ctx context.Context, docID string) (Extraction, error) {
	if err := util.ValidateDocumentID(docID); err != nil {
		return Extraction{}, ErrInvalidDocumentID
	}

	pdf, err := s.Docs.Read(ctx, docID)
	if err != nil {
		return Extraction{}, err
	}

	metrics.IncExtractionStarted()
	started := s.now()
	res, err := s.Extractor.ExtractTOC(ctx, pdf)
	finished := s.now()
	metrics.ObserveExtractionDurationMs(float64(finished.Sub(started).Microseconds()) / 1000.0)

	run := runs.Run{
		ID:           uuid.NewString(),
		DocumentID:   docID,
		JobID:        res.JobID,
		HeadingCount: len(res.Headings),
		StartedAt:    started,
		FinishedAt:   finished,
	}
	if err != nil {
		metrics.IncExtractionFailed()
		run.Status = runs.StatusFailed
		run.Error = err.Error()
		run.HeadingCount = 0
		s.record(ctx, run)
		telemetry.Error("toc.extraction.failed", map[string]any{
			"document_id": docID,
			"job_id":      res.JobID,
			"error":       err,
		})
		return Extraction{JobID: res.JobID}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	metrics.IncExtractionCompleted()
	run.Status = runs.StatusSucceeded
	s.record(ctx, run)

	if res.Headings == nil {
		res.Headings = []Heading{}
	}
	return res, nil
}

// ListRuns lists the most recent extraction runs for a document.
func (s *Service) ListRuns(ctx context.Context, docID string, limit int) ([]runs.Run, error) {
	if err := util.ValidateDocumentID(docID); err != nil {
		return nil, ErrInvalidDocumentID
	}
	if s.Runs == nil {
		return []runs.Run{}, nil
	}
	return s.Runs.ListByDocument(ctx, docID, limit)
}

// record stores the run; failures are logged and never surface to the caller.
func (s *Service) record(ctx context.Context, run runs.Run) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.Create(context.WithoutCancel(ctx), run); err != nil {
		telemetry.Warn("toc.run.record_failed", map[string]any{
			"document_id": run.DocumentID,
			"run_id":      run.ID,
			"error":       err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
