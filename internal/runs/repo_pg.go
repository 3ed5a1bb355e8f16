package runs

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	if run.ID == "" || run.DocumentID == "" {
		return ErrInvalidInput
	}
	const query = `
INSERT INTO toc_runs (id, document_id, job_id, status, heading_count, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.DocumentID,
		nullString(run.JobID),
		string(run.Status),
		run.HeadingCount,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

// ListByDocument returns the newest runs first.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string, limit int) ([]Run, error) {
	const query = `
SELECT id, document_id, job_id, status, heading_count, error, started_at, finished_at
FROM toc_runs
WHERE document_id = $1
ORDER BY started_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, documentID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			run    Run
			status string
			jobID  sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.DocumentID, &jobID, &status, &run.HeadingCount, &errMsg, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Status = Status(status)
		run.JobID = jobID.String
		run.Error = errMsg.String
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
