package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, file_name, size_bytes, pages, storage_key, created_at, updated_at`

// Create inserts a document; the count check and insert run as one statement.
func (r *PGRepo) Create(ctx context.Context, doc Document, limit int) error {
	const query = `
INSERT INTO documents (id, file_name, size_bytes, pages, storage_key, created_at, updated_at)
SELECT $1::text, $2::text, $3::bigint, $4::integer, $5::text, $6::timestamptz, $7::timestamptz
WHERE (SELECT COUNT(*) FROM documents) < $8`

	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.FileName,
		doc.SizeBytes,
		doc.Pages,
		doc.StorageKey,
		doc.CreatedAt,
		doc.UpdatedAt,
		limit,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLimitReached
	}
	return nil
}

// List returns all documents, most recently updated first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY updated_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// Rename changes a document's display name.
func (r *PGRepo) Rename(ctx context.Context, id, fileName string, updatedAt time.Time) (Document, error) {
	query := `UPDATE documents SET file_name = $2, updated_at = $3 WHERE id = $1 RETURNING ` + documentColumns
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id, fileName, updatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// Delete removes a document.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	err := row.Scan(&doc.ID, &doc.FileName, &doc.SizeBytes, &doc.Pages, &doc.StorageKey, &doc.CreatedAt, &doc.UpdatedAt)
	return doc, err
}
