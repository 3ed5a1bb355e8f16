package documents

import (
	"context"
	"time"
)

// Repo persists document metadata.
type Repo interface {
	// Create inserts doc unless the library already holds limit documents,
	// in which case it returns ErrLimitReached.
	Create(ctx context.Context, doc Document, limit int) error
	// List returns every document, most recently updated first.
	List(ctx context.Context) ([]Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	Rename(ctx context.Context, id, fileName string, updatedAt time.Time) (Document, error)
	Delete(ctx context.Context, id string) error
}
