package runs

import "context"

// Repo persists extraction runs. It is an audit log; extraction never reads it.
type Repo interface {
	Create(ctx context.Context, run Run) error
	ListByDocument(ctx context.Context, documentID string, limit int) ([]Run, error)
}
