package runs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Run // documentId -> runs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Run),
	}
}

// Create appends a run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.ID == "" || run.DocumentID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[run.DocumentID] = append(r.data[run.DocumentID], run)
	return nil
}

// ListByDocument returns the newest runs first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit)

	r.mu.RLock()
	out := append([]Run(nil), r.data[documentID]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Run{}
	}
	return out, nil
}
