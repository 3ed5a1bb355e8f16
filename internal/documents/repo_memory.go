package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // documentId -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > 0 && len(r.data) >= limit {
		return ErrLimitReached
	}
	r.data[doc.ID] = doc
	return nil
}

// List returns all documents, most recently updated first.
func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		out = append(out, doc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Rename changes a document's display name.
func (r *MemoryRepo) Rename(ctx context.Context, id, fileName string, updatedAt time.Time) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.FileName = fileName
	doc.UpdatedAt = updatedAt
	r.data[id] = doc
	return doc, nil
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
