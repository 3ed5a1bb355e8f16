package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open and Delete when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
