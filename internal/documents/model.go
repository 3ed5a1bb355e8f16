package documents

import (
	"errors"
	"time"
)

// MaxDocuments caps how many documents the library holds.
const MaxDocuments = 25

// Document describes a stored PDF. The file itself lives in the object store
// under StorageKey.
type Document struct {
	ID         string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	Pages      int       `json:"pages"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
	ErrTooLarge     = errors.New("document too large")
	ErrLimitReached = errors.New("document limit reached")
)

// StorageKey returns the object key for a document id.
func StorageKey(docID string) string {
	return docID + ".pdf"
}
