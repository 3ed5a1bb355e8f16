package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"doctoc-backend/internal/shared/metrics"
	"doctoc-backend/internal/shared/storage/object"
	"doctoc-backend/internal/shared/telemetry"
	"doctoc-backend/internal/shared/util"
)

// MaxUploadSize caps accepted PDF uploads.
const MaxUploadSize = 25 << 20

const contentTypePDF = "application/pdf"

var pdfMagic = []byte("%PDF-")

// PageCounter opens a PDF and reports its page count.
type PageCounter func(data []byte) (int, error)

// Service stores PDF files in the object store and their metadata in Repo.
type Service struct {
	Store      object.ObjectStore
	Repo       Repo
	CountPages PageCounter
	NewID      func() string
	Now        func() time.Time
}

// NewService constructs a Service backed by store and repo.
func NewService(store object.ObjectStore, repo Repo) *Service {
	return &Service{Store: store, Repo: repo, CountPages: CountPages, NewID: uuid.NewString, Now: time.Now}
}

// Upload validates r as a PDF and stores it under a fresh id.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Document, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return Document{}, ErrTooLarge
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return Document{}, fmt.Errorf("%w: file is not a PDF", ErrInvalidInput)
	}

	pages, err := s.countPages(data)
	if err != nil {
		return Document{}, fmt.Errorf("%w: unreadable PDF: %v", ErrInvalidInput, err)
	}

	id := s.newID()
	key := StorageKey(id)
	size, err := s.Store.Put(ctx, key, contentTypePDF, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	now := s.now()
	doc := Document{
		ID:         id,
		FileName:   name,
		SizeBytes:  size,
		Pages:      pages,
		StorageKey: key,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, doc, MaxDocuments); err != nil {
		s.removeObject(ctx, key)
		if errors.Is(err, ErrLimitReached) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("record document: %w", err)
	}

	metrics.IncDocumentsUploaded()
	telemetry.Info("documents.uploaded", map[string]any{
		"document_id": id,
		"size_bytes":  size,
		"pages":       pages,
	})

	return doc, nil
}

// List returns all documents, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

// Get returns a document's metadata.
func (s *Service) Get(ctx context.Context, docID string) (Document, error) {
	if err := util.ValidateDocumentID(docID); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.Repo.GetByID(ctx, docID)
}

// Rename sets a new display name. The stored file keeps its key.
func (s *Service) Rename(ctx context.Context, docID, fileName string) (Document, error) {
	if err := util.ValidateDocumentID(docID); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.Repo.Rename(ctx, docID, name, s.now())
}

// Delete removes the stored file and its metadata. A file already missing
// from the store does not block removing the record.
func (s *Service) Delete(ctx context.Context, docID string) error {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("delete document file: %w", err)
	}
	if err := s.Repo.Delete(ctx, docID); err != nil {
		return err
	}
	telemetry.Info("documents.deleted", map[string]any{"document_id": docID})
	return nil
}

// Download returns the metadata and a reader for the stored PDF. The caller
// closes the reader.
func (s *Service) Download(ctx context.Context, docID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, fmt.Errorf("open document: %w", err)
	}
	return doc, rc, nil
}

// Open returns a reader for the stored PDF. The caller closes it.
func (s *Service) Open(ctx context.Context, docID string) (io.ReadCloser, error) {
	if err := util.ValidateDocumentID(docID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rc, err := s.Store.Open(ctx, StorageKey(docID))
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open document: %w", err)
	}
	return rc, nil
}

// Read loads the whole PDF into memory.
func (s *Service) Read(ctx context.Context, docID string) ([]byte, error) {
	rc, err := s.Open(ctx, docID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func (s *Service) countPages(data []byte) (int, error) {
	if s.CountPages == nil {
		return CountPages(data)
	}
	return s.CountPages(data)
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.Warn("documents.cleanup_failed", map[string]any{"storage_key": key, "error": err})
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// CountPages parses the PDF cross-reference table and returns the page count.
// The parser panics on some malformed inputs, so panics are reported as errors.
func CountPages(data []byte) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n := reader.NumPage()
	if n <= 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}
