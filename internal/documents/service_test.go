package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"doctoc-backend/internal/shared/storage/object/local"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	called := false
	svc := NewService(local.New(t.TempDir()), NewMemoryRepo())
	svc.CountPages = func([]byte) (int, error) {
		called = true
		return 1, nil
	}

	body := io.MultiReader(bytes.NewReader(pdfMagic), io.LimitReader(zeroReader{}, MaxUploadSize))
	_, err := svc.Upload(context.Background(), "big.pdf", body)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if called {
		t.Fatalf("page counter should not run for oversized uploads")
	}
}

func TestUploadRejectsUnparseablePDF(t *testing.T) {
	svc := NewService(local.New(t.TempDir()), NewMemoryRepo())
	svc.CountPages = func([]byte) (int, error) { return 0, errors.New("no xref") }

	_, err := svc.Upload(context.Background(), "a.pdf", bytes.NewReader([]byte("%PDF-1.7 junk")))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRejectsTraversalFileName(t *testing.T) {
	svc := NewService(local.New(t.TempDir()), NewMemoryRepo())
	_, err := svc.Upload(context.Background(), "../x.pdf", bytes.NewReader([]byte("%PDF-1.7")))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCountPagesRejectsGarbage(t *testing.T) {
	if _, err := CountPages([]byte("%PDF-1.4 not really a pdf")); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestReadMissingDocument(t *testing.T) {
	svc := NewService(local.New(t.TempDir()), NewMemoryRepo())
	if _, err := svc.Read(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Read(context.Background(), "../nope"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteToleratesMissingFile(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(store, NewMemoryRepo())
	svc.CountPages = func([]byte) (int, error) { return 1, nil }
	svc.NewID = func() string { return "doc-1" }

	ctx := context.Background()
	if _, err := svc.Upload(ctx, "paper.pdf", bytes.NewReader([]byte("%PDF-1.4\n%%EOF\n"))); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := store.Delete(ctx, StorageKey("doc-1")); err != nil {
		t.Fatalf("remove file: %v", err)
	}

	if err := svc.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
