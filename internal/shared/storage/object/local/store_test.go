package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doctoc-backend/internal/shared/storage/object"
)

func TestPutAndOpen(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	n, err := store.Put(ctx, "doc-1.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes written, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-1.pdf")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	rc, err := store.Open(ctx, "doc-1.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenMissingReturnsNotFound(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "nope.pdf")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"../escape.pdf", "/etc/passwd", "."} {
		if _, err := store.Open(ctx, key); err == nil || errors.Is(err, object.ErrNotFound) {
			t.Fatalf("Open(%q) expected invalid key error, got %v", key, err)
		}
		if _, err := store.Put(ctx, key, "application/pdf", strings.NewReader("x")); err == nil {
			t.Fatalf("Put(%q) expected error", key)
		}
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	if _, err := store.Put(ctx, "doc-1.pdf", "application/pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "doc-1.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-1.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if err := store.Delete(ctx, "doc-1.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := store.Delete(ctx, "../escape.pdf"); err == nil || errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected invalid key error, got %v", err)
	}
}
