package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"soundblast/internal/apperr"
	"soundblast/internal/model"
)

// Package storage contains blob store adapters. Every implementation streams
// payloads in both directions and never holds a whole blob in memory.

// BlobStore is the blob storage abstraction consumed by the file and
// transcription services.
type BlobStore interface {
	// Upload streams r to the backend and returns the backend-assigned identifier.
	// size is the exact payload length, or -1 when unknown.
	Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error)
	// FindByID returns the stored file, or nil without error when the identifier
	// is well formed but unknown.
	FindByID(ctx context.Context, id string) (*model.StoredFile, error)
	// DownloadToPath streams the blob to dest, creating or truncating it.
	DownloadToPath(ctx context.Context, id, dest string) error
	// Open returns a streaming reader for the blob alongside its description.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error)
	// List returns every stored file. One unreadable entry fails the whole call.
	List(ctx context.Context) ([]model.StoredFile, error)
}

// ValidateUpload checks the caller-supplied fields of an upload.
func ValidateUpload(filename string, meta model.FileMetadata) error {
	if strings.TrimSpace(filename) == "" {
		return apperr.E(apperr.KindInvalid, "storage.upload", "missing file name")
	}
	if strings.TrimSpace(meta.ContentType) == "" {
		return apperr.E(apperr.KindInvalid, "storage.upload", "missing content type")
	}
	return nil
}

// writeToPath copies r into dest through a buffered writer. A partially written
// dest is removed on failure.
func writeToPath(dest string, r io.Reader) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}
	w := bufio.NewWriterSize(f, 256*1024)

	n, err := io.Copy(w, r)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return n, fmt.Errorf("write %s: %w", dest, err)
	}
	return n, nil
}

// notFound builds the error returned by operations that require an existing blob.
func notFound(op, id string) error {
	return apperr.E(apperr.KindNotFound, op, fmt.Sprintf("file %s not found", id))
}
