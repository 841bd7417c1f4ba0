// Package storage persists uploaded resumes on local disk or in Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// StorageClient stores and removes named objects. UploadFile returns the
// location recorded alongside the owning row.
type StorageClient interface {
	UploadFile(ctx context.Context, objectName string, data io.Reader) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

// ResumePrefix groups stored resumes.
const ResumePrefix = "resumes"

// ObjectName returns a unique, time-sortable name under prefix.
func ObjectName(prefix, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(prefix, strings.ToLower(ulid.Make().String())+ext)
}

// LocalStorage writes objects below Dir.
type LocalStorage struct {
	Dir string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{Dir: dir}, nil
}

func (s *LocalStorage) path(objectName string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectName))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(s.Dir, clean), nil
}

// UploadFile copies data to Dir/objectName. A partial file is removed on failure.
func (s *LocalStorage) UploadFile(ctx context.Context, objectName string, data io.Reader) (string, error) {
	dst, err := s.path(objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	if _, err := io.Copy(f, readerWithContext(ctx, data)); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to close object: %w", err)
	}
	return dst, nil
}

// DeleteFile removes the object; a missing object is not an error.
func (s *LocalStorage) DeleteFile(_ context.Context, objectName string) error {
	dst, err := s.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
