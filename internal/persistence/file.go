package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmylchreest/prefstore/internal/storage"
)

// FileBackend stores each entry as <key>.json inside a sandboxed directory.
// Writes are atomic.
type FileBackend struct {
	sandbox *storage.Sandbox
}

// NewFileBackend creates a FileBackend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	sb, err := storage.NewSandbox(dir)
	if err != nil {
		return nil, fmt.Errorf("opening storage directory: %w", err)
	}
	return &FileBackend{sandbox: sb}, nil
}

// Name implements Backend.
func (f *FileBackend) Name() string { return "file" }

// Get implements Backend.
func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := f.sandbox.ReadFile(entryFile(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set implements Backend.
func (f *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.sandbox.AtomicWrite(entryFile(key), value)
}

// Close implements Backend.
func (f *FileBackend) Close() error { return nil }

func entryFile(key string) string {
	return key + ".json"
}
