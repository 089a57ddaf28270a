// Package storage confines the file backend to one directory. Entry names
// come from configuration, so every path is checked before it is touched.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ErrEscapesSandbox is returned for paths resolving outside the base directory.
var ErrEscapesSandbox = errors.New("path escapes sandbox")

const (
	dirMode  = 0o750
	fileMode = 0o640
)

// Sandbox reads and writes files below a single base directory.
type Sandbox struct {
	baseDir string
}

// NewSandbox creates a Sandbox rooted at baseDir, creating the directory if needed.
func NewSandbox(baseDir string) (*Sandbox, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("creating %q: %w", abs, err)
	}
	return &Sandbox{baseDir: abs}, nil
}

// BaseDir returns the absolute base directory.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

// ResolvePath maps name to an absolute path inside the sandbox.
func (s *Sandbox) ResolvePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s is absolute", ErrEscapesSandbox, name)
	}
	full := filepath.Join(s.baseDir, name)
	if full != s.baseDir && !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscapesSandbox, name)
	}
	return full, nil
}

// ReadFile reads name. A missing file yields an error wrapping os.ErrNotExist.
func (s *Sandbox) ReadFile(name string) ([]byte, error) {
	path, err := s.ResolvePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// AtomicWrite replaces name with data. The content is written to a hidden
// sibling, synced and renamed, so a concurrent reader sees the old or the new
// file but never a partial one.
func (s *Sandbox) AtomicWrite(name string, data []byte) error {
	target, err := s.ResolvePath(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(target)+"."+ulid.Make().String()+".tmp")
	if err := writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	return f.Close()
}
