// Package source provides access to the files of a source tree.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidRoot is returned when the root path does not exist or is not a directory.
	ErrInvalidRoot = errors.New("source: invalid root")
	// ErrOutsideRoot is returned when a relative path escapes the root.
	ErrOutsideRoot = errors.New("source: path outside root")
)

// Source is a tree of files addressed by paths relative to Root.
type Source interface {
	// Root returns the absolute root directory.
	Root() string
	// Open opens the file at the slash- or OS-separated path relative to Root.
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	// Close releases resources held by the source.
	Close() error
}

// LocalSource reads files from the local filesystem.
type LocalSource struct {
	root string
}

// NewLocalSource validates root and returns a Source over it.
// The returned error wraps ErrInvalidRoot when root is missing, unreadable
// or not a directory.
func NewLocalSource(root string) (*LocalSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s: not a directory", ErrInvalidRoot, root)
	}

	// Stat succeeds on directories we cannot list; fail early instead of
	// producing an empty walk.
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	_, err = f.Readdirnames(1)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	return &LocalSource{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *LocalSource) Root() string {
	return s.root
}

// Open opens a file relative to the root.
func (s *LocalSource) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, relPath)
	}

	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", relPath, err)
	}
	return f, nil
}

// Close is a no-op for local sources.
func (s *LocalSource) Close() error {
	return nil
}
