package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/blendin/extractor/pkg/source"
)

// SkipDirName excludes every directory whose relative path contains it.
const SkipDirName = "node_modules"

var sourceFilePattern = regexp.MustCompile(`\.(jsx?|tsx?)$`)

// IsSourceFile reports whether path has one of the extracted extensions.
// Matching is case-sensitive.
func IsSourceFile(path string) bool {
	return sourceFilePattern.MatchString(path)
}

// PathFilter decides which paths below a root take part in extraction.
// Paths are relative to the root and slash-separated.
type PathFilter struct {
	Exclude []string
	Include []string
}

// SkipDir reports whether the directory rel and its subtree are skipped.
func (f PathFilter) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if strings.Contains(rel, SkipDirName) {
		return true
	}
	return matchesAnyPattern(rel, f.Exclude)
}

// MatchFile reports whether the file rel is a candidate.
func (f PathFilter) MatchFile(rel string) bool {
	if !IsSourceFile(rel) {
		return false
	}
	if matchesAnyPattern(rel, f.Exclude) {
		return false
	}
	if len(f.Include) > 0 && !matchesAnyPattern(rel, f.Include) {
		return false
	}
	return true
}

func matchesAnyPattern(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

type discovery struct {
	files   []string
	skipped int
	errs    []ExtractError
}

// discoverSourceFiles walks the source root depth-first in lexical order.
// Returns relative paths from the source root for consistent Source.Open() usage.
func discoverSourceFiles(ctx context.Context, src source.Source, filter PathFilter, maxFileSize int64) (*discovery, error) {
	rootPath := src.Root()
	if resolved, err := filepath.EvalSymlinks(rootPath); err == nil {
		rootPath = resolved
	}
	d := &discovery{}

	err := filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			d.errs = append(d.errs, ExtractError{Err: err, Path: path, Phase: PhaseDiscovery})
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if walkErr != nil {
			if path == rootPath {
				return fmt.Errorf("%w: %s: %w", source.ErrInvalidRoot, rootPath, walkErr)
			}
			d.errs = append(d.errs, ExtractError{
				Err:   fmt.Errorf("access error: %w", walkErr),
				Path:  relPath,
				Phase: PhaseDiscovery,
			})
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if filter.SkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !filter.MatchFile(relPath) {
			return nil
		}

		info, err := fileInfo(path, entry)
		if err != nil {
			d.errs = append(d.errs, ExtractError{
				Err:   fmt.Errorf("stat: %w", err),
				Path:  relPath,
				Phase: PhaseDiscovery,
			})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			d.skipped++
			d.errs = append(d.errs, ExtractError{
				Err:   fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), maxFileSize),
				Path:  relPath,
				Phase: PhaseDiscovery,
			})
			return nil
		}

		d.files = append(d.files, relPath)
		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return d, err
		}
		if errors.Is(err, source.ErrInvalidRoot) {
			return nil, err
		}
		d.errs = append(d.errs, ExtractError{Err: err, Phase: PhaseDiscovery})
	}

	return d, nil
}

// fileInfo follows symlinked files; symlinked directories are not descended.
func fileInfo(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return entry.Info()
}
