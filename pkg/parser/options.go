package parser

import (
	"log/slog"
	"time"

	"github.com/blendin/extractor/pkg/digest"
)

// ExtractOptions configures Extractor behavior.
type ExtractOptions struct {
	// CacheSize is the number of parsed files kept in the LRU cache.
	// Zero uses DefaultCacheSize; negative disables the cache.
	CacheSize int

	// Digest selects the hash algorithm for artifact keys.
	// Empty uses digest.DefaultAlgorithm.
	Digest digest.Algorithm

	// ExcludePatterns are doublestar globs matched against slash-separated
	// paths relative to the root. Matching directories are skipped whole.
	ExcludePatterns []string

	// Logger receives per-file warnings and the run summary.
	// If nil, uses slog.Default().
	Logger *slog.Logger

	// Marker is the translation function name. Empty uses "t".
	Marker string

	// MaxFileSize is the maximum file size in bytes to process.
	// Larger files are skipped and reported in ExtractResult.Errors.
	// Zero means no limit.
	MaxFileSize int64

	// Patterns specifies glob patterns restricting the candidate files.
	// Empty means every source file is processed.
	Patterns []string

	// TextField names the field a plain string argument is stored under.
	// Empty uses "text".
	TextField string

	// Timeout bounds the whole extraction. Zero means no timeout.
	Timeout time.Duration

	// Workers specifies the number of concurrent file parsers.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// ExtractOption is a functional option for configuring Extractor.
type ExtractOption func(*ExtractOptions)

// WithWorkers sets the number of concurrent file parsers.
// Negative values are ignored.
func WithWorkers(n int) ExtractOption {
	return func(o *ExtractOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the extraction timeout.
// Negative values are ignored.
func WithTimeout(d time.Duration) ExtractOption {
	return func(o *ExtractOptions) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithExcludePatterns sets globs for paths to skip during file discovery.
func WithExcludePatterns(patterns []string) ExtractOption {
	return func(o *ExtractOptions) {
		o.ExcludePatterns = patterns
	}
}

// WithMaxFileSize sets the maximum file size to process.
func WithMaxFileSize(size int64) ExtractOption {
	return func(o *ExtractOptions) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithPatterns sets glob patterns to filter source files.
func WithPatterns(patterns []string) ExtractOption {
	return func(o *ExtractOptions) {
		o.Patterns = patterns
	}
}

// WithMarker sets the translation function name.
func WithMarker(marker string) ExtractOption {
	return func(o *ExtractOptions) {
		o.Marker = marker
	}
}

// WithTextField sets the field name used for string arguments.
func WithTextField(name string) ExtractOption {
	return func(o *ExtractOptions) {
		o.TextField = name
	}
}

// WithDigest sets the hash algorithm.
func WithDigest(alg digest.Algorithm) ExtractOption {
	return func(o *ExtractOptions) {
		o.Digest = alg
	}
}

// WithCacheSize sets the parse cache capacity. Negative disables caching.
func WithCacheSize(n int) ExtractOption {
	return func(o *ExtractOptions) {
		o.CacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExtractOption {
	return func(o *ExtractOptions) {
		o.Logger = logger
	}
}

func applyDefaults(opts *ExtractOptions) {
	if opts.MaxFileSize < 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Digest == "" {
		opts.Digest = digest.DefaultAlgorithm
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
}
