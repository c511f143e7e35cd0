package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/blendin/extractor/pkg/digest"
	"github.com/blendin/extractor/pkg/domain"
	"github.com/blendin/extractor/pkg/parser/callsite"
	"github.com/blendin/extractor/pkg/parser/tspool"
	"github.com/blendin/extractor/pkg/source"
)

const (
	// DefaultWorkers indicates that the extractor should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize disables the file size limit.
	DefaultMaxFileSize = 0
	// DefaultCacheSize is the default number of cached file results.
	DefaultCacheSize = 4096
)

// Phases reported in ExtractError.
const (
	PhaseDiscovery = "discovery"
	PhaseRead      = "read"
	PhaseParsing   = "parsing"
)

var (
	// ErrExtractCancelled is returned when extraction is cancelled via context.
	ErrExtractCancelled = errors.New("extractor: extraction cancelled")
	// ErrExtractTimeout is returned when extraction exceeds the timeout duration.
	ErrExtractTimeout = errors.New("extractor: extraction timeout")
	// ErrFileTooLarge is reported for files skipped because of MaxFileSize.
	ErrFileTooLarge = errors.New("extractor: file exceeds max file size")
)

// Extractor turns a source tree into a LocalizationMap.
// An Extractor may be reused; unchanged files are served from its cache.
type Extractor struct {
	options *ExtractOptions
	visitor *callsite.Visitor
	hasher  *digest.Hasher
	cache   *lru.Cache[cacheKey, *fileOutcome]
}

// ExtractResult contains the outcome of an extraction.
type ExtractResult struct {
	// Map holds the deduplicated records keyed by content hash.
	Map *domain.LocalizationMap

	// Errors contains non-fatal errors encountered during extraction.
	Errors []ExtractError

	// Stats provides extraction statistics.
	Stats ExtractStats
}

// ExtractError represents an error that occurred during a specific phase of extraction.
type ExtractError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path relative to the root (may be empty for non-file errors).
	Path string

	// Phase indicates which phase the error occurred in.
	// Values: "discovery", "read", "parsing"
	Phase string
}

// Error implements the error interface.
func (e ExtractError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ExtractError) Unwrap() error {
	return e.Err
}

// ExtractStats provides statistics about an extraction.
type ExtractStats struct {
	// FilesDiscovered is the number of candidate source files.
	FilesDiscovered int

	// FilesParsed is the number of files parsed without error.
	FilesParsed int

	// FilesFailed is the number of files that could not be read or parsed.
	FilesFailed int

	// FilesSkipped is the number of files above MaxFileSize. Each one is
	// also reported in Errors.
	FilesSkipped int

	// CacheHits is the number of files served from the parse cache.
	CacheHits int

	// CallSites is the number of marker calls found.
	CallSites int

	// Records is the number of TextRecords produced before deduplication.
	Records int

	// Duplicates is the number of records whose hash was already present.
	Duplicates int

	// DynamicArguments counts call sites whose argument is not a literal.
	DynamicArguments int

	// MissingArguments counts call sites without arguments.
	MissingArguments int

	// Duration is the total extraction duration.
	Duration time.Duration
}

type cacheKey struct {
	lang    domain.Language
	content string
}

// fileOutcome is the per-file extraction output, independent of the file's path.
type fileOutcome struct {
	records []domain.TextRecord
	sites   int
	dynamic int
	missing int
}

type fileResult struct {
	path    string
	outcome *fileOutcome
	err     *ExtractError
	cached  bool
}

// NewExtractor creates a new extractor with the given options.
func NewExtractor(opts ...ExtractOption) (*Extractor, error) {
	options := &ExtractOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	hasher, err := digest.New(options.Digest)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		options: options,
		visitor: callsite.NewVisitor(options.Marker),
		hasher:  hasher,
	}

	if options.CacheSize > 0 {
		cache, err := lru.New[cacheKey, *fileOutcome](options.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create parse cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Extract performs the complete extraction:
//  1. Discover source files
//  2. Parse files and canonicalize call sites in parallel
//  3. Hash and merge records in discovery order
//
// A root that cannot be walked fails with an error wrapping source.ErrInvalidRoot.
// On cancellation or timeout the partial result is returned with
// ErrExtractCancelled or ErrExtractTimeout.
func (e *Extractor) Extract(ctx context.Context, src source.Source) (*ExtractResult, error) {
	startTime := time.Now()

	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()
	}

	result := &ExtractResult{
		Map:    domain.NewLocalizationMap(),
		Errors: []ExtractError{},
	}

	filter := PathFilter{Exclude: e.options.ExcludePatterns, Include: e.options.Patterns}
	found, err := discoverSourceFiles(ctx, src, filter, e.options.MaxFileSize)
	if found == nil {
		return nil, err
	}
	result.Errors = append(result.Errors, found.errs...)
	result.Stats.FilesDiscovered = len(found.files)
	result.Stats.FilesSkipped = found.skipped

	if err == nil && len(found.files) > 0 {
		results := e.parseFilesParallel(ctx, src, found.files)
		e.reduce(results, result)
	}

	result.Stats.Duration = time.Since(startTime)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, ErrExtractTimeout
		}
		return result, ErrExtractCancelled
	}

	for _, extractErr := range result.Errors {
		e.options.Logger.Warn("extraction failed",
			slog.String("path", extractErr.Path),
			slog.String("phase", extractErr.Phase),
			slog.Any("error", extractErr.Err),
		)
	}
	e.options.Logger.Debug("extraction finished",
		slog.String("root", src.Root()),
		slog.Int("files", result.Stats.FilesDiscovered),
		slog.Int("failed", result.Stats.FilesFailed),
		slog.Int("skipped", result.Stats.FilesSkipped),
		slog.Int("call_sites", result.Stats.CallSites),
		slog.Int("entries", result.Map.Len()),
		slog.Int("duplicates", result.Stats.Duplicates),
		slog.Int("cache_hits", result.Stats.CacheHits),
		slog.Duration("duration", result.Stats.Duration),
	)

	return result, nil
}

func (e *Extractor) parseFilesParallel(ctx context.Context, src source.Source, files []string) []fileResult {
	workers := e.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	// Each worker owns one slot, so no locking is needed.
	results := make([]fileResult, len(files))

	for i, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				results[i] = fileResult{path: file, err: &ExtractError{Err: err, Path: file, Phase: PhaseParsing}}
				return nil
			}
			defer sem.Release(1)

			results[i] = e.extractFile(gCtx, src, file)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// reduce merges per-file results into result in discovery order.
func (e *Extractor) reduce(results []fileResult, result *ExtractResult) {
	dedup := digest.NewDeduplicator(e.hasher)

	for _, r := range results {
		if r.err != nil {
			result.Errors = append(result.Errors, *r.err)
			result.Stats.FilesFailed++
			continue
		}

		result.Stats.FilesParsed++
		if r.cached {
			result.Stats.CacheHits++
		}
		result.Stats.CallSites += r.outcome.sites
		result.Stats.DynamicArguments += r.outcome.dynamic
		result.Stats.MissingArguments += r.outcome.missing
		result.Stats.Records += len(r.outcome.records)

		for _, rec := range r.outcome.records {
			dedup.Add(rec)
		}
	}

	result.Map = dedup.Map()
	result.Stats.Duplicates = dedup.Duplicates()
}

func (e *Extractor) extractFile(ctx context.Context, src source.Source, path string) fileResult {
	if err := ctx.Err(); err != nil {
		return fileResult{path: path, err: &ExtractError{Err: err, Path: path, Phase: PhaseParsing}}
	}

	content, err := readFileFromSource(ctx, src, path)
	if err != nil {
		return fileResult{path: path, err: &ExtractError{Err: err, Path: path, Phase: PhaseRead}}
	}

	key := cacheKey{lang: domain.DetectLanguage(path), content: digest.ContentKey(content)}
	if e.cache != nil {
		if outcome, ok := e.cache.Get(key); ok {
			return fileResult{path: path, outcome: outcome, cached: true}
		}
	}

	outcome, err := e.extractContent(ctx, path, content)
	if err != nil {
		return fileResult{path: path, err: &ExtractError{Err: err, Path: path, Phase: PhaseParsing}}
	}

	if e.cache != nil {
		e.cache.Add(key, outcome)
	}
	return fileResult{path: path, outcome: outcome}
}

func (e *Extractor) extractContent(ctx context.Context, path string, content []byte) (*fileOutcome, error) {
	parsed, err := tspool.ParseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}
	defer parsed.Close()

	sites, err := e.visitor.Visit(parsed, path)
	if err != nil {
		return nil, err
	}

	outcome := &fileOutcome{sites: len(sites)}
	for _, site := range sites {
		record, status := callsite.Canonicalize(site, e.options.TextField)
		switch status {
		case domain.SiteStatusExtracted:
			outcome.records = append(outcome.records, record)
		case domain.SiteStatusDynamic:
			outcome.dynamic++
		case domain.SiteStatusNoArgument:
			outcome.missing++
		}
	}

	return outcome, nil
}

// readFileFromSource reads a file from source using relative path.
// The relPath must be relative to src.Root().
func readFileFromSource(ctx context.Context, src source.Source, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := src.Open(ctx, relPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", relPath, err)
	}

	return content, nil
}

// Extract is a convenience wrapper creating an Extractor and running it once.
func Extract(ctx context.Context, src source.Source, opts ...ExtractOption) (*ExtractResult, error) {
	extractor, err := NewExtractor(opts...)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, src)
}
