package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blendin/extractor/internal/config"
	"github.com/blendin/extractor/internal/logging"
	"github.com/blendin/extractor/internal/upload"
	"github.com/blendin/extractor/internal/watch"
	"github.com/blendin/extractor/pkg/artifact"
	"github.com/blendin/extractor/pkg/digest"
	"github.com/blendin/extractor/pkg/parser"
	"github.com/blendin/extractor/pkg/source"
)

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor *parser.Extractor
	uploader  upload.Uploader
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := logging.New(logOut, cfg.Log)
	if err != nil {
		return nil, err
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	alg, err := digest.ParseAlgorithm(cfg.Digest)
	if err != nil {
		return nil, err
	}

	extractor, err := parser.NewExtractor(
		parser.WithMarker(cfg.Marker),
		parser.WithTextField(cfg.TextField),
		parser.WithDigest(alg),
		parser.WithWorkers(cfg.Workers),
		parser.WithTimeout(cfg.Timeout),
		parser.WithExcludePatterns(cfg.Exclude),
		parser.WithPatterns(cfg.Include),
		parser.WithMaxFileSize(cfg.MaxFileSize),
		parser.WithCacheSize(cfg.CacheSize),
		parser.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		uploader:  upload.DryRun{Logger: logger},
	}, nil
}

// extract runs one extraction, writes the artifact and optionally uploads it.
func (a *app) extract(ctx context.Context, getenv func(string) string) error {
	if err := a.writeArtifact(ctx); err != nil {
		return err
	}
	if !a.cfg.Upload {
		return nil
	}

	project, err := config.LoadProject(a.cfg.ProjectFile)
	if err != nil {
		return err
	}
	req, err := upload.Prepare(a.cfg.OutputPath, project, upload.RepositoryFromEnv(getenv))
	if err != nil {
		return err
	}
	return a.uploader.Upload(ctx, req)
}

func (a *app) writeArtifact(ctx context.Context) error {
	src, err := source.NewLocalSource(a.cfg.SourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := a.extractor.Extract(ctx, src)
	if err != nil {
		return err
	}

	if err := artifact.Write(a.cfg.OutputPath, result.Map); err != nil {
		return err
	}

	a.logger.Info("localization map written",
		slog.String("path", a.cfg.OutputPath),
		slog.Int("entries", result.Map.Len()),
		slog.Int("files", result.Stats.FilesDiscovered),
		slog.Int("failed", result.Stats.FilesFailed),
		slog.Int("skipped", result.Stats.FilesSkipped),
		slog.Int("call_sites", result.Stats.CallSites),
		slog.Int("duplicates", result.Stats.Duplicates),
	)
	return nil
}

// watch writes the artifact once, then again after every relevant change.
func (a *app) watch(ctx context.Context) error {
	if err := a.writeArtifact(ctx); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Root:   a.cfg.SourcePath,
		Filter: parser.PathFilter{Exclude: a.cfg.Exclude, Include: a.cfg.Include},
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	a.logger.Info("watching for changes", slog.String("root", a.cfg.SourcePath))

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		a.logger.Debug("change detected", slog.Any("paths", changed))
		return a.writeArtifact(ctx)
	})
}
