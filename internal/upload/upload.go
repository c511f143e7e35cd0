// Package upload prepares the hand-off of a verified artifact to the
// translation service. Transport is left to Uploader implementations.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blendin/extractor/internal/config"
	"github.com/blendin/extractor/pkg/artifact"
)

// FileField is the multipart field carrying the artifact.
const FileField = "file"

const redacted = "[redacted]"

// Uploader sends a prepared request.
type Uploader interface {
	Upload(ctx context.Context, req *Request) error
}

// Repository identifies the GitHub repository the run belongs to.
type Repository struct {
	ID      string
	Name    string
	URL     string
	Private *bool
}

// RepositoryFromEnv reads repository details from the GitHub Actions
// environment. Unknown values stay empty.
func RepositoryFromEnv(getenv func(string) string) Repository {
	full := getenv("GITHUB_REPOSITORY")
	repo := Repository{ID: getenv("GITHUB_REPOSITORY_ID")}

	if full != "" {
		_, name, found := strings.Cut(full, "/")
		if !found {
			name = full
		}
		repo.Name = name

		server := getenv("GITHUB_SERVER_URL")
		if server == "" {
			server = "https://github.com"
		}
		repo.URL = strings.TrimSuffix(server, "/") + "/" + full
	}

	return repo
}

// Field is one form field.
type Field struct {
	Name  string
	Value string
}

// Request is everything an upload needs.
type Request struct {
	ArtifactPath string
	Summary      artifact.Summary
	Project      config.Project
	Repository   Repository
}

// Prepare verifies the artifact and project settings and builds a Request.
func Prepare(artifactPath string, project *config.Project, repo Repository) (*Request, error) {
	summary, err := artifact.Verify(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("verify artifact: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project settings are required")
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	return &Request{
		ArtifactPath: artifactPath,
		Summary:      summary,
		Project:      *project,
		Repository:   repo,
	}, nil
}

// FormFields returns the non-file fields in the order the service reads them.
func (r *Request) FormFields() []Field {
	private := ""
	if r.Repository.Private != nil {
		private = strconv.FormatBool(*r.Repository.Private)
	}

	return []Field{
		{"project_id", r.Project.ProjectID},
		{"api_token", r.Project.APIToken},
		{"source_locale", r.Project.SourceLocale},
		{"default_locale", r.Project.DefaultLocale},
		{"target_locales", strings.Join(r.Project.TargetLocales, ",")},
		{"base_branch_name", r.Project.BaseBranchName},
		{"pr_branch_name", r.Project.PRBranchName},
		{"locales_path", r.Project.LocalesPath},
		{"github_repository_id", r.Repository.ID},
		{"github_repository_name", r.Repository.Name},
		{"github_repository_url", r.Repository.URL},
		{"github_repository_is_private", private},
	}
}

// DryRun logs the request instead of sending it.
type DryRun struct {
	Logger *slog.Logger
}

// Upload implements Uploader.
func (d DryRun) Upload(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		slog.String(FileField, req.ArtifactPath),
		slog.Int("entries", req.Summary.Entries),
		slog.Int64("bytes", req.Summary.Size),
	}
	for _, f := range req.FormFields() {
		value := f.Value
		if f.Name == "api_token" && value != "" {
			value = redacted
		}
		attrs = append(attrs, slog.String(f.Name, value))
	}

	logger.Info("dry run: upload skipped", attrs...)
	return nil
}
