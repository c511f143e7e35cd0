package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blendin/extractor/pkg/artifact"
	"github.com/blendin/extractor/pkg/source"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSources(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestErrorAnnotation(t *testing.T) {
	got := errorAnnotation(errors.New("100% broken\nsecond line"))
	assert.Equal(t, "::error::100%25 broken%0Asecond line", got)
}

func TestExtractCommand(t *testing.T) {
	t.Setenv("INPUT_SOURCE_PATH", "")

	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	writeSources(t, srcDir, map[string]string{
		"app.tsx":             `export const App = () => <h1>{t("Hello")}</h1>;`,
		"lib/util.js":         `t({ title: "Hi", body: "There" }); t("Hello");`,
		"node_modules/x/i.js": `t("vendored");`,
	})
	output := filepath.Join(dir, artifact.DefaultPath)

	_, err := runCLI(t, "extract", "--source", srcDir, "--output", output, "--log-level", "error")
	require.NoError(t, err)

	m, err := artifact.Read(output)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	summary, err := artifact.Verify(output)
	require.NoError(t, err)
	assert.Equal(t, 128, summary.HashLength)
}

func TestRootCommandDefaultsToExtract(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, map[string]string{"a.js": `t("a");`})
	output := filepath.Join(t.TempDir(), "out.json")

	t.Setenv("INPUT_SOURCE_PATH", dir)

	_, err := runCLI(t, "--output", output, "--log-level", "error")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text": "a"`)
}

func TestExtractCommand_InvalidRoot(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")

	_, err := runCLI(t, "extract", "--source", filepath.Join(t.TempDir(), "missing"), "--output", output)
	assert.ErrorIs(t, err, source.ErrInvalidRoot)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "artifact must not be written")
}

func TestExtractCommand_MissingSourcePath(t *testing.T) {
	t.Setenv("INPUT_SOURCE_PATH", "")

	_, err := runCLI(t, "extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_path")
}

func TestExtractCommand_Upload(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	writeSources(t, srcDir, map[string]string{
		"a.js":         `t("a");`,
		"blendin.json": `{"projectId": "p1", "apiToken": "tok", "sourceLocale": "en",
			"defaultLocale": "en", "targetLocales": ["de"]}`,
	})
	output := filepath.Join(dir, artifact.DefaultPath)

	t.Setenv("INPUT_PROJECT_FILE", filepath.Join(srcDir, "blendin.json"))
	t.Setenv("GITHUB_REPOSITORY", "acme/web")

	out, err := runCLI(t, "extract", "--source", srcDir, "--output", output, "--upload")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "github_repository_name=web")
}

func TestVerifyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), artifact.DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(`{"ab12": {"text": "x"}}`), 0o644))

	out, err := runCLI(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries")

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	_, err = runCLI(t, "verify", path)
	assert.ErrorIs(t, err, artifact.ErrInvalid)
}

func TestVerifyCommand_DefaultsToConfiguredOutput(t *testing.T) {
	t.Setenv("INPUT_SOURCE_PATH", "")

	dir := t.TempDir()
	fromEnv := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(fromEnv, []byte(`{"ab12": {"text": "x"}}`), 0o644))
	t.Setenv("INPUT_OUTPUT_PATH", fromEnv)

	out, err := runCLI(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, fromEnv+": 1 entries")

	fromFile := filepath.Join(dir, "file.json")
	require.NoError(t, os.WriteFile(fromFile, []byte(`{"ab12": {"text": "x"}, "cd34": {"text": "y"}}`), 0o644))
	cfgPath := filepath.Join(dir, "extractor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output_path: "+fromFile+"\n"), 0o644))
	t.Setenv("INPUT_OUTPUT_PATH", "")

	out, err = runCLI(t, "verify", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, fromFile+": 2 entries")
}
