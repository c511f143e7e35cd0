package watch

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blendin/extractor/pkg/parser"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	t.Run("should reject missing root", func(t *testing.T) {
		t.Parallel()

		_, err := New(Config{Root: filepath.Join(t.TempDir(), "missing")})
		assert.ErrorIs(t, err, ErrPathNotExist)
	})

	t.Run("should reject file root", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "a.js")
		writeFile(t, path, `t("a");`)

		_, err := New(Config{Root: path})
		assert.ErrorIs(t, err, ErrPathNotDirectory)
	})

	t.Run("should apply defaults", func(t *testing.T) {
		t.Parallel()

		w, err := New(Config{Root: t.TempDir()})
		require.NoError(t, err)
		defer w.Close()

		assert.Equal(t, DefaultDebounce, w.config.Debounce)
		assert.NotNil(t, w.config.Logger)
	})
}

func TestWatcher_HandleEvent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New(Config{Root: root, Filter: parser.PathFilter{Exclude: []string{"dist/**"}}})
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"source write", fsnotify.Event{Name: filepath.Join(root, "src", "a.tsx"), Op: fsnotify.Write}, true},
		{"source remove", fsnotify.Event{Name: filepath.Join(root, "a.js"), Op: fsnotify.Remove}, true},
		{"stylesheet write", fsnotify.Event{Name: filepath.Join(root, "a.css"), Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "a.js"), Op: fsnotify.Chmod}, false},
		{"excluded file", fsnotify.Event{Name: filepath.Join(root, "dist", "a.js"), Op: fsnotify.Write}, false},
		{"node_modules file", fsnotify.Event{Name: filepath.Join(root, "node_modules", "x", "i.js"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := w.handleEvent(tt.event)
			assert.Equal(t, tt.want, got)
		})
	}
}
