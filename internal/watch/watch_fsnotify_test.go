//go:build fsnotify

package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, root string) <-chan []string {
	t.Helper()

	w, err := New(Config{Root: root, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		})
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})

	// Give Run time to register directories.
	time.Sleep(100 * time.Millisecond)
	return batches
}

func waitForPath(t *testing.T, batches <-chan []string, want string) []string {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case batch := <-batches:
			for _, rel := range batch {
				if rel == want {
					return batch
				}
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", want)
			return nil
		}
	}
}

func TestWatcher_RebuildsOnSourceChange(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "a.js"), `t("a");`)

	waitForPath(t, batches, "a.js")
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	for _, name := range []string{"a.js", "b.ts", "c.tsx"} {
		writeFile(t, filepath.Join(root, name), `t("x");`)
	}

	batch := waitForPath(t, batches, "c.tsx")
	if len(batch) != 3 {
		t.Errorf("expected one batch of 3 paths, got %v", batch)
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "sub", "placeholder.txt"), "")
	waitForPath(t, batches, "sub")

	writeFile(t, filepath.Join(root, "sub", "b.ts"), `t("b");`)
	waitForPath(t, batches, "sub/b.ts")
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "style.css"), "body{}")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "i.js"), `t("x");`)

	select {
	case batch := <-batches:
		t.Errorf("unexpected rebuild for %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}
