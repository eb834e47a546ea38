package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func fsnotifyCreate(path string) fsnotify.Event {
	return fsnotify.Event{Name: path, Op: fsnotify.Create}
}

func TestProjectsWatcher_CreateAndRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	pw, err := NewProjectsWatcher(root, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewProjectsWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := pw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer pw.Stop()

	dir := filepath.Join(root, "20260101_120000_cancer")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	waitFor(t, func() bool { return pw.Stats().ProjectsCreated >= 1 })
	if gen := pw.Generation(); gen == 0 {
		t.Error("expected generation bump after create")
	}

	if err := os.Remove(dir); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	waitFor(t, func() bool { return pw.Stats().ProjectsRemoved >= 1 })

	stats := pw.Stats()
	if stats.LastEventType != "remove" {
		t.Errorf("expected last event remove, got %s", stats.LastEventType)
	}
}

func TestProjectsWatcher_IgnoresNestedWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	nested := filepath.Join(root, "proj", "FinalOutput")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	pw, err := NewProjectsWatcher(root, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewProjectsWatcher failed: %v", err)
	}
	if err := pw.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer pw.Stop()

	// The watcher only registers the root, so nested writes never even reach
	// handleEvent; drive it directly to pin the filtering behavior.
	pw.handleEvent(fsnotifyCreate(filepath.Join(nested, "overview_report.html")))
	pw.handleEvent(fsnotifyCreate(filepath.Join(root, ".tmp123")))

	if gen := pw.Generation(); gen != 0 {
		t.Errorf("expected no generation bump, got %d", gen)
	}
}

func TestProjectsWatcher_StartMissingRoot(t *testing.T) {
	defer goleak.VerifyNone(t)

	pw, err := NewProjectsWatcher(filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("NewProjectsWatcher failed: %v", err)
	}
	if err := pw.Start(context.Background()); err == nil {
		t.Error("expected error starting watcher on missing root")
	}
	// A failed start closes the underlying watcher; goleak catches any
	// lingering fsnotify goroutine.
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
