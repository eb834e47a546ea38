package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/config"
	"github.com/wlxklyh/pubmed2zhihu/internal/project"
	"github.com/wlxklyh/pubmed2zhihu/internal/resolve"
)

// setupTestEnv points the command globals at a fresh projects root and
// returns its store.
func setupTestEnv(t *testing.T) *project.Store {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Basic.OutputDir = t.TempDir()
	cfg.Basic.CacheDir = t.TempDir()

	store, err := newStore()
	if err != nil {
		t.Fatalf("newStore failed: %v", err)
	}
	return store
}

func TestRunCheck_MarksCandidates(t *testing.T) {
	store := setupTestEnv(t)

	dir, err := store.Scaffold("2026-01-01_foo")
	if err != nil {
		t.Fatalf("Scaffold failed: %v", err)
	}
	// Legacy-only metadata, no overview report yet.
	legacy := filepath.Join(dir, resolve.Step6ReportDir, resolve.MetadataFile)
	if err := os.WriteFile(legacy, []byte(`{"title": "legacy"}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runCheck(checkCmd, []string{"2026-01-01_foo"}); err != nil {
			t.Fatalf("runCheck returned error: %v", err)
		}
	})

	// Markers are %-8s padded before the path.
	for _, line := range []string{
		"exists   " + legacy,
		"missing  " + filepath.Join(dir, resolve.FinalOutputDir, resolve.MetadataFile),
		"missing  " + filepath.Join(dir, resolve.FinalOutputDir, resolve.DefaultReportFile),
	} {
		if !strings.Contains(output, line) {
			t.Errorf("expected check output to contain %q, got:\n%s", line, output)
		}
	}
}

func TestRunCheck_RejectsUnsafeName(t *testing.T) {
	setupTestEnv(t)

	if err := runCheck(checkCmd, []string{"../escape"}); err == nil {
		t.Error("expected error for unsafe project name")
	}
}

func TestRunList_Empty(t *testing.T) {
	setupTestEnv(t)

	output := captureOutput(t, func() {
		if err := runList(listCmd, nil); err != nil {
			t.Fatalf("runList returned error: %v", err)
		}
	})

	if !strings.Contains(output, "No projects found") {
		t.Errorf("expected empty-listing notice, got: %s", output)
	}
}

func TestRunClean_RecreatesCache(t *testing.T) {
	store := setupTestEnv(t)
	if err := store.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	stale := filepath.Join(cfg.Basic.CacheDir, "stale.bin")
	if err := os.WriteFile(stale, []byte("stale"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runClean(cleanCmd, nil); err != nil {
			t.Fatalf("runClean returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Cache cleared") {
		t.Errorf("expected cache-cleared notice, got: %s", output)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale cache file to be gone")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	rOut, wOut, _ := os.Pipe()
	os.Stdout = wOut

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	os.Stdout = origOut
	return <-done
}
