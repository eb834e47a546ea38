// Package project provides a read-mostly view over the projects root: listing
// project directories, reading pipeline summaries, and aggregating the JSON
// artifacts each step leaves behind. The generation pipeline owns the writes;
// this package only scaffolds directories and clears the cache.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/resolve"
)

// ErrNotFound reports a project directory that does not exist.
var ErrNotFound = errors.New("project not found")

// Store reads projects under a single root directory.
type Store struct {
	root     string
	cacheDir string
	logger   *zap.Logger
}

// NewStore creates a Store over root. cacheDir may be empty if the caller
// never clears the cache.
func NewStore(root, cacheDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, cacheDir: cacheDir, logger: logger}
}

// Root returns the projects root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureDirs creates the projects root and cache directory if missing.
func (s *Store) EnsureDirs() error {
	dirs := []string{s.root}
	if s.cacheDir != "" {
		dirs = append(dirs, s.cacheDir)
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			s.logger.Info("created directory", zap.String("dir", dir))
		}
	}
	return nil
}

// Summary mirrors project_summary.json, written by the pipeline after each step.
type Summary struct {
	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`
	SearchQuery string `json:"search_query"`
	LastUpdated string `json:"last_updated"`
}

// Info describes one project directory for listings.
type Info struct {
	Name     string    `json:"name"`
	Modified time.Time `json:"modified_time"`
	Summary  Summary   `json:"summary"`
}

// Path returns the absolute directory of a named project, rejecting unsafe
// names before touching the file system.
func (s *Store) Path(name string) (string, error) {
	if err := resolve.CheckProjectName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// Exists reports whether the named project directory exists.
func (s *Store) Exists(name string) (bool, error) {
	dir, err := s.Path(name)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	return fi.IsDir(), nil
}

// List returns every project under the root, newest first. A directory counts
// as a project when it has a project_summary.json or a step1_search directory;
// anything else in the root is skipped.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects root %s: %w", s.root, err)
	}

	var projects []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())
		if !isProjectDir(dir) {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}
		info := Info{Name: entry.Name(), Modified: fi.ModTime()}
		if summary, err := s.Summary(entry.Name()); err == nil {
			info.Summary = summary
		}
		projects = append(projects, info)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Modified.After(projects[j].Modified)
	})
	return projects, nil
}

func isProjectDir(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, resolve.SummaryFile)); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, resolve.Step1SearchDir)); err == nil {
		return true
	}
	return false
}

// Summary reads project_summary.json for one project. A missing file yields
// a zero Summary, not an error; only a malformed file fails.
func (s *Store) Summary(name string) (Summary, error) {
	dir, err := s.Path(name)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	if err := readJSON(filepath.Join(dir, resolve.SummaryFile), &summary); err != nil {
		if os.IsNotExist(err) {
			return Summary{}, nil
		}
		return Summary{}, err
	}
	return summary, nil
}

// CandidateStatus reports one resolver candidate and whether a regular file
// exists there.
type CandidateStatus struct {
	Path   string
	Exists bool
}

// ArtifactStatus returns every candidate path for an artifact together with
// its existence, in priority order. FindArtifact and the check command both
// read from this single walk.
func (s *Store) ArtifactStatus(name string, kind resolve.Kind, filename string) ([]CandidateStatus, error) {
	dir, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	candidates, err := resolve.Candidates(kind, filename)
	if err != nil {
		return nil, err
	}

	statuses := make([]CandidateStatus, 0, len(candidates))
	for _, rel := range candidates {
		full := filepath.Join(dir, rel)
		fi, err := os.Stat(full)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", full, err)
		}
		exists := err == nil && fi.Mode().IsRegular()
		s.logger.Debug("artifact candidate",
			zap.String("project", name),
			zap.Stringer("kind", kind),
			zap.String("path", full),
			zap.Bool("exists", exists))
		statuses = append(statuses, CandidateStatus{Path: full, Exists: exists})
	}
	return statuses, nil
}

// FindArtifact resolves an artifact request to the first existing candidate
// path. The second return reports whether any candidate exists; when none
// does, the primary candidate is still returned for diagnostics.
func (s *Store) FindArtifact(name string, kind resolve.Kind, filename string) (string, bool, error) {
	statuses, err := s.ArtifactStatus(name, kind, filename)
	if err != nil {
		return "", false, err
	}
	for _, st := range statuses {
		if st.Exists {
			return st.Path, true, nil
		}
	}
	return statuses[0].Path, false, nil
}
