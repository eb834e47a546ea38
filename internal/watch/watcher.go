// Package watch observes the projects root for project directories appearing
// or disappearing while the server runs. The pipeline creates projects out of
// band, so the watcher is how the serving process learns about them without
// rescanning the root on every request.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ProjectsWatcher watches the projects root for top-level directory changes.
// Each observed change bumps a generation counter; readers compare generations
// to decide whether a cached listing is still current.
type ProjectsWatcher struct {
	mu      sync.RWMutex
	watcher *fsnotify.Watcher
	root    string
	logger  *zap.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	generation uint64
	stats      Stats
}

// Stats tracks watcher activity for the status endpoint and debugging.
type Stats struct {
	ProjectsCreated int
	ProjectsRemoved int
	Errors          int
	LastEventTime   time.Time
	LastEventPath   string
	LastEventType   string
}

// NewProjectsWatcher creates a watcher over the given projects root.
func NewProjectsWatcher(root string, logger *zap.Logger) (*ProjectsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectsWatcher{
		watcher: watcher,
		root:    root,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching the projects root. Non-blocking; the event loop runs
// in a goroutine until Stop or context cancellation.
func (pw *ProjectsWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.running = true
	pw.mu.Unlock()

	if err := pw.watcher.Add(pw.root); err != nil {
		pw.mu.Lock()
		pw.running = false
		pw.mu.Unlock()
		// The watcher never ran, so its descriptor would otherwise outlive
		// this failed start.
		if cerr := pw.watcher.Close(); cerr != nil {
			pw.logger.Error("error closing watcher", zap.Error(cerr))
		}
		return err
	}
	pw.logger.Info("watching projects root", zap.String("root", pw.root))

	go pw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (pw *ProjectsWatcher) Stop() {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return
	}
	pw.running = false
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh

	if err := pw.watcher.Close(); err != nil {
		pw.logger.Error("error closing watcher", zap.Error(err))
	}
	pw.logger.Info("projects watcher stopped")
}

// Generation returns the current change generation. It starts at zero and
// increments on every create or remove under the root.
func (pw *ProjectsWatcher) Generation() uint64 {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.generation
}

// Stats returns a snapshot of watcher activity.
func (pw *ProjectsWatcher) Stats() Stats {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.stats
}

func (pw *ProjectsWatcher) run(ctx context.Context) {
	defer close(pw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-pw.stopCh:
			return

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			pw.handleEvent(event)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Error("projects watcher error", zap.Error(err))
			pw.mu.Lock()
			pw.stats.Errors++
			pw.mu.Unlock()
		}
	}
}

func (pw *ProjectsWatcher) handleEvent(event fsnotify.Event) {
	// Only top-level entries matter; changes inside a project are artifact
	// writes by the pipeline and do not affect the listing.
	rel, err := filepath.Rel(pw.root, event.Name)
	if err != nil || rel == "." || strings.ContainsRune(rel, filepath.Separator) {
		return
	}
	// Dotfiles and editor droppings in the root are not projects.
	if strings.HasPrefix(rel, ".") {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		eventType = "remove"
	default:
		return
	}

	pw.logger.Info("projects root changed",
		zap.String("event", eventType),
		zap.String("path", event.Name))

	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.generation++
	pw.stats.LastEventTime = time.Now()
	pw.stats.LastEventPath = event.Name
	pw.stats.LastEventType = eventType
	switch eventType {
	case "create":
		pw.stats.ProjectsCreated++
	case "remove":
		pw.stats.ProjectsRemoved++
	}
}
