// Package web is the HTTP serving layer. It resolves project and artifact
// requests through the path resolver, streams the matched files, and turns
// missing artifacts into explicit "not generated yet" pages instead of bare
// 404s. Every request logs the logical name and the resolved physical path,
// so path bugs are diagnosed from the log rather than guessed at.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wlxklyh/pubmed2zhihu/internal/project"
	"github.com/wlxklyh/pubmed2zhihu/internal/watch"
)

// Server serves report artifacts for every project under one projects root.
type Server struct {
	store   *project.Store
	watcher *watch.ProjectsWatcher // may be nil
	logger  *zap.Logger
	srv     *http.Server

	// Project listing cache, invalidated by watcher generation.
	mu         sync.Mutex
	listCache  []project.Info
	listGen    uint64
	listCached bool
}

// NewServer builds a Server bound to addr. watcher may be nil, in which case
// the project listing is rescanned on every index request.
func NewServer(addr string, store *project.Store, watcher *watch.ProjectsWatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:   store,
		watcher: watcher,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /project/{name}", s.handleProjectPage)
	mux.HandleFunc("GET /project/{name}/report", s.handleReport)
	mux.HandleFunc("GET /project/{name}/report/{file...}", s.handleReport)
	mux.HandleFunc("GET /project/{name}/paper/{file...}", s.handlePaper)
	mux.HandleFunc("GET /project/{name}/images/{file...}", s.handleImage)
	mux.HandleFunc("GET /project/{name}/prompts", s.handlePrompts)
	mux.HandleFunc("GET /api/projects", s.handleAPIProjects)
	mux.HandleFunc("GET /api/project/{name}", s.handleAPIProject)
	mux.HandleFunc("GET /api/project/{name}/metadata", s.handleAPIMetadata)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// shutdownTimeout. A closed listener after cancellation is not an error.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown failed, closing", zap.Error(err))
			return s.srv.Close()
		}
		s.logger.Info("web server stopped")
		return nil
	}
}

// listProjects returns the project listing, reusing the cached scan while the
// watcher generation is unchanged.
func (s *Server) listProjects() ([]project.Info, error) {
	if s.watcher == nil {
		return s.store.List()
	}

	gen := s.watcher.Generation()
	s.mu.Lock()
	if s.listCached && s.listGen == gen {
		cached := s.listCache
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	projects, err := s.store.List()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.listCache = projects
	s.listGen = gen
	s.listCached = true
	s.mu.Unlock()
	return projects, nil
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
