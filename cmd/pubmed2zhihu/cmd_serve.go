package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wlxklyh/pubmed2zhihu/internal/watch"
	"github.com/wlxklyh/pubmed2zhihu/internal/web"
)

// serveCmd runs the artifact web server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report artifacts over HTTP",
	Long: `Start the web server over the projects directory.

Artifacts are served read-only; a report that the pipeline has not generated
yet is answered with an explanatory page, never an error crash.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.EnsureDirs(); err != nil {
		return err
	}

	shutdownTimeout, err := time.ParseDuration(cfg.Web.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The watcher keeps the project listing fresh without per-request
	// rescans. Losing it is a degraded mode, not a startup failure.
	watcher, err := watch.NewProjectsWatcher(store.Root(), logger)
	if err != nil {
		logger.Warn("projects watcher unavailable", zap.Error(err))
		watcher = nil
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("projects watcher failed to start", zap.Error(err))
		watcher = nil
	}

	server := web.NewServer(cfg.Addr(), store, watcher, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, shutdownTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		if watcher != nil {
			watcher.Stop()
		}
		return nil
	})

	return g.Wait()
}
