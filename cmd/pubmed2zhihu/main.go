// Package main is the pubmed2zhihu CLI: it serves generated research-report
// artifacts over HTTP and provides the operational commands around the
// projects directory tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wlxklyh/pubmed2zhihu/internal/config"
	"github.com/wlxklyh/pubmed2zhihu/internal/project"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded once in PersistentPreRunE, shared by every subcommand.
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pubmed2zhihu",
	Short: "pubmed2zhihu - research report artifact server",
	Long: `pubmed2zhihu serves the artifacts of the PubMed report-generation
pipeline: overview reports, per-paper detail pages, figures and metadata.

The generation pipeline (steps 1-6) runs out of band and writes into the
projects directory; this tool only reads it, except for cache clearing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger constructs the process-wide zap logger from config, once,
// before any request or command work runs.
func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	if lc.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if err := level.Set(lc.Level); err != nil && lc.Level != "" {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if lc.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, lc.File)
	}

	return zc.Build()
}

// newStore builds the project store from the loaded config.
func newStore() (*project.Store, error) {
	root, err := cfg.OutputDirAbs()
	if err != nil {
		return nil, err
	}
	cache, err := cfg.CacheDirAbs()
	if err != nil {
		return nil, err
	}
	return project.NewStore(root, cache, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
