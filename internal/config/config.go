// Package config holds the runtime configuration for the artifact server and
// its CLI. Configuration is YAML on disk with environment overrides applied
// on load.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all pubmed2zhihu configuration.
type Config struct {
	// Basic paths
	Basic BasicConfig `yaml:"basic"`

	// Web server settings
	Web WebConfig `yaml:"web"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BasicConfig configures the on-disk layout.
type BasicConfig struct {
	// OutputDir is the projects root; every project directory lives under it.
	OutputDir string `yaml:"output_dir"`
	// CacheDir holds transient pipeline downloads; safe to clear at any time.
	CacheDir string `yaml:"cache_dir"`
}

// WebConfig configures the HTTP server.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ShutdownTimeout bounds graceful shutdown, as a duration string.
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty = stderr only
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Basic: BasicConfig{
			OutputDir: "./projects",
			CacheDir:  "./cache",
		},
		Web: WebConfig{
			Host:            "127.0.0.1",
			Port:            5001,
			ShutdownTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Addr returns the host:port the web server binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Web.Host, fmt.Sprintf("%d", c.Web.Port))
}

// OutputDirAbs returns the projects root as an absolute path, resolving
// relative configuration against the current working directory.
func (c *Config) OutputDirAbs() (string, error) {
	return absDir(c.Basic.OutputDir)
}

// CacheDirAbs returns the cache directory as an absolute path.
func (c *Config) CacheDirAbs() (string, error) {
	return absDir(c.Basic.CacheDir)
}

func absDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("PUBMED2ZHIHU_OUTPUT_DIR"); dir != "" {
		c.Basic.OutputDir = dir
	}
	if dir := os.Getenv("PUBMED2ZHIHU_CACHE_DIR"); dir != "" {
		c.Basic.CacheDir = dir
	}
	if addr := os.Getenv("PUBMED2ZHIHU_ADDR"); addr != "" {
		// Apply all of the override or none of it; a bad port must not
		// leave the host pointing somewhere else.
		if host, portStr, err := net.SplitHostPort(addr); err == nil {
			if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
				c.Web.Host = host
				c.Web.Port = port
			}
		}
	}
}
