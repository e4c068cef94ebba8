// Package cli implements the floorview command-line interface.
//
// Commands:
//   - view: interactive floor viewer in the terminal
//   - render: one-shot SVG, JSON or terminal snapshot of a floor
//   - floors: list the floors a source knows
//   - serve: HTTP session API and patch relay
//   - publish: push a light patch to a floor's channel
//   - cache: manage the layout cache
//
// Every command reads the optional --config file, FLOORVIEW_* environment
// variables and its own flags, in increasing precedence. --verbose (-v)
// switches logging to debug.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/pkg/buildinfo"
	"github.com/matzehuels/floorview/pkg/config"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
	"github.com/matzehuels/floorview/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is used for directories and display.
const appName = "floorview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	sourceKind string
	sourceDir  string
	transport  string
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Floorview shows live floor plans",
		Long:         `Floorview renders building floor plans, lets you pan and zoom them, and keeps room lights in sync with a realtime channel.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", os.Getenv("FLOORVIEW_CONFIG"), "config file (TOML)")
	pf.StringVar(&c.sourceKind, "source", "", "layout source: file, http, mongo or postgres")
	pf.StringVar(&c.sourceDir, "dir", "", "layout directory for the file source")
	pf.StringVar(&c.transport, "transport", "", "realtime transport: memory, redis, mqtt or websocket")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.floorsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Backends
// =============================================================================

// loadConfig reads the config file and applies the global flags over it.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.sourceKind != "" {
		cfg.Source.Kind = source.Kind(c.sourceKind)
	}
	if c.sourceDir != "" {
		cfg.Source.Dir = c.sourceDir
	}
	if c.transport != "" {
		cfg.Realtime.Transport = c.transport
	}
	if cfg.Source.CacheDir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Source.CacheDir = dir
		}
	}
	// log.level can only make logging more verbose than --verbose did.
	if lvl, err := cfg.LogLevel(); err == nil && lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	return cfg, cfg.Validate()
}

func (c *CLI) openSource(ctx context.Context, cfg config.Config) (source.Source, error) {
	src, err := source.Open(ctx, cfg.Source, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("source ready", "kind", cfg.Source.Kind)
	return src, nil
}

func (c *CLI) openTransport(ctx context.Context, cfg config.Config) (realtime.Transport, error) {
	t, err := realtime.Open(ctx, cfg.Realtime, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("transport ready", "transport", cfg.Realtime.Transport)
	return t, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/floorview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
