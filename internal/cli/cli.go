// Package cli implements the carp command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gi-bielefeld/scj-carp/pkg/buildinfo"
	"github.com/gi-bielefeld/scj-carp/pkg/cache"
	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/observability"
	"github.com/gi-bielefeld/scj-carp/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "carp"

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

	configFile string
	threads    int
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
	if path, err := configPath(); err == nil {
		c.configFile = path
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "carp measures rearrangement complexity in genome graphs",
		Long: `carp computes the SCJ-CARP index of a genome graph given as GFA or UniMoG,
scans every marker's neighborhood for local complexity, and extracts the
neighborhood of a single marker.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", c.configFile, "config file")
	root.PersistentFlags().IntVarP(&c.threads, "threads", "t", 0, "worker threads (default from config)")

	// Register all subcommands
	root.AddCommand(c.measureCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and registers the logging hooks.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(c.configFile)
	if err != nil {
		return err
	}
	c.config = cfg
	if cmd.Flags().Changed("threads") {
		if c.threads < 1 {
			return errors.New(errors.ErrCodeInvalidOption, "threads must be at least 1, got %d", c.threads)
		}
		c.config.Threads = c.threads
	}

	hooks := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(cache.Instrument(store), keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.config.Cache.RedisAddr,
			DB:   c.config.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "addr", c.config.Cache.RedisAddr, "error", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.resolveCacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// options builds pipeline options for input from the config file, letting
// flags that were set explicitly on cmd take precedence.
func (c *CLI) options(cmd *cobra.Command, input string, flags pipeline.Options) (pipeline.Options, error) {
	opts := flags
	opts.Input = input
	opts.Threads = c.config.Threads
	if !cmd.Flags().Changed("size-thresh") {
		opts.SizeThreshold = c.config.SizeThreshold
	}
	if !cmd.Flags().Changed("context-len") {
		opts.ContextLen = pipeline.Int(c.config.ContextLen)
	}
	if !cmd.Flags().Changed("strict-overlap") {
		opts.StrictOverlap = c.config.StrictOverlap
	}
	ttl, err := c.config.cacheTTL()
	if err != nil {
		return opts, err
	}
	opts.CacheTTL = ttl
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// resolveCacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/carp/).
func (c *CLI) resolveCacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/carp/).
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
