package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/StormHooper/erdograph/pkg/buildinfo"
	"github.com/StormHooper/erdograph/pkg/cache"
)

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
	Config Config
}

// New creates a new CLI instance with a default logger. Configuration is
// loaded from the user config file; a missing file falls back to defaults,
// a broken one is reported and ignored.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
	}
	cfg, err := loadConfig()
	if err != nil {
		c.Logger.Warn("ignoring config file", "err", err)
		cfg = defaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command itself runs the full workflow: resolve a graph (load or
// generate), optionally run multi-source BFS and structural analysis, write
// the annotated result as GML, and optionally render a plot.
func (c *CLI) RootCommand() *cobra.Command {
	var opts workflowOptions

	root := &cobra.Command{
		Use:   "erdograph",
		Short: "erdograph generates and analyzes Erdős–Rényi random graphs",
		Long: `erdograph is a CLI tool for generating Erdős–Rényi random graphs,
running multi-source breadth-first searches, computing structural reports
(components, cycles, density, path lengths), and exchanging graphs in a
GML-style text format.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := c.Logger.With("run", uuid.NewString()[:8])
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWorkflow(cmd.Context(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	opts.source.register(root, c.Config)
	root.Flags().StringSliceVar(&opts.bfsSources, "multi-bfs", nil, "run BFS from each listed source node (comma-separated)")
	root.Flags().BoolVar(&opts.analyze, "analyze", false, "compute components, cycles, density, and path statistics")
	root.Flags().BoolVar(&opts.plot, "plot", false, "render the graph to an image next to the output file")
	root.Flags().StringVarP(&opts.output, "output", "o", "", "output graph file (GML format)")
	root.Flags().StringVarP(&opts.format, "format", "f", c.Config.Format, "plot format: svg, png")
	root.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable plot caching")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the plot cache per configuration. The redis backend is
// opt-in via config; any backend failure degrades to a null cache so the
// workflow never fails on caching.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || c.Config.Cache == "off" {
		return cache.NewNullCache()
	}
	if c.Config.Cache == "redis" {
		rc, err := cache.NewRedisCache(context.Background(), c.Config.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "addr", c.Config.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/erdograph/).
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
