// Command kindling is the command-line client of the Kindling idea tracker. Each
// invocation is one session: it loads state from the server (or the local cache
// when the server is unreachable), applies the command and mirrors the result to
// the cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kindling/internal/cache"
	"kindling/internal/client"
	"kindling/internal/config"
	"kindling/internal/observability"
	"kindling/internal/store"
)

// commandTimeout bounds a single command. Watching commands run until interrupted.
const commandTimeout = 10 * time.Minute

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

type rootOptions struct {
	configPath string
	serverURL  string
	cachePath  string
	offline    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "kindling",
		Short:         "Kindling - a personal idea tracker",
		Long:          "Kindling tracks ideas from first spark to shipped, with themes and learnings imported from PAIA notes and suggestions from a local model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&opts.serverURL, "server", "", "Kindling API base URL (overrides config)")
	pf.StringVar(&opts.cachePath, "cache", "", "path to the local cache database (overrides config)")
	pf.BoolVar(&opts.offline, "offline", false, "do not contact the server")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newEditCmd(opts))
	cmd.AddCommand(newMoveCmd(opts))
	cmd.AddCommand(newRemoveCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newTagsCmd(opts))
	cmd.AddCommand(newThemeCmd(opts))
	cmd.AddCommand(newLearningCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	cmd.AddCommand(newSuggestCmd(opts))
	cmd.AddCommand(newChatCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kindling %s (commit: %s)\n", Version, Commit)
		},
	}
}

// session is one loaded client session.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	cache  *cache.SQLite
	client *client.Client
	store  *store.Store
}

// openSession loads configuration, opens the cache and performs the initial load.
func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.serverURL != "" {
		cfg.Client.ServerURL = opts.serverURL
	}
	if opts.cachePath != "" {
		cfg.Client.CachePath = opts.cachePath
	}

	level := "error"
	if opts.verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(level, true)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Client.CachePath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	local, err := cache.OpenSQLite(cfg.Client.CachePath)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, cache: local}
	var remote store.Remote
	if !opts.offline && cfg.Client.ServerURL != "" {
		c, err := client.New(cfg.Client.ServerURL, cfg.Client.APIKey, client.Options{
			Logger:    logger,
			Timeout:   cfg.Client.Timeout,
			AITimeout: cfg.Client.AITimeout,
		})
		if err != nil {
			local.Close()
			return nil, err
		}
		s.client = c
		remote = c
	}

	s.store = store.New(remote, local, store.Options{Logger: logger, RemoteTimeout: cfg.Client.Timeout})
	if err := s.store.Load(ctx); err != nil {
		local.Close()
		return nil, err
	}
	return s, nil
}

// Close waits for background remote writes and closes the cache.
func (s *session) Close() error {
	s.store.Wait()
	_ = s.logger.Sync()
	return s.cache.Close()
}

// withSession runs fn against a loaded session under commandTimeout and closes
// the session afterwards.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, s *session) error) error {
	return runSession(cmd, opts, commandTimeout, fn)
}

// runSession is withSession with an explicit deadline. A zero timeout lets fn
// run until the command context is cancelled.
func runSession(cmd *cobra.Command, opts *rootOptions, timeout time.Duration, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	if err := s.store.SyncError(); err != nil && !errors.Is(err, store.ErrNoRemote) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (changes stay local until `kindling sync`)\n", err)
	}
	runErr := fn(ctx, s)
	if err := s.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// execute runs cmd until it finishes or the process is interrupted. An interrupt
// cancels the command context so sessions still close cleanly.
func execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
