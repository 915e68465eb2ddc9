// Package cli holds the bootstrap shared by the collector and publisher
// commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"meatflow/internal/config"
	"meatflow/internal/logging"
	"meatflow/internal/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Context carries initialized dependencies through the command tree.
type Context struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Metrics
}

type contextKey struct{}

// NewRootCommand builds a root command whose persistent pre-run loads the
// configuration and logger before any subcommand runs.
func NewRootCommand(use, short string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format (json, console)")

	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("cli: init logger: %w", err)
	}
	logging.SetDefault(logger)

	cc := &Context{
		Config:  cfg,
		Logger:  logger.Named(cmd.Root().Name()),
		Metrics: metrics.New(),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, contextKey{}, cc))
	return nil
}

// FromCommand returns the Context set up by the root pre-run.
func FromCommand(cmd *cobra.Command) (*Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("cli: command has no context")
	}
	cc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || cc == nil {
		return nil, fmt.Errorf("cli: context not initialized")
	}
	return cc, nil
}
