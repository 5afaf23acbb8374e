// Package cli defines the command-line interface of tmplcore.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mitsuhiko/tmplcore/internal/config"
	"github.com/mitsuhiko/tmplcore/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFile    string
	Config     config.Config

	// registry is set when metrics are enabled for this invocation.
	registry *prometheus.Registry
	stderr   io.Writer
}

// Execute builds the root command, runs it with the provided args and
// logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo, false)
	}
	rootCmd := newRootCommand(&Options{EnvFile: config.DefaultEnvFile}, logger)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// newRootCommand constructs the root command with global flags and
// subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tmplcore",
		Short:         "tmplcore evaluates template values, filters and tests",
		Long:          "tmplcore exercises the template evaluation core against a JSON or YAML context: it resolves variables, sorts arrays and runs the builtin filters, tests and functions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.Options{
				Path:    opts.ConfigPath,
				EnvFile: opts.EnvFile,
			})
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.Config = cfg

			opts.stderr = cmd.ErrOrStderr()
			level := logging.ParseLevel(cfg.LogLevel)
			logger = logging.NewLogger(opts.stderr, level, cfg.NoColor)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)

			if cfg.Metrics {
				opts.registry = prometheus.NewRegistry()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.registry == nil {
				return nil
			}
			return writeMetrics(opts.stderr, opts.registry)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "Path to a .env file with TMPLCORE_* settings")
	flags.String("context", "", "JSON or YAML file providing the render context")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable coloured log output")
	flags.Bool("metrics", false, "Print collected metrics to stderr after the command")
	flags.String("template-name", "", "Name of the origin frame")
	flags.Uint64("fuel", 0, "Limit the work of each render state (0 is unlimited)")

	cmd.AddCommand(
		newResolveCommand(opts),
		newSortCommand(opts),
		newFilterCommand(opts),
		newTestCommand(opts),
		newCallCommand(opts),
		newListCommand(opts),
	)

	return cmd
}

// applyFlagOverrides copies explicitly set flags over the loaded settings.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("context") {
		cfg.ContextFile, _ = flags.GetString("context")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("metrics") {
		cfg.Metrics, _ = flags.GetBool("metrics")
	}
	if flags.Changed("template-name") {
		cfg.TemplateName, _ = flags.GetString("template-name")
	}
	if flags.Changed("fuel") {
		cfg.Fuel, _ = flags.GetUint64("fuel")
	}
}

// loggerKey is a private context key used to store a logger in command
// contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a
// default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo, false)
}
