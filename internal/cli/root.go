// Package cli implements the portfolio command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/logging"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	StoragePath string
	Ephemeral   bool
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the portfolio CLI.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio state console",
		Long:          "Drive the portfolio event bus and state store from a terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
				return fmt.Errorf("invalid log level %q: must be debug, info, warn or error", opts.LogLevel)
			}
			if opts.LogFormat != "" && !isValidLogFormat(opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (toml or yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.StoragePath, "storage", "", "preference database path")
	cmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false, "keep preferences in memory only")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewSectionsCommand(opts))
	cmd.AddCommand(NewVersionCommand(info))

	return cmd
}

// isValidLogFormat checks if the format is one of the allowed values.
func isValidLogFormat(format string) bool {
	for _, f := range ValidLogFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig loads the configuration file and applies flag overrides.
// Flags win over the environment, which wins over the file.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.LogFormat
	}
	if flags.Changed("storage") {
		cfg.Storage.Path = o.StoragePath
	}
	if o.Ephemeral {
		cfg.Storage.Ephemeral = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the structured logger described by cfg.
func newLogger(w io.Writer, cfg *config.Config) (logging.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
		Output: w,
	})
}
