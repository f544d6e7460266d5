package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/config"
	"github.com/kk-code-lab/rscan/internal/logging"
)

var (
	flagConfig   string
	flagLogLevel string
	flagParallel bool
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:           "rscan",
	Short:         "Streaming fuzzy file-name and content search",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `rscan walks a directory tree and streams matches as they are found.

Configuration is read from $XDG_CONFIG_HOME/rscan/config.yaml (or --config)
and can be overridden with RSCAN_* environment variables.`,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to the config file")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&flagParallel, "parallel", false, "Walk directories with a worker pool")
	pf.BoolVar(&flagJSON, "json", false, "Print raw events as JSON lines")
}

// loadConfig resolves the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagParallel {
		cfg.Walk.Parallel = true
	}
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*logging.Logger, error) {
	logger, err := logging.FromConfig(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return logger, nil
}

// rootArg returns the absolute form of args[i], or of the working directory
// when the argument is absent.
func rootArg(args []string, i int) (string, error) {
	root := "."
	if len(args) > i {
		root = args[i]
	}
	return filepath.Abs(root)
}
