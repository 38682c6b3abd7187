// Package cmd defines the CLI commands for the aera executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/config"
	"github.com/aera-dev/aera/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aera",
		Short: "Periodic web-page summarization service",
		Long: `aera runs user-defined workflows that periodically fetch a web page,
extract its readable content, summarize it with a language model, and
record the result. It can serve the management API, run a single
scheduling pass, or run the scheduling loop indefinitely.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newLoopCmd())

	return cmd
}

// Execute is the main entry point for the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aera: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads config and builds the logger shared by all commands.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}
