package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aera-dev/aera/internal/app"
)

func newLoopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loop",
		Short: "Run the scheduling loop until interrupted",
		Long: `Runs scheduling passes at the configured interval until the process
receives SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			logger.Info("scheduler loop started")
			a.Scheduler.Loop(ctx)
			logger.Info("scheduler loop stopped")
			return nil
		},
	}
}
