package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/app"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one scheduling pass and exit",
		Long: `Executes a single pass over all active workflows, running every
workflow that is due, then exits. Suitable for external cron.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report := a.Scheduler.Pass(cmd.Context())
			logger.Info("pass complete",
				zap.Int("processed", report.Processed),
				zap.Int("ran", report.Ran),
				zap.Int("succeeded", report.Succeeded),
				zap.Int("failed", report.Failed),
			)
			return nil
		},
	}
}
