package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/app"
)

func newServeCmd() *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow management API",
		Long: `Starts the HTTP API for creating, listing, and deleting workflows
and for reading their results. With --with-scheduler the scheduling
loop runs in the same process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), withScheduler)
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the scheduling loop")
	return cmd
}

func runServe(parent context.Context, withScheduler bool) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.API.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if withScheduler {
		go func() {
			logger.Info("scheduler started")
			a.Scheduler.Loop(ctx)
		}()
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}
