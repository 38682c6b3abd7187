package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/metrics"
	"github.com/aera-dev/aera/internal/workflow"
)

// Scheduler iterates active workflows sequentially, executing each due
// one to completion before moving to the next. Cross-pass overlap is
// prevented by running Loop in a single goroutine with a fixed sleep,
// never by re-entrant timers.
type Scheduler struct {
	store    workflow.Store
	runner   *Runner
	clock    workflow.Clock
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(
	store workflow.Store,
	runner *Runner,
	clock workflow.Clock,
	interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		runner:   runner,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Pass runs one full scheduling pass over all active workflows. Store
// failures skip the pass rather than crash it.
func (s *Scheduler) Pass(ctx context.Context) workflow.PassReport {
	started := s.clock.Now()
	report := workflow.PassReport{Started: started}

	workflows, err := s.store.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active workflows failed", zap.Error(err))
		return report
	}

	for _, wf := range workflows {
		if ctx.Err() != nil {
			break
		}
		report.Processed++
		run := s.runner.Run(ctx, wf)
		report.Reports = append(report.Reports, run)
		if !run.Ran {
			continue
		}
		report.Ran++
		if run.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	metrics.ObservePass(time.Since(started), report.Ran)
	s.logger.Info("scheduling pass complete",
		zap.Int("processed", report.Processed),
		zap.Int("ran", report.Ran),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report
}

// Loop runs passes separated by the configured interval until the
// context is canceled.
func (s *Scheduler) Loop(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.Pass(ctx)
		timer.Reset(s.interval)
	}
}
