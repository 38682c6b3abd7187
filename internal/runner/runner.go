// Package runner executes workflows: extract, summarize, persist, notify.
package runner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/metrics"
	"github.com/aera-dev/aera/internal/workflow"
)

// localSummaryCap bounds the fallback summary when the extracted text
// has no sentence boundaries.
const localSummaryCap = 500

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)

// Runner executes one workflow end to end. It never returns an error:
// every failure is captured into the persisted result and the workflow's
// status, so a single bad workflow cannot abort a scheduling pass.
type Runner struct {
	store      workflow.Store
	extractor  workflow.Extractor
	summarizer workflow.Summarizer
	notifier   workflow.Notifier
	clock      workflow.Clock
	idGen      workflow.IDGenerator
	logger     *zap.Logger
}

// New constructs a Runner. The summarizer may be nil when no language
// model is configured; extraction results then get the local summary.
func New(
	store workflow.Store,
	extractor workflow.Extractor,
	summarizer workflow.Summarizer,
	notifier workflow.Notifier,
	clock workflow.Clock,
	idGen workflow.IDGenerator,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:      store,
		extractor:  extractor,
		summarizer: summarizer,
		notifier:   notifier,
		clock:      clock,
		idGen:      idGen,
		logger:     logger,
	}
}

// Run executes wf if it is due. Exactly one result row is persisted per
// execution attempt; none when the workflow is not due.
func (r *Runner) Run(ctx context.Context, wf workflow.Workflow) workflow.RunReport {
	report := workflow.RunReport{WorkflowID: wf.ID}

	now := r.clock.Now()
	if !wf.Due(now) {
		return report
	}
	report.Ran = true

	r.logger.Info("running workflow",
		zap.String("workflow_id", wf.ID),
		zap.String("url", wf.URL),
	)

	extraction := r.extractor.Extract(ctx, wf.URL)
	metrics.ObserveExtraction(extraction.Method, extraction.Success)
	if !extraction.Success {
		reason := "Extraction failed: " + extraction.Error
		r.recordFailure(ctx, wf, reason)
		report.Error = reason
		metrics.ObserveRun(false)
		return report
	}
	report.Method = extraction.Method

	summary, source := r.summarize(ctx, wf, extraction.Text)
	report.Summary = summary

	result := workflow.Result{
		WorkflowID: wf.ID,
		Summary:    summary,
		Metadata: map[string]any{
			"method":          extraction.Method,
			"title":           extraction.Title,
			"extractedLength": len(extraction.Text),
			"summarySource":   source,
		},
		Timestamp: r.clock.Now(),
		// An emailed result is considered delivered; in-app results wait
		// for an explicit acknowledgement.
		Seen: wf.NotifyType == workflow.NotifyEmail,
	}
	if id, err := r.idGen.NewID(); err == nil {
		result.ID = id
	}
	if _, err := r.store.CreateResult(ctx, result); err != nil {
		reason := fmt.Sprintf("persist result: %v", err)
		r.logger.Error("result persistence failed",
			zap.String("workflow_id", wf.ID),
			zap.Error(err),
		)
		r.updateWorkflow(ctx, wf.ID, workflow.StatusError)
		report.Error = reason
		metrics.ObserveRun(false)
		return report
	}

	report.Notified = r.notify(ctx, wf, extraction.Title, summary)

	r.updateWorkflow(ctx, wf.ID, workflow.StatusActive)
	report.Success = true
	metrics.ObserveRun(true)
	return report
}

// summarize runs the model chain and falls back to a local summary on
// any failure. A successful extraction always yields a storable result
// even without model access.
func (r *Runner) summarize(ctx context.Context, wf workflow.Workflow, text string) (summary, source string) {
	if r.summarizer != nil {
		out, err := r.summarizer.Summarize(ctx, text, wf.Prompt)
		if err == nil {
			metrics.ObserveSummarization("provider", true)
			return out, "llm"
		}
		r.logger.Warn("summarization failed, using local fallback",
			zap.String("workflow_id", wf.ID),
			zap.Error(err),
		)
	}
	metrics.ObserveSummarization("local-fallback", true)
	return LocalSummary(text), "local-fallback"
}

// notify delivers by email when configured for it. Delivery failures are
// logged only; they never revert the persisted result or the workflow's
// success status.
func (r *Runner) notify(ctx context.Context, wf workflow.Workflow, title, summary string) bool {
	if wf.NotifyType != workflow.NotifyEmail || wf.Email == "" || r.notifier == nil {
		return false
	}
	outcome := r.notifier.SendEmail(ctx, workflow.EmailMessage{
		To:      wf.Email,
		Subject: "Aera summary: " + wf.URL,
		Summary: summary,
		Title:   title,
	})
	metrics.ObserveNotification(outcome.Success)
	if !outcome.Success {
		r.logger.Warn("email delivery failed",
			zap.String("workflow_id", wf.ID),
			zap.String("to", wf.Email),
			zap.String("reason", outcome.Error),
		)
	}
	return outcome.Success
}

// recordFailure persists the error-documenting result row and marks the
// workflow errored. Both are soft: the workflow stays eligible for
// future runs at its normal frequency.
func (r *Runner) recordFailure(ctx context.Context, wf workflow.Workflow, reason string) {
	result := workflow.Result{
		WorkflowID: wf.ID,
		Summary:    reason,
		Metadata:   map[string]any{"error": true},
		Timestamp:  r.clock.Now(),
		Seen:       false,
	}
	if id, err := r.idGen.NewID(); err == nil {
		result.ID = id
	}
	if _, err := r.store.CreateResult(ctx, result); err != nil {
		r.logger.Error("error-result persistence failed",
			zap.String("workflow_id", wf.ID),
			zap.Error(err),
		)
	}
	r.updateWorkflow(ctx, wf.ID, workflow.StatusError)
}

// updateWorkflow applies the last-write-wins post-run update. Store
// failures here must not crash the pass; they are logged and the next
// due cycle retries naturally.
func (r *Runner) updateWorkflow(ctx context.Context, id string, status workflow.Status) {
	now := r.clock.Now()
	if _, err := r.store.Update(ctx, id, workflow.Update{
		LastRun: &now,
		Status:  &status,
	}); err != nil {
		r.logger.Error("workflow update failed",
			zap.String("workflow_id", id),
			zap.Error(err),
		)
	}
}

// LocalSummary returns the first two sentence-terminated segments of
// text, or its first 500 characters when fewer than two sentences exist.
func LocalSummary(text string) string {
	cleaned := strings.TrimSpace(text)
	sentences := sentenceRe.FindAllString(cleaned, 2)
	if len(sentences) >= 2 {
		return strings.TrimSpace(sentences[0]) + " " + strings.TrimSpace(sentences[1])
	}
	return truncate(cleaned, localSummaryCap)
}

// truncate caps s at limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
