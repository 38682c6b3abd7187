// Package main hosts the aera service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and workflow management endpoints. Requests are
//     validated, normalized into workflow.Workflow records, and persisted via the workflow.Store.
//   - Scheduler: internal/runner.Scheduler wakes at a configured interval, lists active workflows, and runs each
//     one that is due according to its frequency. Context cancellation stops the loop cleanly on shutdown.
//   - Extraction pipeline: internal/extract.Cascade tries strategies in priority order (remote browser rendering,
//     readability, a basic DOM parser, and an optional local headless browser) until one yields enough content.
//     The page body is fetched at most once per attempt and shared across DOM-based strategies.
//   - Summarization: internal/llm.Summarizer calls the primary provider, retries once with a shorter input when
//     the response is malformed, then falls back to the secondary provider. Without any provider a local
//     sentence-based summary is used so a result row is always written.
//   - Persistence & notification: results are written to Postgres (or the in-memory store when no DSN is set);
//     email delivery via Resend is best-effort and never affects the stored result.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging;
//     Prometheus metrics are exported via the /metrics handler.
//
// Operational notes:
//   - Concurrency model: workflows run sequentially within a pass; a slow page delays later workflows but never
//     corrupts state, since each run touches only its own workflow row and result rows.
//   - Failure handling: extraction and summarization failures degrade rather than abort. A failed extraction
//     still writes one result row describing the failure and marks the workflow status error; the next due pass
//     retries it.
//   - Observability: zap logs carry workflow IDs and URLs at key transitions; Prometheus counters track runs,
//     extractions, summarizer calls, and notifications.
//
// Quick checklist:
//   - Configure env vars: AERA_SERVER_PORT, AERA_DB_DSN, AERA_RENDER_* for remote rendering,
//     AERA_LLM_GEMINI_API_KEY / AERA_LLM_OPENAI_API_KEY, AERA_EMAIL_RESEND_API_KEY, and
//     AERA_SCHEDULER_INTERVAL_MINUTES.
//   - Run locally: go run ./cmd/aera serve --with-scheduler --config config.yaml (or rely on env overrides).
package main
