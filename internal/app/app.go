// Package app initializes and holds long-lived application services.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/api"
	"github.com/aera-dev/aera/internal/clock/system"
	"github.com/aera-dev/aera/internal/config"
	"github.com/aera-dev/aera/internal/extract"
	"github.com/aera-dev/aera/internal/fetcher"
	"github.com/aera-dev/aera/internal/id/uuid"
	"github.com/aera-dev/aera/internal/llm"
	"github.com/aera-dev/aera/internal/metrics"
	"github.com/aera-dev/aera/internal/notify"
	"github.com/aera-dev/aera/internal/render"
	"github.com/aera-dev/aera/internal/runner"
	"github.com/aera-dev/aera/internal/storage/memory"
	"github.com/aera-dev/aera/internal/storage/postgres"
	"github.com/aera-dev/aera/internal/workflow"
)

// App wires the configured services together. It is built once at
// startup and handed to the commands that need it.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     workflow.Store
	Runner    *runner.Runner
	Scheduler *runner.Scheduler
	API       *api.Server

	pgStore *postgres.Store
}

// New builds the full service graph from cfg. An empty db.dsn selects
// the in-memory store so the binary runs without Postgres.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	a := &App{Config: cfg, Logger: logger}

	if cfg.DB.DSN != "" {
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		a.pgStore = pg
		a.Store = pg
		logger.Info("using postgres store")
	} else {
		a.Store = memory.New()
		logger.Info("using in-memory store")
	}

	var renderer extract.TextRenderer
	if cfg.RenderConfigured() {
		renderer = render.New(render.Config{
			Endpoint:  cfg.Render.Endpoint,
			AccountID: cfg.Render.AccountID,
			APIToken:  cfg.Render.APIToken,
			Timeout:   time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
		}, logger.Named("render"))
	}

	pageFetcher := fetcher.New(fetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	strategies := extract.Strategies(extract.StackOptions{
		Renderer:        renderer,
		HeadlessEnabled: cfg.Headless.Enabled,
		HeadlessTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		UserAgent:       cfg.Fetch.UserAgent,
		MinRender:       cfg.Extract.MinRender,
		MinReadability:  cfg.Extract.MinReadability,
		MinBasic:        cfg.Extract.MinBasic,
		MinHeadless:     cfg.Extract.MinHeadless,
	})
	cascade := extract.NewCascade(pageFetcher, strategies, logger.Named("extract"))

	var summarizer workflow.Summarizer
	if s := buildSummarizer(cfg, logger); s.Configured() {
		summarizer = s
	} else {
		logger.Info("no language model configured, using local summaries")
	}

	notifier := notify.New(notify.Config{
		Endpoint: cfg.Email.Endpoint,
		APIKey:   cfg.Email.ResendAPIKey,
		From:     cfg.Email.From,
	}, logger.Named("notify"))

	clock := system.New()
	idGen := uuid.NewGenerator()

	a.Runner = runner.New(a.Store, cascade, summarizer, notifier, clock, idGen, logger.Named("runner"))
	a.Scheduler = runner.NewScheduler(a.Store, a.Runner, clock, cfg.PassInterval(), logger.Named("scheduler"))
	a.API = api.NewServer(a.Store, idGen, clock, logger.Named("api"))

	return a, nil
}

func buildSummarizer(cfg config.Config, logger *zap.Logger) *llm.Summarizer {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	var primary, secondary llm.Provider
	if cfg.LLM.GeminiAPIKey != "" {
		primary = llm.NewGemini(llm.GeminiConfig{
			Endpoint: cfg.LLM.GeminiEndpoint,
			APIKey:   cfg.LLM.GeminiAPIKey,
			Model:    cfg.LLM.GeminiModel,
			Timeout:  timeout,
		})
	}
	if cfg.LLM.OpenAIAPIKey != "" {
		secondary = llm.NewOpenAI(llm.OpenAIConfig{
			Endpoint: cfg.LLM.OpenAIEndpoint,
			APIKey:   cfg.LLM.OpenAIAPIKey,
			Model:    cfg.LLM.OpenAIModel,
			Timeout:  timeout,
		})
	}
	return llm.NewSummarizer(primary, secondary, logger.Named("llm"))
}

// Close releases pooled resources.
func (a *App) Close() {
	if a.pgStore != nil {
		a.pgStore.Close()
	}
}
