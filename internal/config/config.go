// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Render    RenderConfig    `mapstructure:"render"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls access to the relational database. An empty DSN
// selects the in-memory store, useful for local development.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// FetchConfig configures the raw HTML fetcher.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RenderConfig points at the remote browser-rendering service. Leaving
// the endpoint or token empty disables the remote-render strategy.
type RenderConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	AccountID      string `mapstructure:"account_id"`
	APIToken       string `mapstructure:"api_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// HeadlessConfig configures the local headless-browser fallback, used
// only when no remote rendering service is configured.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// ExtractConfig sets per-strategy minimum content lengths.
type ExtractConfig struct {
	MinRender      int `mapstructure:"min_render"`
	MinReadability int `mapstructure:"min_readability"`
	MinBasic       int `mapstructure:"min_basic"`
	MinHeadless    int `mapstructure:"min_headless"`
}

// LLMConfig holds credentials for the summarization providers. The
// primary provider speaks the Gemini wire format, the secondary the
// OpenAI chat-completions format. Either may be left unconfigured.
type LLMConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	GeminiModel    string `mapstructure:"gemini_model"`
	GeminiEndpoint string `mapstructure:"gemini_endpoint"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	OpenAIModel    string `mapstructure:"openai_model"`
	OpenAIEndpoint string `mapstructure:"openai_endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EmailConfig configures the Resend notifier. An empty API key makes
// email delivery a no-op.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	Endpoint     string `mapstructure:"endpoint"`
}

// SchedulerConfig controls the long-lived scheduling loop.
type SchedulerConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 AeraCronFetcher")
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("render.endpoint", "https://api.cloudflare.com/client/v4")
	v.SetDefault("render.timeout_seconds", 30)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 30)
	v.SetDefault("extract.min_render", 200)
	v.SetDefault("extract.min_readability", 80)
	v.SetDefault("extract.min_basic", 150)
	v.SetDefault("extract.min_headless", 150)
	v.SetDefault("llm.gemini_model", "gemini-1.5-flash")
	v.SetDefault("llm.gemini_endpoint", "https://generativelanguage.googleapis.com/v1")
	v.SetDefault("llm.openai_model", "gpt-3.5-turbo")
	v.SetDefault("llm.openai_endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("email.from", "noreply@aera.dev")
	v.SetDefault("email.endpoint", "https://api.resend.com")
	v.SetDefault("scheduler.interval_minutes", 15)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be > 0")
	}
	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler.interval_minutes must be > 0")
	}
	if c.Render.AccountID != "" && c.Render.APIToken == "" {
		return fmt.Errorf("render.api_token must be set when render.account_id is set")
	}
	if c.Extract.MinReadability < 0 || c.Extract.MinBasic < 0 ||
		c.Extract.MinRender < 0 || c.Extract.MinHeadless < 0 {
		return fmt.Errorf("extract minimum lengths must be >= 0")
	}
	return nil
}

// RenderConfigured reports whether the remote rendering service is usable.
func (c Config) RenderConfigured() bool {
	return c.Render.AccountID != "" && c.Render.APIToken != ""
}

// FetchTimeout returns the fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// PassInterval returns the sleep between scheduling passes.
func (c Config) PassInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalMinutes) * time.Minute
}
