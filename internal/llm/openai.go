package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIConfig identifies an OpenAI chat-completions provider.
type OpenAIConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// OpenAI calls the chat-completions API, used as the secondary provider.
type OpenAI struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAI builds the provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	return &OpenAI{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name identifies the provider in logs and aggregated errors.
func (o *OpenAI) Name() string { return "openai" }

type openAIRequest struct {
	Model       string         `json:"model"`
	Messages    []openAIReqMsg `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
}

type openAIReqMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Summarize submits the text through the chat-completions endpoint.
func (o *OpenAI) Summarize(ctx context.Context, text, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: o.cfg.Model,
		Messages: []openAIReqMsg{
			{Role: "system", Content: "You are a helpful assistant that creates concise, accurate summaries."},
			{Role: "user", Content: prompt + "\n\nContent:\n" + text},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, sanitize(raw))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: non-JSON body: %s", ErrBadResponse, sanitize(raw))
	}
	summary := parsed.extractText()
	if summary == "" {
		return "", fmt.Errorf("%w: no text in any known shape", ErrBadResponse)
	}
	return summary, nil
}
