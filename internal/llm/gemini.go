package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GeminiConfig identifies a Gemini-format provider.
type GeminiConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Gemini calls the Google generative-language API.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGemini builds the provider.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	return &Gemini{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name identifies the provider in logs and aggregated errors.
func (g *Gemini) Name() string { return "gemini" }

type geminiRequest struct {
	Contents         []geminiReqContent `json:"contents"`
	GenerationConfig geminiGenConfig    `json:"generationConfig"`
}

type geminiReqContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// Summarize submits text with the user prompt and parses whichever
// response shape comes back.
func (g *Gemini) Summarize(ctx context.Context, text, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiReqContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt + "\n\n" + text}},
		}},
		GenerationConfig: geminiGenConfig{
			MaxOutputTokens: 600,
			Temperature:     0.7,
		},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.cfg.Endpoint, g.cfg.Model, url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, sanitize(raw))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: non-JSON body: %s", ErrBadResponse, sanitize(raw))
	}
	summary := parsed.extractText()
	if summary == "" {
		return "", fmt.Errorf("%w: no text in any known shape", ErrBadResponse)
	}
	return summary, nil
}

// sanitize trims provider error bodies and masks HTML error pages so
// they never propagate verbatim into workflow results.
func sanitize(raw []byte) string {
	const maxLen = 300
	s := string(raw)
	if len(s) > 0 && s[0] == '<' {
		return "non-JSON response (HTML)"
	}
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
