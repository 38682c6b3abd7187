// Package render is a client for a session-based remote browser-rendering
// service (Cloudflare Browser Rendering compatible).
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config identifies the rendering account and endpoint.
type Config struct {
	Endpoint  string
	AccountID string
	APIToken  string
	Timeout   time.Duration
}

// Client drives the remote session lifecycle: create, navigate, pull
// rendered text, delete. Sessions are scoped per extraction attempt and
// never reused.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Client. Callers should check Configured before use.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.AccountID != "" && c.cfg.APIToken != ""
}

type sessionResponse struct {
	Result struct {
		ID string `json:"id"`
	} `json:"result"`
}

type textResponse struct {
	Result struct {
		Text string `json:"text"`
	} `json:"result"`
}

// RenderText renders url in a fresh remote session and returns the page
// text. The session is deleted regardless of outcome; delete failures
// are logged, not raised.
func (c *Client) RenderText(ctx context.Context, url string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("rendering service not configured")
	}

	sessionID, err := c.createSession(ctx)
	if err != nil {
		return "", err
	}
	defer c.deleteSession(ctx, sessionID)

	if err := c.navigate(ctx, sessionID, url); err != nil {
		return "", err
	}
	return c.pageText(ctx, sessionID)
}

func (c *Client) createSession(ctx context.Context) (string, error) {
	payload := map[string]any{
		"browser": "chromium",
		"viewport": map[string]int{
			"width":  1200,
			"height": 1200,
		},
	}
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, c.sessionsURL(""), payload, &resp); err != nil {
		return "", fmt.Errorf("session create failed: %w", err)
	}
	if resp.Result.ID == "" {
		return "", fmt.Errorf("session create failed: empty session id")
	}
	return resp.Result.ID, nil
}

func (c *Client) navigate(ctx context.Context, sessionID, url string) error {
	payload := map[string]string{"url": url}
	if err := c.do(ctx, http.MethodPost, c.sessionsURL(sessionID+"/navigate"), payload, nil); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (c *Client) pageText(ctx context.Context, sessionID string) (string, error) {
	var resp textResponse
	if err := c.do(ctx, http.MethodGet, c.sessionsURL(sessionID+"/content/text"), nil, &resp); err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	if resp.Result.Text == "" {
		return "", fmt.Errorf("text extraction failed: empty result")
	}
	return resp.Result.Text, nil
}

func (c *Client) deleteSession(ctx context.Context, sessionID string) {
	// Best effort: the session expires server-side anyway. The caller's
	// context may already be canceled when we get here, so the release
	// runs detached with its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.do(ctx, http.MethodDelete, c.sessionsURL(sessionID), nil, nil); err != nil {
		c.logger.Warn("render session delete failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (c *Client) sessionsURL(suffix string) string {
	base := fmt.Sprintf("%s/accounts/%s/browser-rendering/v1/sessions", c.cfg.Endpoint, c.cfg.AccountID)
	if suffix == "" {
		return base
	}
	return base + "/" + suffix
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("render call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, sanitizeBody(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %s", sanitizeBody(raw))
	}
	return nil
}

// sanitizeBody trims error bodies so raw HTML error pages never reach
// aggregated diagnostics verbatim.
func sanitizeBody(raw []byte) string {
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
