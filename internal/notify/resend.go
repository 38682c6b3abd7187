// Package notify delivers workflow results by email via the Resend API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/workflow"
)

// Config identifies the Resend account.
type Config struct {
	Endpoint string
	APIKey   string
	From     string
	Timeout  time.Duration
}

// Resend sends transactional email. When no API key is configured every
// send is a no-op reporting Success=false, never an error: notification
// is best-effort and must not affect workflow outcomes.
type Resend struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Resend notifier.
func New(cfg Config, logger *zap.Logger) *Resend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.From == "" {
		cfg.From = "noreply@aera.dev"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.resend.com"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Configured reports whether an API key is present.
func (r *Resend) Configured() bool {
	return r.cfg.APIKey != ""
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendEmail delivers one summary email.
func (r *Resend) SendEmail(ctx context.Context, msg workflow.EmailMessage) workflow.SendOutcome {
	if !r.Configured() {
		r.logger.Warn("email skipped: notifier not configured")
		return workflow.SendOutcome{Success: false, Error: "email notifier not configured"}
	}

	subject := msg.Subject
	if subject == "" {
		subject = "Aera Workflow Summary"
	}
	payload := sendRequest{
		From:    r.cfg.From,
		To:      []string{msg.To},
		Subject: subject,
		HTML:    renderBody(msg),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return workflow.SendOutcome{Success: false, Error: fmt.Sprintf("encode email: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint+"/emails", bytes.NewReader(encoded))
	if err != nil {
		return workflow.SendOutcome{Success: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return workflow.SendOutcome{Success: false, Error: fmt.Sprintf("send email: %v", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return workflow.SendOutcome{
			Success: false,
			Error:   fmt.Sprintf("resend status %d: %s", resp.StatusCode, raw),
		}
	}

	r.logger.Info("email sent", zap.String("to", msg.To))
	return workflow.SendOutcome{Success: true}
}

func renderBody(msg workflow.EmailMessage) string {
	title := msg.Title
	if title == "" {
		title = "Workflow Summary"
	}
	return fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2 style="color: #2c3e50;">%s</h2>
    <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <h3>Summary</h3>
      <pre style="white-space: pre-wrap; word-wrap: break-word; font-size: 14px;">%s</pre>
    </div>
    <hr />
    <p style="color: #7f8c8d; font-size: 12px;">Automated notification from Aera</p>
  </body>
</html>`, html.EscapeString(title), html.EscapeString(msg.Summary))
}
