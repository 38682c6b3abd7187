package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// HeadlessConfig controls the local headless-browser strategy.
type HeadlessConfig struct {
	NavigationTimeout time.Duration
	UserAgent         string
}

// Headless renders JS-heavy pages with a local headless Chrome. It is
// the last resort, used only when no remote rendering service is
// configured; every attempt gets an isolated browser context that is
// torn down unconditionally.
type Headless struct {
	cfg       HeadlessConfig
	minLength int
}

// NewHeadless builds the strategy.
func NewHeadless(cfg HeadlessConfig, minLength int) *Headless {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if minLength <= 0 {
		minLength = 150
	}
	return &Headless{cfg: cfg, minLength: minLength}
}

// Name identifies the strategy in result metadata.
func (s *Headless) Name() string { return "local-headless" }

// MinLength is the minimum acceptable text length.
func (s *Headless) MinLength() int { return s.minLength }

// NeedsHTML is false: the browser fetches and renders the page itself.
func (s *Headless) NeedsHTML() bool { return false }

// Try launches a fresh browser context, navigates, waits for the page to
// settle, and pulls the visible body text and title.
func (s *Headless) Try(ctx context.Context, page Page) (Content, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, s.cfg.NavigationTimeout)
	defer cancel()

	var (
		text  string
		title string
	)
	actions := []chromedp.Action{
		chromedp.Navigate(page.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Title(&title),
		chromedp.Text("body", &text, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return Content{}, fmt.Errorf("headless render: %w", err)
	}

	return Content{
		Title: strings.TrimSpace(title),
		Text:  strings.TrimSpace(text),
	}, nil
}
