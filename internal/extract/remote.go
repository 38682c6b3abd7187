package extract

import (
	"context"
	"strings"
)

// TextRenderer is the remote rendering service contract consumed by the
// remote-render strategy.
type TextRenderer interface {
	RenderText(ctx context.Context, url string) (string, error)
}

// RemoteRender delegates to a remote headless-browser rendering service.
// It is the first strategy in the canonical order because the rendered
// DOM handles JS-heavy pages without a local browser.
type RemoteRender struct {
	renderer  TextRenderer
	minLength int
}

// NewRemoteRender builds the strategy.
func NewRemoteRender(renderer TextRenderer, minLength int) *RemoteRender {
	if minLength <= 0 {
		minLength = 200
	}
	return &RemoteRender{renderer: renderer, minLength: minLength}
}

// Name identifies the strategy in result metadata.
func (s *RemoteRender) Name() string { return "remote-render" }

// MinLength is the minimum acceptable text length.
func (s *RemoteRender) MinLength() int { return s.minLength }

// NeedsHTML is false: the rendering service fetches the page itself.
func (s *RemoteRender) NeedsHTML() bool { return false }

// Try renders the page remotely. The session lifecycle, including
// teardown on failure, lives in the renderer client.
func (s *RemoteRender) Try(ctx context.Context, page Page) (Content, error) {
	text, err := s.renderer.RenderText(ctx, page.URL)
	if err != nil {
		return Content{}, err
	}
	return Content{Text: strings.TrimSpace(text)}, nil
}
