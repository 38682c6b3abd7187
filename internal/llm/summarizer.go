package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var collapseRe = regexp.MustCompile(`\s+`)

// Summarizer tries the primary provider, retries it once on a bad
// response with a much shorter input slice, and falls through to the
// secondary provider. It fails only when every configured provider does.
type Summarizer struct {
	primary   Provider
	secondary Provider
	logger    *zap.Logger
}

// NewSummarizer builds a Summarizer. Either provider may be nil.
func NewSummarizer(primary, secondary Provider, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Configured reports whether at least one provider is available.
func (s *Summarizer) Configured() bool {
	return s.primary != nil || s.secondary != nil
}

// Summarize normalizes and truncates text to the input budget, then
// walks the provider chain.
func (s *Summarizer) Summarize(ctx context.Context, text, prompt string) (string, error) {
	if !s.Configured() {
		return "", errors.New("no summarization provider configured")
	}
	cleaned := collapseRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if cleaned == "" {
		return "", errors.New("empty text to summarize")
	}
	cleaned = truncate(cleaned, inputBudget)
	if prompt == "" {
		prompt = "Provide a concise summary"
	}

	var failures []string

	if s.primary != nil {
		summary, err := s.callWithRetry(ctx, s.primary, cleaned, prompt)
		if err == nil {
			return summary, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", s.primary.Name(), err))
	}

	if s.secondary != nil {
		s.logger.Info("falling back to secondary provider",
			zap.String("provider", s.secondary.Name()),
		)
		summary, err := s.secondary.Summarize(ctx, cleaned, prompt)
		if err == nil {
			return summary, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", s.secondary.Name(), err))
	}

	return "", fmt.Errorf("all providers failed: %s", strings.Join(failures, "; "))
}

// callWithRetry runs one provider, retrying once with a short input
// slice when the failure was a bad response rather than a transport
// error. Providers that fail on large payloads often succeed on small
// ones.
func (s *Summarizer) callWithRetry(ctx context.Context, p Provider, text, prompt string) (string, error) {
	summary, err := p.Summarize(ctx, text, prompt)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, ErrBadResponse) {
		return "", err
	}

	s.logger.Warn("provider returned bad response, retrying with short input",
		zap.String("provider", p.Name()),
		zap.Error(err),
	)
	short := truncate(text, retrySlice)
	summary, retryErr := p.Summarize(ctx, short, prompt+" (short-input fallback)")
	if retryErr != nil {
		return "", fmt.Errorf("%v; short-input retry: %v", err, retryErr)
	}
	return summary, nil
}

// truncate caps s at limit bytes without splitting a rune; an oversized
// multibyte rune at the cut point is dropped rather than mangled.
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
