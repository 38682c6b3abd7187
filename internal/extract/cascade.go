package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/workflow"
)

// PageFetcher retrieves raw HTML for the DOM-based strategies. The fetch
// happens at most once per Extract call.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Cascade tries strategies in priority order and short-circuits on the
// first that produces enough text.
type Cascade struct {
	fetcher    PageFetcher
	strategies []Strategy
	logger     *zap.Logger
}

// NewCascade builds a Cascade over the given strategies. Order is the
// priority order: earlier strategies are preferred regardless of the
// output quality of later ones.
func NewCascade(fetcher PageFetcher, strategies []Strategy, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{
		fetcher:    fetcher,
		strategies: strategies,
		logger:     logger,
	}
}

// Extract runs the cascade for url. On success the result carries the
// winning strategy's name as Method. On exhaustion every strategy's
// failure reason appears in the aggregated error string.
func (c *Cascade) Extract(ctx context.Context, url string) workflow.Extraction {
	var (
		html     []byte
		htmlErr  error
		fetched  bool
		failures []string
	)

	for _, strategy := range c.strategies {
		page := Page{URL: url}
		if strategy.NeedsHTML() {
			if !fetched {
				html, htmlErr = c.fetcher.Fetch(ctx, url)
				fetched = true
				if htmlErr != nil {
					c.logger.Warn("page fetch failed",
						zap.String("url", url),
						zap.Error(htmlErr),
					)
				}
			}
			if htmlErr != nil {
				failures = append(failures, fmt.Sprintf("%s: HTTP fetch failed: %v", strategy.Name(), htmlErr))
				continue
			}
			page.HTML = html
		}

		content, err := strategy.Try(ctx, page)
		if err == nil && len(content.Text) < strategy.MinLength() {
			err = insufficient(len(content.Text), strategy.MinLength())
		}
		if err != nil {
			c.logger.Debug("extraction strategy failed",
				zap.String("url", url),
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			failures = append(failures, fmt.Sprintf("%s: %v", strategy.Name(), err))
			continue
		}

		c.logger.Info("extraction succeeded",
			zap.String("url", url),
			zap.String("strategy", strategy.Name()),
			zap.Int("chars", len(content.Text)),
		)
		return workflow.Extraction{
			Success: true,
			Method:  strategy.Name(),
			Title:   content.Title,
			Text:    content.Text,
		}
	}

	if len(failures) == 0 {
		failures = append(failures, "no extraction strategies configured")
	}
	return workflow.Extraction{
		Success: false,
		Error:   "all extraction strategies failed: " + strings.Join(failures, "; "),
	}
}
