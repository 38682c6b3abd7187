package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Readability applies Mozilla's heuristic main-content algorithm to the
// fetched DOM.
type Readability struct {
	minLength int
}

// NewReadability builds the strategy.
func NewReadability(minLength int) *Readability {
	if minLength <= 0 {
		minLength = 80
	}
	return &Readability{minLength: minLength}
}

// Name identifies the strategy in result metadata.
func (s *Readability) Name() string { return "readability" }

// MinLength is the minimum acceptable text length.
func (s *Readability) MinLength() int { return s.minLength }

// NeedsHTML is true: the heuristic runs over the fetched document.
func (s *Readability) NeedsHTML() bool { return true }

// Try parses the HTML and extracts the main article text and title.
func (s *Readability) Try(_ context.Context, page Page) (Content, error) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return Content{}, fmt.Errorf("parse url: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(page.HTML), pageURL)
	if err != nil {
		return Content{}, fmt.Errorf("readability parse: %w", err)
	}
	return Content{
		Title: article.Title,
		Text:  article.TextContent,
	}, nil
}
