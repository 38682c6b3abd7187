package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxBasicChars caps basic-parser output so a boilerplate-heavy page
// cannot flood downstream summarization.
const maxBasicChars = 4000

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	adMarkersRe  = regexp.MustCompile(`(?i)(Advertisement|ADVT|Sponsored|Subscriber Only|Best Of Premium)`)
	newsUpdateRe = regexp.MustCompile(`(?i)[A-Za-z]+\s+News\s+Update:.*?\d{4}`)
	bannersRe    = regexp.MustCompile(`(?i)(Latest News|Trending|Most Read|Top Stories)`)
	strayMarksRe = regexp.MustCompile(`[|•()\[\]]+`)
)

// BasicParser is the tag-stripping fallback: remove obvious non-content
// nodes, take the first content container, scrub boilerplate phrases.
type BasicParser struct {
	minLength int
}

// NewBasicParser builds the strategy.
func NewBasicParser(minLength int) *BasicParser {
	if minLength <= 0 {
		minLength = 150
	}
	return &BasicParser{minLength: minLength}
}

// Name identifies the strategy in result metadata.
func (s *BasicParser) Name() string { return "basic-parser" }

// MinLength is the minimum acceptable text length.
func (s *BasicParser) MinLength() int { return s.minLength }

// NeedsHTML is true: the parser runs over the fetched document.
func (s *BasicParser) NeedsHTML() bool { return true }

// Try strips scripts/styles/nav/footer, selects the first matching
// content container (main, article, then body), normalizes whitespace,
// and removes known boilerplate phrase patterns.
func (s *BasicParser) Try(_ context.Context, page Page) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return Content{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer").Remove()

	container := doc.Find("main").First()
	if container.Length() == 0 {
		container = doc.Find("article").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}

	text := cleanText(container.Text())
	title := strings.TrimSpace(doc.Find("title").First().Text())

	return Content{Title: title, Text: text}, nil
}

func cleanText(raw string) string {
	text := whitespaceRe.ReplaceAllString(raw, " ")
	text = adMarkersRe.ReplaceAllString(text, "")
	text = newsUpdateRe.ReplaceAllString(text, "")
	text = bannersRe.ReplaceAllString(text, "")
	text = strayMarksRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return truncate(text, maxBasicChars)
}

// truncate caps s at limit bytes without splitting a rune.
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
