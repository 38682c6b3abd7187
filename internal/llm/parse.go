package llm

import "strings"

// geminiResponse covers every response shape the Gemini API has been
// observed to return for the same logical call.
type geminiResponse struct {
	OutputText string            `json:"output_text"`
	Candidates []geminiCandidate `json:"candidates"`
	Text       string            `json:"text"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
	Text    string         `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// extractText selects the first non-empty match across the known shapes,
// in fixed priority order: top-level output_text, candidate parts, a
// text field inside the candidate, then a root text field.
func (r geminiResponse) extractText() string {
	if s := strings.TrimSpace(r.OutputText); s != "" {
		return s
	}
	if len(r.Candidates) > 0 {
		c := r.Candidates[0]
		if c.Content != nil && len(c.Content.Parts) > 0 {
			parts := make([]string, 0, len(c.Content.Parts))
			for _, p := range c.Content.Parts {
				if p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			if s := strings.TrimSpace(strings.Join(parts, "\n")); s != "" {
				return s
			}
		}
		if s := strings.TrimSpace(c.Text); s != "" {
			return s
		}
	}
	return strings.TrimSpace(r.Text)
}

// openAIResponse covers the chat-completions shapes: the chat message
// content and the older completion text field.
type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message *openAIMessage `json:"message"`
	Text    string         `json:"text"`
}

type openAIMessage struct {
	Content string `json:"content"`
}

func (r openAIResponse) extractText() string {
	if len(r.Choices) == 0 {
		return ""
	}
	c := r.Choices[0]
	if c.Message != nil {
		if s := strings.TrimSpace(c.Message.Content); s != "" {
			return s
		}
	}
	return strings.TrimSpace(c.Text)
}
