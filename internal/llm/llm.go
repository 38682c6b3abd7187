// Package llm sends extracted text to language-model providers for
// summarization, with provider fallback and a short-input retry.
package llm

import (
	"context"
	"errors"
)

// Input budgets. Downstream context windows are limited and cost scales
// with input size; retrySlice exists because some providers choke on
// large payloads but handle small ones.
const (
	inputBudget = 4000
	retrySlice  = 800
)

// ErrBadResponse marks a provider reply that was syntactically delivered
// but unusable: non-JSON, empty, or an unrecognized shape. It is the
// trigger for the short-input retry, unlike transport failures.
var ErrBadResponse = errors.New("malformed or empty provider response")

// Provider is one summarization backend.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, text, prompt string) (string, error)
}
