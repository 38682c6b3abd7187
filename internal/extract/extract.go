// Package extract implements the multi-strategy content-extraction cascade.
package extract

import (
	"context"
	"errors"
	"fmt"
)

// ErrContentInsufficient signals that a strategy produced text below its
// minimum length. It is a normal cascade-advance signal, not a fault.
var ErrContentInsufficient = errors.New("insufficient content")

// Page is the input to an extraction strategy. HTML is populated only
// for strategies that declare NeedsHTML; rendering strategies fetch the
// page through their own browser session.
type Page struct {
	URL  string
	HTML []byte
}

// Content is the readable output of a successful strategy.
type Content struct {
	Title string
	Text  string
}

// Strategy is one extraction technique. Strategies are tried by the
// Cascade in a fixed priority order; earlier strategies win outright.
type Strategy interface {
	Name() string
	MinLength() int
	NeedsHTML() bool
	Try(ctx context.Context, page Page) (Content, error)
}

func insufficient(got, minimum int) error {
	return fmt.Errorf("%w: %d chars, need %d", ErrContentInsufficient, got, minimum)
}
