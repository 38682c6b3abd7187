package extract

import "time"

// StackOptions selects which strategies are assembled and their
// per-strategy minimum content lengths.
type StackOptions struct {
	Renderer        TextRenderer // nil when no remote rendering service is configured
	HeadlessEnabled bool
	HeadlessTimeout time.Duration
	UserAgent       string
	MinRender       int
	MinReadability  int
	MinBasic        int
	MinHeadless     int
}

// Strategies assembles the canonical priority order: remote-render,
// readability, basic-parser, then local-headless. The local browser is
// included only when no remote renderer is available; running both
// would pay the heaviest cost twice for the same capability.
func Strategies(opts StackOptions) []Strategy {
	var strategies []Strategy
	if opts.Renderer != nil {
		strategies = append(strategies, NewRemoteRender(opts.Renderer, opts.MinRender))
	}
	strategies = append(strategies,
		NewReadability(opts.MinReadability),
		NewBasicParser(opts.MinBasic),
	)
	if opts.Renderer == nil && opts.HeadlessEnabled {
		strategies = append(strategies, NewHeadless(HeadlessConfig{
			NavigationTimeout: opts.HeadlessTimeout,
			UserAgent:         opts.UserAgent,
		}, opts.MinHeadless))
	}
	return strategies
}
