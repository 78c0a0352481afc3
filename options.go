package mdsync

import "github.com/npillmayer/schuko/tracing"

// Option configures parsing and serialization.
type Option func(*config)

type config struct {
	frontMatter bool
	wrap        int
	emphasis    byte
	tracer      tracing.Trace
}

func newConfig(opts []Option) config {
	cfg := config{
		frontMatter: true,
		emphasis:    '*',
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer()
	}
	return cfg
}

// WithFrontMatter enables or disables front matter extraction at the start
// of a document. Enabled by default.
func WithFrontMatter(enabled bool) Option {
	return func(cfg *config) {
		cfg.frontMatter = enabled
	}
}

// WithWrap soft-wraps serialized paragraphs at width columns. Zero or a
// negative width disables wrapping.
func WithWrap(width int) Option {
	return func(cfg *config) {
		if width < 0 {
			width = 0
		}
		cfg.wrap = width
	}
}

// WithEmphasisMarker selects '*' or '_' for serialized emphasis. Strong
// emphasis is always written with "**". Other values are ignored.
func WithEmphasisMarker(marker byte) Option {
	return func(cfg *config) {
		if marker == '*' || marker == '_' {
			cfg.emphasis = marker
		}
	}
}

// WithTracer routes debug traces to t instead of the "mdsync" tracer.
func WithTracer(t tracing.Trace) Option {
	return func(cfg *config) {
		cfg.tracer = t
	}
}
