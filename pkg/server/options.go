package server

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// DefaultMaxBodyBytes caps request payloads.
const DefaultMaxBodyBytes int64 = 4 << 20

// Options configures a Server.
type Options struct {
	Store        *template.Store
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger
	MaxBodyBytes int64
	// SkipValidation disables OpenAPI request validation.
	SkipValidation bool
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions returns the embedded store, a default orchestrator and a
// discarding logger.
func DefaultOptions() Options {
	return Options{MaxBodyBytes: DefaultMaxBodyBytes}
}

// NewOptions applies fns over DefaultOptions and fills any gaps.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = template.Default()
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = orchestrator.New(orchestrator.WithStore(opts.Store))
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return opts
}

// WithStore serves templates from store instead of the embedded defaults.
func WithStore(store *template.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

// WithOrchestrator sets the pipeline behind POST /v1/generate.
func WithOrchestrator(orch *orchestrator.Orchestrator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Orchestrator = orch
	}
}

// WithLogger sets the request logger. A nil logger keeps the discard default.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithMaxBodyBytes caps request bodies. Larger bodies are answered with 413;
// a limit of zero or less keeps DefaultMaxBodyBytes.
func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

// WithoutValidation skips OpenAPI request validation. Handlers still reject
// malformed bodies.
func WithoutValidation() OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SkipValidation = true
	}
}
