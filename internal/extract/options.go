package extract

import (
	"context"

	"github.com/bethropolis/todo-scan/internal/utils"
)

// DefaultMaxFileSize is the largest file ExtractFile reads by default.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Options configures Extract.
type Options struct {
	Logger      utils.Logger
	Workers     int   // <= 1 reads files sequentially
	MaxFileSize int64 // 0 = unlimited
	Kinds       map[Kind]struct{}
	Context     context.Context
}

// Option is a functional option for configuring Options
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Logger:      utils.NoopLogger{},
		Workers:     1,
		MaxFileSize: DefaultMaxFileSize,
		Context:     context.Background(),
	}
}

// WithLogger sets a custom logger
func WithLogger(logger utils.Logger) Option {
	return func(o *Options) {
		o.Logger = utils.OrNoop(logger)
	}
}

// WithWorkers sets how many files are read concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			n = 1
		}
		o.Workers = n
	}
}

// WithMaxFileSize skips files larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.MaxFileSize = n
	}
}

// WithKinds keeps only findings of the given kinds. An empty list keeps all.
func WithKinds(kinds ...Kind) Option {
	return func(o *Options) {
		if len(kinds) == 0 {
			o.Kinds = nil
			return
		}
		o.Kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			o.Kinds[k] = struct{}{}
		}
	}
}

// WithContext stops extraction early once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Context = ctx
		}
	}
}
