package scanner

import (
	"context"
	"strings"

	"github.com/bethropolis/todo-scan/internal/ignore"
	"github.com/bethropolis/todo-scan/internal/utils"
)

// ScanOptions configures the behavior of Walk and Scan
type ScanOptions struct {
	Logger        utils.Logger
	Matcher       *ignore.IgnoreMatcher
	IgnoreOptions []ignore.Option
	ExtensionMap  map[string]struct{}
	Context       context.Context
	ProgressFn    ProgressCallback
	MaxDepth      int // 0 = unlimited
	MaxFiles      int // 0 = unlimited
}

// ProgressCallback is a function that receives progress updates
type ProgressCallback func(stats ProgressStats)

// ProgressStats holds statistics about the walk progress
type ProgressStats struct {
	TotalFiles  int64 // Total regular files seen
	KeptFiles   int64 // Files that passed all filters
	TotalDirs   int64 // Total directories seen
	SkippedDirs int64 // Directories pruned or unreadable
}

// defaultOptions returns the default scan options
func defaultOptions() ScanOptions {
	return ScanOptions{
		Logger:  utils.NoopLogger{},
		Context: context.Background(),
	}
}

// Option is a functional option for configuring ScanOptions
type Option func(*ScanOptions)

// WithLogger sets a custom logger for the scanner
func WithLogger(logger utils.Logger) Option {
	return func(opts *ScanOptions) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithMatcher uses a prebuilt ignore matcher instead of loading the root
// ignore file.
func WithMatcher(m *ignore.IgnoreMatcher) Option {
	return func(opts *ScanOptions) {
		opts.Matcher = m
	}
}

// WithIgnoreOptions forwards options to the ignore matcher built for the root.
func WithIgnoreOptions(ignoreOpts ...ignore.Option) Option {
	return func(opts *ScanOptions) {
		opts.IgnoreOptions = append(opts.IgnoreOptions, ignoreOpts...)
	}
}

// WithExtensions sets the file extensions to include (without the dot)
func WithExtensions(extensions []string) Option {
	return func(opts *ScanOptions) {
		if len(extensions) == 0 {
			opts.ExtensionMap = nil
			return
		}
		extMap := make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			clean := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if clean != "" {
				extMap[clean] = struct{}{}
			}
		}
		opts.ExtensionMap = extMap
	}
}

// WithContext sets the context for cancellation
func WithContext(ctx context.Context) Option {
	return func(opts *ScanOptions) {
		if ctx != nil {
			opts.Context = ctx
		}
	}
}

// WithProgress adds a progress callback function
func WithProgress(fn ProgressCallback) Option {
	return func(o *ScanOptions) {
		o.ProgressFn = fn
	}
}

// WithMaxDepth stops descending below the given number of directory levels.
func WithMaxDepth(depth int) Option {
	return func(o *ScanOptions) {
		if depth >= 0 {
			o.MaxDepth = depth
		}
	}
}

// WithMaxFiles stops the walk once this many files have been retained.
func WithMaxFiles(n int) Option {
	return func(o *ScanOptions) {
		if n >= 0 {
			o.MaxFiles = n
		}
	}
}
