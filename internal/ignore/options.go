package ignore

import "github.com/bethropolis/todo-scan/internal/utils"

// Option functions for configuration
type Option func(*IgnoreMatcher)

// WithHiddenIgnore skips every path with a dot-prefixed component.
func WithHiddenIgnore(ignore bool) Option {
	return func(m *IgnoreMatcher) {
		m.ignoreHidden = ignore
	}
}

// WithGitIgnore skips the .git directory.
func WithGitIgnore(ignore bool) Option {
	return func(m *IgnoreMatcher) {
		m.ignoreGit = ignore
	}
}

// WithCustomRules adds gitignore-syntax lines evaluated after the ignore
// file, so they override it.
func WithCustomRules(patterns []string) Option {
	return func(m *IgnoreMatcher) {
		m.customPatterns = append(m.customPatterns, patterns...)
	}
}

// WithIgnoreFile changes the name of the ignore file read from the root.
func WithIgnoreFile(name string) Option {
	return func(m *IgnoreMatcher) {
		if name != "" {
			m.ignoreFile = name
		}
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(m *IgnoreMatcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithDisabled(disabled bool) Option {
	return func(m *IgnoreMatcher) {
		m.disabled = disabled
	}
}
