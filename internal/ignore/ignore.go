// Package ignore provides file/directory pattern matching for exclusion
//
// Ignore files are compiled into an explicit, ordered list of rules (Set).
// The last rule that matches a path decides whether it is excluded, negated
// rules re-include, directory-only rules apply to directories, and anything
// under an excluded directory stays excluded. IgnoreMatcher layers the hidden
// and .git shortcuts on top and is configured with functional options.
package ignore

// NewFromConfig creates an IgnoreMatcher from a Config struct
func NewFromConfig(cfg Config) (*IgnoreMatcher, error) {
	options := []Option{
		WithHiddenIgnore(cfg.IgnoreHidden),
		WithGitIgnore(cfg.IgnoreGit),
		WithDisabled(cfg.Disabled),
		WithIgnoreFile(cfg.IgnoreFile),
	}

	if len(cfg.CustomRules) > 0 {
		options = append(options, WithCustomRules(cfg.CustomRules))
	}

	if cfg.Logger != nil {
		options = append(options, WithLogger(cfg.Logger))
	}

	return New(cfg.RootDir, options...)
}

// CreateDisabledMatcher returns a matcher that ignores nothing
func CreateDisabledMatcher() *IgnoreMatcher {
	matcher, _ := New(".", WithDisabled(true))
	return matcher
}
