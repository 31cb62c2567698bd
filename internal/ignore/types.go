// Package ignore provides file/directory pattern matching for exclusion
package ignore

import (
	"github.com/bethropolis/todo-scan/internal/utils"
)

// DefaultIgnoreFile is the ignore file read from the scan root.
const DefaultIgnoreFile = ".gitignore"

// IgnoreMatcher determines whether a file or directory should be ignored
type IgnoreMatcher struct {
	// Compiled rules from the root ignore file followed by custom rules
	rules *Set

	// Configuration flags
	rootDir        string
	ignoreFile     string
	ignoreHidden   bool
	ignoreGit      bool
	customPatterns []string
	logger         utils.Logger
	disabled       bool
}

// Config holds configuration options for the ignore matcher
type Config struct {
	RootDir      string
	IgnoreFile   string
	IgnoreHidden bool
	IgnoreGit    bool
	CustomRules  []string
	Logger       utils.Logger
	Disabled     bool
}
