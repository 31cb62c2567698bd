package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bethropolis/todo-scan/internal/utils"
)

// New creates and initializes an IgnoreMatcher
func New(rootDir string, opts ...Option) (*IgnoreMatcher, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for rootDir '%s': %w", rootDir, err)
	}

	matcher := &IgnoreMatcher{
		rootDir:    absRootDir,
		ignoreFile: DefaultIgnoreFile,
		logger:     utils.NoopLogger{},
	}

	for _, opt := range opts {
		opt(matcher)
	}

	matcher.init()
	return matcher, nil
}

// init loads the root ignore file. Only the root file is consulted; ignore
// files in subdirectories are not read.
func (m *IgnoreMatcher) init() {
	m.logger.Debug("ignore.New: Initializing for root: %s", m.rootDir)
	m.logger.Debug("ignore.New: ignoreHidden=%v ignoreGit=%v", m.ignoreHidden, m.ignoreGit)

	if m.disabled {
		m.logger.Debug("ignore.New: Matcher is disabled, skipping ignore file")
		m.rules = &Set{}
		return
	}

	path := filepath.Join(m.rootDir, m.ignoreFile)
	set, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("ignore.New: No %s found in '%s'", m.ignoreFile, m.rootDir)
		} else {
			m.logger.Warn("ignore.New: Could not read %s: %v. Continuing without it.", path, err)
		}
		set = &Set{}
	} else {
		m.logger.Debug("ignore.New: Loaded %d rules from %s", set.Len(), path)
	}

	if len(m.customPatterns) > 0 {
		set = set.Append(m.customPatterns...)
		m.logger.Debug("ignore.New: Added custom patterns %v", m.customPatterns)
	}
	m.rules = set
}

// Rules returns the compiled rule set in effect.
func (m *IgnoreMatcher) Rules() *Set {
	if m == nil {
		return nil
	}
	return m.rules
}

// RootDir returns the absolute scan root the matcher was built for.
func (m *IgnoreMatcher) RootDir() string {
	return m.rootDir
}
