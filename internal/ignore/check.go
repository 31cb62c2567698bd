package ignore

import (
	"strings"
)

// ShouldIgnore checks if a file or directory should be ignored. Parents are
// assumed to have been checked already, as they are during a top-down walk;
// use Excludes for a standalone path.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	return m.check(relativePath, isDir, false)
}

// Excludes checks relativePath including all of its parent directories.
func (m *IgnoreMatcher) Excludes(relativePath string, isDir bool) bool {
	return m.check(relativePath, isDir, true)
}

func (m *IgnoreMatcher) check(relativePath string, isDir, withParents bool) bool {
	if m == nil || m.disabled {
		return false
	}

	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return false // Never ignore the root itself
	}

	if m.ignoreHidden && hasHiddenPart(parts) {
		m.logger.Debug("ignore.ShouldIgnore: Ignored %q (hidden rule)", relativePath)
		return true
	}

	if m.ignoreGit && isPathInGitDir(parts, isDir) {
		m.logger.Debug("ignore.ShouldIgnore: Ignored %q (.git rule)", relativePath)
		return true
	}

	var ignored bool
	if withParents {
		ignored = m.rules.Excludes(relativePath, isDir)
	} else {
		ignored = m.rules.Match(relativePath, isDir)
	}
	if ignored {
		m.logger.Debug("ignore.ShouldIgnore: Path %q ignored by rules", relativePath)
		return true
	}
	return false
}

func hasHiddenPart(parts []string) bool {
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// isPathInGitDir checks if a path is inside a .git directory
func isPathInGitDir(parts []string, isDir bool) bool {
	for i, part := range parts {
		if part == ".git" {
			// If .git is a directory component (not just a prefix of a filename)
			if isDir || i < len(parts)-1 {
				return true
			}
		}
	}
	return false
}
