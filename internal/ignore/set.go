package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Set is an ordered, read-only list of compiled rules. The zero value and a
// nil *Set exclude nothing.
type Set struct {
	rules []Rule
}

// Compile builds a Set from ignore-file lines, skipping blanks and comments.
func Compile(lines []string) *Set {
	s := &Set{}
	for _, line := range lines {
		if r, ok := ParseRule(line); ok {
			s.rules = append(s.rules, r)
		}
	}
	return s
}

// CompileString splits content on line feeds and compiles it.
func CompileString(content string) *Set {
	return Compile(strings.Split(content, "\n"))
}

// Load reads and compiles an ignore file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ignore: read %s: %w", path, err)
	}
	return CompileString(string(data)), nil
}

// Append returns a new Set with extra lines compiled after the existing
// rules, so they take precedence.
func (s *Set) Append(lines ...string) *Set {
	out := &Set{}
	if s != nil {
		out.rules = append(out.rules, s.rules...)
	}
	out.rules = append(out.rules, Compile(lines).rules...)
	return out
}

// Len returns the number of compiled rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns a copy of the compiled rules in file order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Match applies the rules to relativePath alone: the last rule that matches
// decides, a negated rule re-including the path. Ancestors are not checked;
// callers that walk top-down prune excluded directories themselves.
func (s *Set) Match(relativePath string, isDir bool) bool {
	if s.Len() == 0 {
		return false
	}
	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return false
	}
	return s.decide(parts, isDir)
}

// Excludes reports whether relativePath is excluded, either by its own match
// or because one of its parent directories is. A path under an excluded
// directory cannot be re-included by any negated rule.
func (s *Set) Excludes(relativePath string, isDir bool) bool {
	if s.Len() == 0 {
		return false
	}
	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return false
	}
	for i := 1; i < len(parts); i++ {
		if s.decide(parts[:i], true) {
			return true
		}
	}
	return s.decide(parts, isDir)
}

func (s *Set) decide(parts []string, isDir bool) bool {
	excluded := false
	for _, r := range s.rules {
		if r.DirOnly && !isDir {
			continue
		}
		if r.Matches(parts) {
			excluded = !r.Negated
		}
	}
	return excluded
}

// splitPath normalizes a root-relative path into its components.
func splitPath(p string) []string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return nil
	}
	raw := strings.Split(p, "/")
	parts := raw[:0]
	for _, part := range raw {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}
