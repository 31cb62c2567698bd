package ignore

import (
	"strings"

	"github.com/danwakefield/fnmatch"
)

// doubleStar is the segment that spans any number of directories.
const doubleStar = "**"

// Rule is one compiled line of an ignore file.
type Rule struct {
	// Pattern is the line as it appeared in the ignore file.
	Pattern string

	Negated  bool // line began with '!'
	DirOnly  bool // line ended with '/'
	Anchored bool // matches relative to the root only

	segments []segment
}

// segment is a compiled glob for a single path component.
type segment struct {
	glob    string
	literal bool // no glob metacharacters, compare directly
	any     bool // the "**" segment
}

func (s segment) match(name string) bool {
	if s.literal {
		return s.glob == name
	}
	return fnmatch.Match(s.glob, name, fnmatch.FNM_PATHNAME)
}

// ParseRule compiles a single ignore-file line. The boolean result is false
// for blank lines, comments and lines that reduce to nothing.
func ParseRule(line string) (Rule, bool) {
	raw := strings.TrimSuffix(line, "\r")
	text := trimTrailingSpace(raw)
	if text == "" || strings.HasPrefix(text, "#") {
		return Rule{}, false
	}

	r := Rule{Pattern: raw}

	switch {
	case strings.HasPrefix(text, `\#`), strings.HasPrefix(text, `\!`):
		text = text[1:]
	case strings.HasPrefix(text, "!"):
		r.Negated = true
		text = text[1:]
	}

	if strings.HasSuffix(text, "/") && !strings.HasSuffix(text, `\/`) {
		r.DirOnly = true
		text = strings.TrimRight(text, "/")
	}

	if strings.HasPrefix(text, "/") {
		r.Anchored = true
		text = strings.TrimLeft(text, "/")
	} else if strings.Contains(text, "/") {
		// git anchors any pattern with an inner slash
		r.Anchored = true
	}

	if text == "" {
		return Rule{}, false
	}

	for _, part := range strings.Split(text, "/") {
		if part == "" {
			// collapse "a//b"
			continue
		}
		r.segments = append(r.segments, compileSegment(part))
	}
	if len(r.segments) == 0 {
		return Rule{}, false
	}

	// "**/name" behaves like an unanchored "name"
	if len(r.segments) == 2 && r.segments[0].any && !r.segments[1].any {
		r.Anchored = false
		r.segments = r.segments[1:]
	}

	return r, true
}

func compileSegment(part string) segment {
	if part == doubleStar {
		return segment{glob: part, any: true}
	}
	return segment{glob: part, literal: !strings.ContainsAny(part, `*?[\`)}
}

// Literal returns an anchored rule matching exactly the slash separated
// relativePath, with glob metacharacters escaped.
func Literal(relativePath string) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, r := range strings.TrimLeft(relativePath, "/") {
		switch r {
		case '\\', '*', '?', '[':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if n := len(out); n > 1 && (out[n-1] == ' ' || out[n-1] == '\t') {
		out = out[:n-1] + "\\" + out[n-1:]
	}
	return out
}

// trimTrailingSpace removes trailing spaces and tabs unless the last one is
// escaped with a backslash.
func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		if end >= 2 && s[end-2] == '\\' {
			break
		}
		end--
	}
	return s[:end]
}

// Matches reports whether the rule's glob matches the given path segments.
// It does not consider DirOnly or Negated; Set applies those.
func (r Rule) Matches(parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	if !r.Anchored && len(r.segments) == 1 {
		return r.segments[0].match(parts[len(parts)-1])
	}
	return matchSegments(r.segments, parts)
}

func matchSegments(pattern []segment, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0].any {
		rest := pattern[1:]
		if len(rest) == 0 {
			// trailing "/**" needs at least one component below
			return len(parts) > 0
		}
		for i := 0; i <= len(parts); i++ {
			if matchSegments(rest, parts[i:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 || !pattern[0].match(parts[0]) {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}

// String returns the original pattern text.
func (r Rule) String() string {
	return r.Pattern
}
