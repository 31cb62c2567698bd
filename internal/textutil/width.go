// Package textutil measures and fits text to terminal columns.
package textutil

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w += runewidth.StringWidth(g.Str())
	}
	return w
}

// Truncate shortens s to at most w cells, ending with ellipsis when it had
// to cut. Grapheme clusters are never split.
func Truncate(s string, w int, ellipsis string) string {
	if w <= 0 {
		return ""
	}
	if Width(s) <= w {
		return s
	}
	ellW := Width(ellipsis)
	if ellW > w {
		ellipsis, ellW = "", 0
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := runewidth.StringWidth(g.Str())
		if used+cw+ellW > w {
			break
		}
		b.WriteString(g.Str())
		used += cw
	}
	return b.String() + ellipsis
}

// PadRight appends spaces until s is w cells wide.
func PadRight(s string, w int) string {
	if pad := w - Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// Sanitize replaces control characters (tabs, escapes) with spaces so a
// finding's text cannot move the cursor or inject colors.
func Sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
