// Package extract finds annotation comments (TODO, FIXME and friends) in
// source files.
package extract

import (
	"fmt"
	"strings"
)

// Kind is one of the fixed annotation tags.
type Kind string

const (
	KindTODO  Kind = "TODO"
	KindFIXME Kind = "FIXME"
	KindHACK  Kind = "HACK"
	KindXXX   Kind = "XXX"
	KindNOTE  Kind = "NOTE"
	KindBUG   Kind = "BUG"
)

var allKinds = []Kind{KindTODO, KindFIXME, KindHACK, KindXXX, KindNOTE, KindBUG}

// Kinds returns the tag vocabulary in its canonical order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind accepts a tag name in any case.
func ParseKind(s string) (Kind, error) {
	want := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range allKinds {
		if k == want {
			return k, nil
		}
	}
	return "", fmt.Errorf("extract: unknown annotation kind %q", s)
}

// Finding is a single annotation found in a file.
type Finding struct {
	File string `json:"file"`
	Line int    `json:"line"` // 1-based
	Kind Kind   `json:"type"`
	Text string `json:"text"`
}
