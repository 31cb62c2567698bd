// Package scanner enumerates the files of a source tree that survive the
// root ignore rules.
package scanner

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("root directory not found")
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("root is not a directory")
)

// SkippedReason clarifies why a file/directory was not returned.
type SkippedReason string

const (
	ReasonIgnoredRule       SkippedReason = "Ignored (Gitignore/Custom Rule)"
	ReasonFilteredExtension SkippedReason = "Filtered (Extension Mismatch)"
	ReasonSkippedNotRegular SkippedReason = "Skipped (Not a Regular File)"
	ReasonSkippedPermError  SkippedReason = "Skipped (Permission Error)"
	ReasonSkippedWalkError  SkippedReason = "Skipped (Walk Error)"
	ReasonSkippedPathError  SkippedReason = "Skipped (Path Calculation Error)"
	ReasonSkippedDepth      SkippedReason = "Skipped (Max Depth Reached)"
)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
}

// SkippedTracker collects skipped items; safe for concurrent use.
type SkippedTracker struct {
	items []SkippedItem
	mutex sync.Mutex
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns a copy of the tracked skipped items
func (st *SkippedTracker) Items() []SkippedItem {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	out := make([]SkippedItem, len(st.items))
	copy(out, st.items)
	return out
}

// Stats counts what a walk saw.
type Stats struct {
	TotalFiles   int64 `json:"total_files"`
	KeptFiles    int64 `json:"kept_files"`
	SkippedFiles int64 `json:"skipped_files"`
	TotalDirs    int64 `json:"total_dirs"`
	SkippedDirs  int64 `json:"skipped_dirs"`
}

// Result is the outcome of Walk.
type Result struct {
	// Root is the absolute scan root.
	Root string
	// Files holds the absolute paths of retained regular files in walk order.
	Files   []string
	Skipped []SkippedItem
	Stats   Stats
	// Truncated is set when the MaxFiles guard stopped the walk early.
	Truncated bool
	Duration  time.Duration
}
