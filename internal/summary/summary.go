// Package summary handles display of scan results and statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/scanner"
	"github.com/bethropolis/todo-scan/internal/textutil"
)

// pathColumn is the widest a skipped path is shown.
const pathColumn = 50

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Results is what a finished run reports.
type Results struct {
	Files     int
	Findings  []extract.Finding
	Truncated bool
	Duration  time.Duration
}

// FormatCounts renders per-kind counts in canonical order, omitting zeros,
// e.g. "TODO=3 FIXME=1".
func FormatCounts(counts map[extract.Kind]int) string {
	var parts []string
	for _, k := range extract.Kinds() {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// DisplayResults shows the end results of a scan operation
func DisplayResults(logger Logger, res Results, quiet bool) {
	if res.Truncated {
		logger.Warn("File limit reached; results cover only the first %d files.", res.Files)
	}
	if quiet {
		return
	}
	logger.Info("Found %d annotations in %d files (%s).",
		len(res.Findings), res.Files, FormatCounts(extract.Stats(res.Findings)))
	logger.Info("Scan complete in %v.", res.Duration.Round(time.Millisecond))
}

// DisplaySkippedItems formats and prints information about skipped items
func DisplaySkippedItems(
	logger Logger,
	skippedItems []scanner.SkippedItem,
	output io.Writer,
	quiet bool,
) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	infoLog("--- Skipped Items (%d) ---", len(skippedItems))
	if len(skippedItems) > 0 {
		items := make([]scanner.SkippedItem, len(skippedItems))
		copy(items, skippedItems)
		sort.Slice(items, func(i, j int) bool {
			return items[i].Path < items[j].Path
		})
		for _, item := range items {
			typeStr := "FILE"
			if item.IsDir {
				typeStr = "DIR " // Add space for alignment
			}
			path := textutil.PadRight(textutil.Truncate(item.Path, pathColumn, "…"), pathColumn)
			fmt.Fprintf(output, "Skipped %s: %s [%s]\n", typeStr, path, item.Reason)
		}
	} else {
		infoLog("No items were skipped.")
	}
	infoLog("--- End Skipped Items ---")
}
