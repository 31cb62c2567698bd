package extract

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/bethropolis/todo-scan/internal/scanner"
)

var (
	// ErrTooLarge is returned by ExtractFile for files above the size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNotText is returned by ExtractFile for content that is not UTF-8.
	ErrNotText = errors.New("file is not valid UTF-8")
)

var tagPattern = regexp.MustCompile(`(TODO|FIXME|HACK|XXX|NOTE|BUG):\s*(.*)`)

// ParseLines returns the findings in content, one at most per line.
func ParseLines(file, content string) []Finding {
	var out []Finding
	for i, line := range strings.Split(content, "\n") {
		m := tagPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Finding{
			File: file,
			Line: i + 1,
			Kind: Kind(m[1]),
			Text: strings.TrimSpace(m[2]),
		})
	}
	return out
}

// ExtractFile reads path and parses its lines. maxSize <= 0 disables the
// size check.
func ExtractFile(path string, maxSize int64) ([]Finding, error) {
	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		if info.Size() > maxSize {
			return nil, fmt.Errorf("extract: %s (%d bytes): %w", path, info.Size(), ErrTooLarge)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("extract: %s: %w", path, ErrNotText)
	}
	return ParseLines(path, string(data)), nil
}

// Extract collects findings from paths in file-then-line order. Files that
// cannot be read are skipped. The order does not depend on the worker count.
func Extract(paths []string, opts ...Option) []Finding {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := options.Logger
	ctx := options.Context

	slots := make([][]Finding, len(paths))
	readOne := func(i int) {
		found, err := ExtractFile(paths[i], options.MaxFileSize)
		if err != nil {
			log.Debug("extract: skipping %s: %v", paths[i], err)
			return
		}
		slots[i] = filterKinds(found, options.Kinds)
	}

	if options.Workers <= 1 || len(paths) < 2 {
		for i := range paths {
			if ctx.Err() != nil {
				break
			}
			readOne(i)
		}
	} else {
		sem := semaphore.NewWeighted(int64(options.Workers))
		var wg sync.WaitGroup
		for i := range paths {
			if ctx.Err() != nil {
				break
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer sem.Release(1)
				readOne(i)
			}(i)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		log.Warn("extract: stopped early: %v", err)
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	out := make([]Finding, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}
	log.Debug("extract: %d findings in %d files", len(out), len(paths))
	return out
}

func filterKinds(found []Finding, kinds map[Kind]struct{}) []Finding {
	if len(kinds) == 0 {
		return found
	}
	kept := found[:0]
	for _, f := range found {
		if _, ok := kinds[f.Kind]; ok {
			kept = append(kept, f)
		}
	}
	return kept
}

// FindTodos scans the current working directory with default scanner
// options and extracts findings from every retained file.
func FindTodos(opts ...Option) ([]Finding, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("extract: working directory: %w", err)
	}
	return FindTodosIn(cwd, nil, opts...)
}

// FindTodosIn scans root with scanOpts and extracts findings.
func FindTodosIn(root string, scanOpts []scanner.Option, opts ...Option) ([]Finding, error) {
	files, err := scanner.Scan(root, scanOpts...)
	if err != nil {
		return nil, err
	}
	return Extract(files, opts...), nil
}

// Stats counts findings per kind. Every kind is present, possibly with 0.
func Stats(findings []Finding) map[Kind]int {
	counts := make(map[Kind]int, len(allKinds))
	for _, k := range allKinds {
		counts[k] = 0
	}
	for _, f := range findings {
		counts[f.Kind]++
	}
	return counts
}
