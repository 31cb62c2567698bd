package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bethropolis/todo-scan/internal/ignore"
)

// Scan returns the absolute paths of every regular file under rootDir that
// is not excluded by the root ignore rules. Only a missing or non-directory
// root is an error; unreadable directories are skipped.
func Scan(rootDir string, opts ...Option) ([]string, error) {
	res, err := Walk(rootDir, opts...)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Walk traverses the directory tree starting from rootDir depth first,
// pruning excluded directories. It returns the retained files along with
// the skipped items and counters.
func Walk(rootDir string, opts ...Option) (*Result, error) {
	startTime := time.Now()

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := options.Logger

	absRootDir, err := validateRoot(rootDir)
	if err != nil {
		return nil, err
	}

	matcher := options.Matcher
	if matcher == nil {
		ignoreOpts := append([]ignore.Option{ignore.WithLogger(log)}, options.IgnoreOptions...)
		matcher, err = ignore.New(absRootDir, ignoreOpts...)
		if err != nil {
			return nil, fmt.Errorf("scanner: %w", err)
		}
	} else if matcher.RootDir() != absRootDir {
		log.Debug("Scanner: Using ignore rules loaded for %q", matcher.RootDir())
	}

	tracker := NewSkippedTracker(64)
	result := &Result{Root: absRootDir, Files: []string{}}

	var stats struct {
		totalFiles   atomic.Int64
		keptFiles    atomic.Int64
		skippedFiles atomic.Int64
		totalDirs    atomic.Int64
		skippedDirs  atomic.Int64
	}
	snapshot := func() Stats {
		return Stats{
			TotalFiles:   stats.totalFiles.Load(),
			KeptFiles:    stats.keptFiles.Load(),
			SkippedFiles: stats.skippedFiles.Load(),
			TotalDirs:    stats.totalDirs.Load(),
			SkippedDirs:  stats.skippedDirs.Load(),
		}
	}

	if options.ProgressFn != nil {
		progressCtx, progressCancel := context.WithCancel(context.Background())
		progressDone := make(chan struct{})
		// The reporter must not write after Walk returns.
		defer func() {
			progressCancel()
			<-progressDone
		}()

		go func() {
			defer close(progressDone)
			ticker := time.NewTicker(300 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-progressCtx.Done():
					return
				case <-ticker.C:
					s := snapshot()
					options.ProgressFn(ProgressStats{
						TotalFiles:  s.TotalFiles,
						KeptFiles:   s.KeptFiles,
						TotalDirs:   s.TotalDirs,
						SkippedDirs: s.SkippedDirs,
					})
				}
			}
		}()
	}

	log.Debug("scanner.Walk started. Root: %s, MaxDepth: %d, MaxFiles: %d",
		absRootDir, options.MaxDepth, options.MaxFiles)

	walkErr := filepath.WalkDir(absRootDir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-options.Context.Done():
			return options.Context.Err()
		default:
		}

		isDir := d != nil && d.IsDir()

		if path == absRootDir {
			if err != nil {
				log.Warn("Scanner: Could not list root %q: %v", absRootDir, err)
			}
			return nil
		}

		relativePath, relErr := filepath.Rel(absRootDir, path)
		if relErr != nil {
			log.Error("Scanner Error: Path calculation failed for %q: %v", path, relErr)
			tracker.Track(path, ReasonSkippedPathError, isDir)
			if isDir {
				stats.skippedDirs.Add(1)
				return filepath.SkipDir
			}
			stats.skippedFiles.Add(1)
			return nil
		}

		// A directory that cannot be listed is reported a second time with err set.
		if err != nil {
			reason := ReasonSkippedWalkError
			if errors.Is(err, fs.ErrPermission) {
				reason = ReasonSkippedPermError
			}
			log.Warn("Scanner: Skipping %q: %v", relativePath, err)
			tracker.Track(relativePath, reason, isDir)
			if isDir {
				stats.skippedDirs.Add(1)
				return filepath.SkipDir
			}
			stats.skippedFiles.Add(1)
			return nil
		}

		if isDir {
			stats.totalDirs.Add(1)
			if matcher.ShouldIgnore(relativePath, true) {
				log.Debug("Scanner: Pruned directory %q", relativePath)
				tracker.Track(relativePath, ReasonIgnoredRule, true)
				stats.skippedDirs.Add(1)
				return filepath.SkipDir
			}
			if options.MaxDepth > 0 && depthOf(relativePath) >= options.MaxDepth {
				log.Debug("Scanner: Not descending into %q (max depth %d)", relativePath, options.MaxDepth)
				tracker.Track(relativePath, ReasonSkippedDepth, true)
				stats.skippedDirs.Add(1)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			log.Debug("Scanner: Skipping non-regular entry %q (%s)", relativePath, d.Type())
			tracker.Track(relativePath, ReasonSkippedNotRegular, false)
			stats.skippedFiles.Add(1)
			return nil
		}

		stats.totalFiles.Add(1)

		if matcher.ShouldIgnore(relativePath, false) {
			tracker.Track(relativePath, ReasonIgnoredRule, false)
			stats.skippedFiles.Add(1)
			return nil
		}

		if len(options.ExtensionMap) > 0 {
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if _, allowed := options.ExtensionMap[ext]; !allowed {
				tracker.Track(relativePath, ReasonFilteredExtension, false)
				stats.skippedFiles.Add(1)
				return nil
			}
		}

		if options.MaxFiles > 0 && len(result.Files) >= options.MaxFiles {
			log.Warn("Scanner: Reached the limit of %d files, stopping early", options.MaxFiles)
			result.Truncated = true
			return filepath.SkipAll
		}

		result.Files = append(result.Files, path)
		stats.keptFiles.Add(1)
		return nil
	})

	result.Skipped = tracker.Items()
	result.Stats = snapshot()
	result.Duration = time.Since(startTime)

	log.Debug("Scanner: Walk finished in %s (%d files kept)", result.Duration, len(result.Files))

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return result, walkErr
		}
		return result, fmt.Errorf("scanner: walk %s: %w", absRootDir, walkErr)
	}
	return result, nil
}

// validateRoot resolves rootDir and checks that it is an existing directory.
func validateRoot(rootDir string) (string, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("scanner: invalid root path '%s': %w", rootDir, err)
	}

	info, err := os.Stat(absRootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("scanner: %w: %s", ErrRootNotFound, absRootDir)
		}
		return "", fmt.Errorf("scanner: could not access root '%s': %w", absRootDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scanner: %w: %s", ErrNotDirectory, absRootDir)
	}
	return absRootDir, nil
}

func depthOf(relativePath string) int {
	return strings.Count(filepath.ToSlash(relativePath), "/") + 1
}
