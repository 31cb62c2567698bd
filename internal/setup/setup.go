// Package setup provides initialization and configuration functions
package setup

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bethropolis/todo-scan/internal/config"
	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/fileutil"
	"github.com/bethropolis/todo-scan/internal/ignore"
	"github.com/bethropolis/todo-scan/internal/scanner"
	"github.com/bethropolis/todo-scan/internal/utils"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// Options is everything a run needs besides the root.
type Options struct {
	Scan    []scanner.Option
	Extract []extract.Option
}

// Configure turns cfg into scanner and extractor options. progressOut
// receives the progress line when cfg.ShowProgress is set.
func Configure(
	ctx context.Context,
	cfg *config.Config,
	log utils.Logger,
	infoLog InfoLogger,
	progressOut io.Writer,
) (*Options, error) {
	log = utils.OrNoop(log)
	if infoLog == nil {
		infoLog = func(string, ...interface{}) {}
	}

	kinds, err := cfg.ParsedKinds()
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}

	// --- Ignore rules ---
	patterns := cfg.IgnoreList()
	if len(patterns) > 0 {
		infoLog("Using custom ignore patterns: %v", patterns)
	}
	if own := outputRules(cfg.RootDir, cfg.OutputFile); len(own) > 0 {
		log.Debug("Excluding the report file from the scan: %v", own)
		patterns = append(patterns, own...)
	}
	if cfg.IgnoreHidden {
		infoLog("Ignoring hidden files/directories (starting with '.').")
	}

	matcher, err := ignore.NewFromConfig(ignore.Config{
		RootDir:      cfg.RootDir,
		IgnoreHidden: cfg.IgnoreHidden,
		IgnoreGit:    cfg.IgnoreGit,
		CustomRules:  patterns,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	log.Debug("Ignore rules for %s: %d", matcher.RootDir(), matcher.Rules().Len())

	opts := &Options{}
	opts.Scan = append(opts.Scan,
		scanner.WithLogger(log),
		scanner.WithContext(ctx),
		scanner.WithMatcher(matcher),
		scanner.WithMaxDepth(cfg.MaxDepth),
		scanner.WithMaxFiles(cfg.MaxFiles),
	)

	// --- Extension filter ---
	if exts := cfg.ExtensionList(); len(exts) > 0 {
		shown := make([]string, len(exts))
		for i, ext := range exts {
			shown[i] = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
		}
		infoLog("Filtering enabled. Only including extensions: %s", strings.Join(shown, ", "))
		opts.Scan = append(opts.Scan, scanner.WithExtensions(exts))
	} else {
		log.Debug("No extension filtering (including all file types).")
	}

	// --- Progress ---
	if cfg.ShowProgress && progressOut != nil {
		log.Debug("Progress display enabled")
		opts.Scan = append(opts.Scan, scanner.WithProgress(func(stats scanner.ProgressStats) {
			// Carriage return overwrites the previous status line
			fmt.Fprintf(progressOut, "\rScanning... | Files: %d/%d | Dirs: %d (%d pruned)",
				stats.KeptFiles, stats.TotalFiles, stats.TotalDirs, stats.SkippedDirs)
		}))
	}

	// --- Extraction ---
	opts.Extract = append(opts.Extract,
		extract.WithLogger(log),
		extract.WithContext(ctx),
		extract.WithWorkers(cfg.Workers),
		extract.WithMaxFileSize(cfg.MaxFileSizeBytes()),
	)
	if cfg.MaxFileSizeMB > 0 {
		log.Debug("Ignoring files larger than %d MB.", cfg.MaxFileSizeMB)
	}
	if len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		infoLog("Only reporting: %s", strings.Join(names, ", "))
		opts.Extract = append(opts.Extract, extract.WithKinds(kinds...))
	}

	return opts, nil
}

// outputRules returns anchored rules for the report file and its lock when
// they live under root, so a later run does not scan its own output.
func outputRules(root, output string) []string {
	if output == "" {
		return nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{ignore.Literal(rel), ignore.Literal(rel + fileutil.LockSuffix)}
}
