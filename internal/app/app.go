package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bethropolis/todo-scan/internal/config"
	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/fileutil"
	"github.com/bethropolis/todo-scan/internal/logger"
	"github.com/bethropolis/todo-scan/internal/printer"
	"github.com/bethropolis/todo-scan/internal/scanner"
	"github.com/bethropolis/todo-scan/internal/setup"
	"github.com/bethropolis/todo-scan/internal/summary"
)

// App encapsulates the main application functionality
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	Output io.Writer
	Errors io.Writer
}

// New creates a new App instance writing findings to stdout and logs,
// progress and skipped items to stderr.
func New(cfg *config.Config, stdout, stderr io.Writer) *App {
	log := logger.New(stderr, false, cfg.UseColors).WithLevel(cfg.EffectiveLogLevel())
	return &App{
		cfg:    cfg,
		log:    log,
		Output: stdout,
		Errors: stderr,
	}
}

// Run scans the configured root, extracts annotations and renders them.
func (a *App) Run(ctx context.Context) error {
	startTime := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc
	if timeout := time.Duration(a.cfg.Timeout); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	a.log.Debug("Color output: %v", a.cfg.UseColors)
	a.log.Debug("Directory: %s", a.cfg.RootDir)
	a.log.Debug("Workers: %d, max file size: %d MB", a.cfg.Workers, a.cfg.MaxFileSizeMB)
	a.log.Debug("Ignore settings: hidden=%v, git=%v", a.cfg.IgnoreHidden, a.cfg.IgnoreGit)

	opts, err := setup.Configure(ctx, a.cfg, a.log, a.log.Info, a.Errors)
	if err != nil {
		return err
	}

	// --- Scan ---
	a.log.Info("Scanning directory: %s", a.cfg.RootDir)
	res, err := scanner.Walk(a.cfg.RootDir, opts.Scan...)
	if a.cfg.ShowProgress {
		fmt.Fprintln(a.Errors)
	}
	if err != nil {
		return a.wrapInterrupted(ctx, err)
	}

	// --- Extract ---
	findings := extract.Extract(res.Files, opts.Extract...)
	if ctx.Err() != nil {
		return a.wrapInterrupted(ctx, ctx.Err())
	}

	// --- Render ---
	if err := a.render(res.Root, findings); err != nil {
		return err
	}

	summary.DisplayResults(a.log, summary.Results{
		Files:     len(res.Files),
		Findings:  findings,
		Truncated: res.Truncated,
		Duration:  time.Since(startTime),
	}, a.cfg.Quiet)

	if a.cfg.ShowSkipped {
		summary.DisplaySkippedItems(a.log, res.Skipped, a.Errors, a.cfg.Quiet)
	}
	return nil
}

func (a *App) render(root string, findings []extract.Finding) error {
	p := printer.New().
		WithFormat(a.cfg.Format).
		WithRoot(root).
		WithColors(false)

	if a.cfg.OutputFile != "" {
		var buf bytes.Buffer
		if err := p.WithOutput(&buf).Print(findings); err != nil {
			return err
		}
		if err := fileutil.AtomicWrite(a.cfg.OutputFile, buf.Bytes()); err != nil {
			return err
		}
		a.log.Info("Wrote %d findings to %s", p.GetCount(), a.cfg.OutputFile)
		return nil
	}

	if f, ok := a.Output.(*os.File); ok && a.cfg.Format == printer.FormatText {
		p.WithColors(a.cfg.UseColors && config.DetectColor(f)).
			WithWidth(printer.TerminalWidth(f))
	}
	return p.WithOutput(a.Output).Print(findings)
}

func (a *App) wrapInterrupted(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timeout of %v reached: %w", time.Duration(a.cfg.Timeout), err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	return err
}
