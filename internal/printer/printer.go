// Package printer handles output formatting and display
package printer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/textutil"
)

// Format names understood by WithFormat.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatNDJSON   = "ndjson"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists every format Print accepts.
var Formats = []string{FormatText, FormatJSON, FormatNDJSON, FormatMarkdown, FormatCSV}

// minTextWidth is the narrowest text column worth truncating to.
const minTextWidth = 16

// Printer renders findings to the configured output destination
type Printer struct {
	output    io.Writer
	count     atomic.Int64
	useColors bool
	format    string
	root      string
	width     int // 0 = do not truncate
	now       func() time.Time
	palette   map[extract.Kind]*color.Color
	dim       *color.Color
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output:    os.Stdout,
		useColors: true,
		format:    FormatText,
		now:       time.Now,
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored output
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithFormat selects text, json, ndjson, markdown or csv.
func (p *Printer) WithFormat(format string) *Printer {
	p.format = format
	return p
}

// WithRoot makes file paths in human formats relative to root.
func (p *Printer) WithRoot(root string) *Printer {
	p.root = root
	return p
}

// WithWidth truncates text output to n columns; 0 disables truncation.
func (p *Printer) WithWidth(n int) *Printer {
	p.width = n
	return p
}

// TerminalWidth returns the column count of f, or 0 if f is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Report is the document written by the json format.
type Report struct {
	ScanID      string            `json:"scan_id"`
	Root        string            `json:"root,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Count       int               `json:"count"`
	Findings    []extract.Finding `json:"findings"`
}

// Print renders findings in the selected format.
func (p *Printer) Print(findings []extract.Finding) error {
	var err error
	switch p.format {
	case FormatText, "":
		err = p.printText(findings)
	case FormatJSON:
		err = p.printJSON(findings)
	case FormatNDJSON:
		err = p.printNDJSON(findings)
	case FormatMarkdown:
		err = p.printMarkdown(findings)
	case FormatCSV:
		err = p.printCSV(findings)
	default:
		return fmt.Errorf("printer: unknown format %q", p.format)
	}
	if err != nil {
		return fmt.Errorf("printer: %s: %w", p.format, err)
	}
	p.count.Add(int64(len(findings)))
	return nil
}

// GetCount returns the number of findings printed
func (p *Printer) GetCount() int64 {
	return p.count.Load()
}

func (p *Printer) printText(findings []extract.Finding) error {
	p.initColors()

	locs := make([]string, len(findings))
	locWidth := 0
	for i, f := range findings {
		locs[i] = p.displayPath(f.File) + ":" + strconv.Itoa(f.Line)
		if w := textutil.Width(locs[i]); w > locWidth {
			locWidth = w
		}
	}
	kindWidth := 0
	for _, k := range extract.Kinds() {
		if len(k) > kindWidth {
			kindWidth = len(k)
		}
	}

	for i, f := range findings {
		text := textutil.Sanitize(f.Text)
		if p.width > 0 {
			if avail := p.width - locWidth - kindWidth - 4; avail >= minTextWidth {
				text = textutil.Truncate(text, avail, "…")
			}
		}
		kind := textutil.PadRight(string(f.Kind), kindWidth)
		if c, ok := p.palette[f.Kind]; ok {
			kind = c.Sprint(kind)
		}
		loc := p.dim.Sprint(textutil.PadRight(locs[i], locWidth))
		if _, err := fmt.Fprintf(p.output, "%s  %s  %s\n", loc, kind, text); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printJSON(findings []extract.Finding) error {
	if findings == nil {
		findings = []extract.Finding{}
	}
	report := Report{
		ScanID:      uuid.NewString(),
		Root:        p.root,
		GeneratedAt: p.now().UTC(),
		Count:       len(findings),
		Findings:    findings,
	}
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (p *Printer) printNDJSON(findings []extract.Finding) error {
	enc := json.NewEncoder(p.output)
	for _, f := range findings {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printMarkdown(findings []extract.Finding) error {
	var b strings.Builder
	b.WriteString("| File | Line | Type | Text |\n")
	b.WriteString("| --- | ---: | --- | --- |\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
			escapeCell(p.displayPath(f.File)), f.Line, f.Kind, escapeCell(f.Text))
	}
	_, err := io.WriteString(p.output, b.String())
	return err
}

func (p *Printer) printCSV(findings []extract.Finding) error {
	w := csv.NewWriter(p.output)
	w.UseCRLF = true
	if err := w.Write([]string{"file", "line", "type", "text"}); err != nil {
		return err
	}
	for _, f := range findings {
		record := []string{p.displayPath(f.File), strconv.Itoa(f.Line), string(f.Kind), f.Text}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (p *Printer) displayPath(path string) string {
	if p.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (p *Printer) initColors() {
	p.palette = map[extract.Kind]*color.Color{
		extract.KindTODO:  color.New(color.FgYellow),
		extract.KindFIXME: color.New(color.FgRed),
		extract.KindHACK:  color.New(color.FgMagenta),
		extract.KindXXX:   color.New(color.FgRed, color.Bold),
		extract.KindNOTE:  color.New(color.FgCyan),
		extract.KindBUG:   color.New(color.FgHiRed, color.Bold),
	}
	p.dim = color.New(color.Faint)
	for _, c := range append(mapValues(p.palette), p.dim) {
		if p.useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func mapValues(m map[extract.Kind]*color.Color) []*color.Color {
	out := make([]*color.Color, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// escapeCell keeps a value inside one GFM table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
