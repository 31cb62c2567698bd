package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/logger"
	"github.com/bethropolis/todo-scan/internal/printer"
)

// Version is reported by --version.
const Version = "1.0.0"

// FileNames are the config files looked up in the scan root, in order.
var FileNames = []string{".todo-scan.yaml", ".todo-scan.yml", ".todo-scan.toml"}

// Config holds all application configuration settings
type Config struct {
	// Directory settings
	RootDir string `yaml:"dir" toml:"dir"`

	// Logging settings
	Verbose     bool   `yaml:"verbose" toml:"verbose"`
	Quiet       bool   `yaml:"quiet" toml:"quiet"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`
	NoColor     bool   `yaml:"no_color" toml:"no_color"`
	UseColors   bool   `yaml:"-" toml:"-"`
	ShowSkipped bool   `yaml:"show_skipped" toml:"show_skipped"`

	// Output settings
	Format     string   `yaml:"format" toml:"format"`
	OutputFile string   `yaml:"output" toml:"output"`
	Kinds      []string `yaml:"kinds" toml:"kinds"`

	// Processing settings
	Workers       int      `yaml:"workers" toml:"workers"`
	MaxFileSizeMB int64    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxDepth      int      `yaml:"max_depth" toml:"max_depth"`
	MaxFiles      int      `yaml:"max_files" toml:"max_files"`
	ShowProgress  bool     `yaml:"progress" toml:"progress"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`

	// Filtering settings
	IgnoreHidden bool     `yaml:"hidden" toml:"hidden"`
	IgnoreGit    bool     `yaml:"git" toml:"git"`
	CustomIgnore []string `yaml:"ignore" toml:"ignore"`
	Extensions   []string `yaml:"extensions" toml:"extensions"`
}

// Duration is a time.Duration written as "30s" or "5m" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the settings used when neither a config file nor a flag
// says otherwise.
func Default() *Config {
	return &Config{
		RootDir:       ".",
		LogLevel:      "INFO",
		Format:        printer.FormatText,
		Workers:       runtime.NumCPU(),
		MaxFileSizeMB: 10,
		IgnoreGit:     true,
	}
}

// Find returns the first config file present in root, or "" if none is.
func Find(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// Load decodes path on top of Default. The format follows the extension.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.Merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge decodes path over the current values. Unknown keys are errors.
func (c *Config) Merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported config extension %q", ext)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if !isFormat(c.Format) {
		errs = append(errs, fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(printer.Formats, ", ")))
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxFileSizeMB < 0 {
		errs = append(errs, fmt.Errorf("max size must not be negative, got %d", c.MaxFileSizeMB))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth))
	}
	if c.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("max files must not be negative, got %d", c.MaxFiles))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", time.Duration(c.Timeout)))
	}
	if _, err := c.ParsedKinds(); err != nil {
		errs = append(errs, err)
	}
	if c.Verbose && c.Quiet {
		errs = append(errs, errors.New("verbose and quiet are mutually exclusive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParsedKinds converts Kinds into extract kinds. Empty means all kinds.
func (c *Config) ParsedKinds() ([]extract.Kind, error) {
	var out []extract.Kind
	for _, raw := range splitList(c.Kinds) {
		k, err := extract.ParseKind(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// EffectiveLogLevel resolves Verbose/Quiet against LogLevel.
func (c *Config) EffectiveLogLevel() logger.LogLevel {
	switch {
	case c.Verbose:
		return logger.LevelDebug
	case c.Quiet:
		return logger.LevelWarn
	}
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// MaxFileSizeBytes converts MaxFileSizeMB, 0 meaning no limit.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// ExtensionList returns the configured extensions with comma lists split.
func (c *Config) ExtensionList() []string {
	return splitList(c.Extensions)
}

// IgnoreList returns the custom ignore patterns with comma lists split.
func (c *Config) IgnoreList() []string {
	return splitList(c.CustomIgnore)
}

// ResolveColors decides whether log and text output use ANSI colors.
func (c *Config) ResolveColors(stderr *os.File) {
	c.UseColors = !c.NoColor && os.Getenv("NO_COLOR") == "" && DetectColor(stderr)
}

// DetectColor reports whether f is an interactive terminal.
func DetectColor(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func isFormat(f string) bool {
	for _, known := range printer.Formats {
		if f == known {
			return true
		}
	}
	return false
}

// splitList flattens entries that may themselves be comma separated.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
