package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bethropolis/todo-scan/internal/config"
)

// NewRootCommand creates the todo-scan command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo-scan",
		Short: "List TODO, FIXME and other annotation comments in a source tree",
		Long: `todo-scan walks a directory, skips everything the root .gitignore
excludes, and reports every line tagged TODO:, FIXME:, HACK:, XXX:, NOTE: or BUG:.

Settings are read from .todo-scan.yaml, .todo-scan.yml or .todo-scan.toml in
the scanned directory (or --config); flags given on the command line win.`,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
	cmd.SetVersionTemplate("todo-scan version {{.Version}}\n")

	def := config.Default()
	f := cmd.Flags()
	f.String("dir", def.RootDir, "The root directory to scan")
	f.String("config", "", "Config file (default: .todo-scan.{yaml,yml,toml} in --dir)")
	f.String("format", def.Format, "Output format: text, json, ndjson, markdown or csv")
	f.String("output", "", "Write results to this file instead of stdout")
	f.StringSlice("kind", nil, "Only report these kinds (comma-separated, e.g. 'TODO,FIXME')")
	f.StringSlice("ext", nil, "Only include files with these extensions (comma-separated, e.g. 'go,md')")
	f.StringSlice("ignore", nil, "Extra ignore patterns (comma-separated, gitignore syntax)")
	f.Bool("hidden", def.IgnoreHidden, "Ignore hidden files/directories (starting with '.')")
	f.Bool("git", def.IgnoreGit, "Ignore .git directories")
	f.Int("workers", def.Workers, "Number of files read concurrently")
	f.Int64("max-size", def.MaxFileSizeMB, "Max file size to read in MB (0 = no limit)")
	f.Int("max-depth", 0, "Max directory depth to descend (0 = unlimited)")
	f.Int("max-files", 0, "Stop after this many files (0 = unlimited)")
	f.Duration("timeout", 0, "Maximum execution time (e.g., '30s', '5m')")
	f.Bool("progress", false, "Show progress information")
	f.Bool("show-skipped", false, "Show a list of skipped files/directories and reasons at the end")
	f.BoolP("verbose", "v", false, "Enable verbose logging")
	f.BoolP("quiet", "q", false, "Only show warnings and errors")
	f.String("log-level", def.LogLevel, "Set the logging level (DEBUG, INFO, WARN, ERROR, NONE)")
	f.Bool("no-color", false, "Disable color output")

	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		cfg.ResolveColors(f)
	}

	return New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(cmd.Context())
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then any flag set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	path, _ := flags.GetString("config")
	if path == "" {
		path = config.Find(dir)
	}

	cfg := config.Default()
	cfg.RootDir = dir
	if path != "" {
		if err := cfg.Merge(path); err != nil {
			return nil, err
		}
		// A root given in a config file is relative to that file.
		if cfg.RootDir != dir && !filepath.IsAbs(cfg.RootDir) {
			cfg.RootDir = filepath.Join(filepath.Dir(path), cfg.RootDir)
		}
	}
	if flags.Changed("dir") {
		cfg.RootDir = dir
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
	if flags.Changed("kind") {
		cfg.Kinds, _ = flags.GetStringSlice("kind")
	}
	if flags.Changed("ext") {
		cfg.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("ignore") {
		extra, _ := flags.GetStringSlice("ignore")
		cfg.CustomIgnore = append(cfg.CustomIgnore, extra...)
	}
	if flags.Changed("hidden") {
		cfg.IgnoreHidden, _ = flags.GetBool("hidden")
	}
	if flags.Changed("git") {
		cfg.IgnoreGit, _ = flags.GetBool("git")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("max-size") {
		cfg.MaxFileSizeMB, _ = flags.GetInt64("max-size")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("max-files") {
		cfg.MaxFiles, _ = flags.GetInt("max-files")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}
	if flags.Changed("progress") {
		cfg.ShowProgress, _ = flags.GetBool("progress")
	}
	if flags.Changed("show-skipped") {
		cfg.ShowSkipped, _ = flags.GetBool("show-skipped")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("quiet") {
		cfg.Quiet, _ = flags.GetBool("quiet")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}

	return cfg, nil
}
