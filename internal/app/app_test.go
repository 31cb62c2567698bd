package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/todo-scan/internal/extract"
	"github.com/bethropolis/todo-scan/internal/printer"
	"github.com/bethropolis/todo-scan/internal/scanner"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "node_modules/\n*.log\n")
	writeFile(t, root, "main.go", "package main\n\n// TODO: parse flags\nfunc main() {} // FIXME: exit code\n")
	writeFile(t, root, "docs/readme.md", "NOTE: keep this short\n")
	writeFile(t, root, "node_modules/lib/index.js", "// HACK: vendored\n")
	writeFile(t, root, "debug.log", "BUG: not source\n")
	writeFile(t, root, ".git/HEAD", "TODO: never scanned\n")
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunText(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	stdout, stderr, err := execute(t, "--dir", root)
	require.NoError(t, err)

	assert.Equal(t,
		"docs/readme.md:1  NOTE   keep this short\n"+
			"main.go:3         TODO   parse flags\n"+
			"main.go:4         FIXME  exit code\n",
		stdout)
	assert.Contains(t, stderr, "Found 3 annotations in 3 files")
}

func TestRunJSONReport(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	stdout, _, err := execute(t, "--dir", root, "--format", "json", "--quiet")
	require.NoError(t, err)

	var report printer.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 3, report.Count)
	assert.NotEmpty(t, report.ScanID)
	for _, f := range report.Findings {
		assert.True(t, filepath.IsAbs(f.File))
		assert.NotContains(t, f.File, "node_modules")
	}
}

func TestRunFlagsFilterKindsAndExtensions(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	stdout, _, err := execute(t, "--dir", root, "--format", "ndjson", "--kind", "todo,fixme", "--ext", "go", "-q")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	var f extract.Finding
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &f))
	assert.Equal(t, extract.KindFIXME, f.Kind)
}

func TestRunGitFlagCanBeDisabled(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	stdout, _, err := execute(t, "--dir", root, "--git=false", "--format", "csv", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, ".git/HEAD,1,TODO,never scanned")
}

func TestRunWritesOutputFile(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	out := filepath.Join(t.TempDir(), "reports", "todos.md")
	stdout, _, err := execute(t, "--dir", root, "--format", "markdown", "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "| File | Line | Type | Text |\n"))
	assert.Contains(t, string(data), "| main.go | 3 | TODO | parse flags |")
}

func TestRunSkipsOwnReportInsideRoot(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	writeFile(t, root, "extra.go", "// TODO: see NOTE: later\n")
	out := filepath.Join(root, "todos.csv")
	for i := 0; i < 2; i++ {
		_, stderr, err := execute(t, "--dir", root, "--format", "csv", "--output", out)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Wrote 4 findings to "+out)
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "todos.csv")
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\r\n"), 5)
}

func TestRunConfigFileAndFlagPrecedence(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	writeFile(t, root, ".todo-scan.yaml", "format: csv\nkinds: [NOTE]\nignore: [docs/]\n")

	stdout, _, err := execute(t, "--dir", root, "-q")
	require.NoError(t, err)
	assert.Equal(t, "file,line,type,text\r\n", stdout, "docs/ ignored and only NOTE kept")

	stdout, _, err = execute(t, "--dir", root, "-q", "--kind", "TODO")
	require.NoError(t, err)
	assert.Equal(t, "file,line,type,text\r\nmain.go,3,TODO,parse flags\r\n", stdout)
}

func TestRunExplicitConfigPath(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "scan.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format = \"ndjson\"\n"), 0o644))

	stdout, _, err := execute(t, "--dir", root, "--config", cfgPath, "-q")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 3)
}

func TestRunShowSkipped(t *testing.T) {
	t.Parallel()

	root := fixture(t)
	_, stderr, err := execute(t, "--dir", root, "--show-skipped")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipped DIR : node_modules")
	assert.Contains(t, stderr, "Skipped FILE: debug.log")
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, _, err := execute(t, "--dir", filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, scanner.ErrRootNotFound)

	_, _, err = execute(t, "--dir", root, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "--dir", root, "--workers", "0", "--kind", "NOPE")
	require.Error(t, err)
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "NOPE")

	writeFile(t, root, ".todo-scan.yaml", "unknown_key: 1\n")
	_, _, err = execute(t, "--dir", root)
	assert.Error(t, err)

	_, _, err = execute(t, "unexpected-arg")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "todo-scan version 1.0.0\n", stdout)
}
