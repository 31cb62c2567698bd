package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bethropolis/todo-scan/internal/ignore"
	"github.com/bethropolis/todo-scan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		writeFile(t, root, rel, content)
	}
}

// relative converts scan results back to sorted slash paths for comparison.
func relative(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		require.True(t, filepath.IsAbs(f), "expected absolute path, got %q", f)
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestScanWithoutGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"file1.ts":        "content",
		"file2.js":        "content",
		"subdir/file3.ts": "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.ts", "file2.js", "subdir/file3.ts"}, relative(t, root, files))
}

func TestScanFiltersByGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":                "node_modules/\n*.log\n",
		"file1.ts":                  "content",
		"file2.log":                 "content",
		"node_modules/package.json": "content",
		"src/index.ts":              "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "file1.ts", "src/index.ts"}, relative(t, root, files))
}

func TestScanEmptyDirectory(t *testing.T) {
	t.Parallel()

	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanNestedDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":                 "build/",
		"src/utils/helper.ts":        "content",
		"src/components/Button.tsx":  "content",
		"build/bundle.js":            "content",
		"build/nested/file.js":       "content",
		"src/build/generated/out.js": "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".gitignore",
		"src/components/Button.tsx",
		"src/utils/helper.ts",
	}, relative(t, root, files))
}

func TestScanComplexGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": `
# Dependencies
node_modules/
*.log

# Build outputs
dist/
build/

# IDE
.vscode/
.idea/

# Specific files
config.local.ts
!important.log
`,
		"src/index.ts":          "content",
		"node_modules/lib.js":   "content",
		"debug.log":             "content",
		"dist/bundle.js":        "content",
		".vscode/settings.json": "content",
		"config.local.ts":       "content",
		"important.log":         "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "important.log", "src/index.ts"}, relative(t, root, files))
}

func TestScanWildcardPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "*.test.ts\ntemp-*",
		"index.ts":       "content",
		"utils.test.ts":  "content",
		"helper.test.ts": "content",
		"temp-file.txt":  "content",
		"temp-data.json": "content",
		"data.json":      "content",
		"file-name.ts":   "content",
		"file_name.js":   "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "data.json", "file-name.ts", "file_name.js", "index.ts"}, relative(t, root, files))
}

func TestScanEmptyAndCommentOnlyGitignore(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "\n# This is a comment\n\n  # Another comment\n  \n"} {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			".gitignore": content,
			"file1.ts":   "content",
			"file2.js":   "content",
		})

		files, err := Scan(root)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	}
}

func TestScanRootRelativePattern(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "/dist",
		"dist/bundle.js":    "content",
		"src/dist/other.js": "content",
		"src/index.ts":      "content",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "src/dist/other.js", "src/index.ts"}, relative(t, root, files))

	root = t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "dist/",
		"dist/bundle.js":    "content",
		"src/dist/other.js": "content",
	})
	files, err = Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore"}, relative(t, root, files))
}

func TestScanPrunedDirectoryStaysPruned(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":       "cache/\n!cache/keep.txt\n!keep.txt\n",
		"cache/keep.txt":   "content",
		"cache/.gitignore": "!*\n",
		"cache/sub/a.txt":  "content",
		"keep.txt":         "content",
	})

	res, err := Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "keep.txt"}, relative(t, root, res.Files))
	assert.Contains(t, res.Skipped, SkippedItem{Path: "cache", Reason: ReasonIgnoredRule, IsDir: true})
	for _, item := range res.Skipped {
		assert.False(t, strings.HasPrefix(item.Path, "cache"+string(filepath.Separator)),
			"pruned directory contents must never be visited, saw %s", item.Path)
	}
}

func TestScanLargeNumberOfFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{".gitignore": "*.log"}
	for i := 0; i < 100; i++ {
		files[fmt.Sprintf("file%d.ts", i)] = "content"
		if i%10 == 0 {
			files[fmt.Sprintf("debug%d.log", i)] = "content"
		}
	}
	writeTree(t, root, files)

	got, err := Scan(root)
	require.NoError(t, err)
	assert.Len(t, got, 101)
	for _, f := range got {
		assert.NotEqual(t, ".log", filepath.Ext(f))
	}
}

func TestScanIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.tmp\n",
		"a/b/c.go":   "x",
		"a/d.go":     "x",
		"e.tmp":      "x",
		"f.go":       "x",
	})

	first, err := Scan(root)
	require.NoError(t, err)
	second, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScanRootErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, err := Scan(filepath.Join(root, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootNotFound)

	writeFile(t, root, "plain.txt", "x")
	_, err = Scan(filepath.Join(root, "plain.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestScanSkipsSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "real.go", "x")
	writeFile(t, root, "dir/inner.go", "x")
	if err := os.Symlink(filepath.Join(root, "real.go"), filepath.Join(root, "link.go")); err != nil {
		t.Skip("symlinks not supported")
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "dirlink")))

	res, err := Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/inner.go", "real.go"}, relative(t, root, res.Files))
	assert.Contains(t, res.Skipped, SkippedItem{Path: "link.go", Reason: ReasonSkippedNotRegular})
}

func TestScanUnreadableDirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeFile(t, root, "ok.go", "x")
	writeFile(t, root, "locked/secret.go", "x")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res, err := Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.go"}, relative(t, root, res.Files))
	assert.Contains(t, res.Skipped, SkippedItem{Path: "locked", Reason: ReasonSkippedPermError, IsDir: true})
}

func TestScanIgnoreOptions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/config":  "x",
		".env":         "x",
		"main.go":      "x",
		"gen/types.go": "x",
	})

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Len(t, files, 4, ".git is not special without options")

	files, err = Scan(root, WithIgnoreOptions(ignore.WithGitIgnore(true), ignore.WithCustomRules([]string{"gen/"})))
	require.NoError(t, err)
	assert.Equal(t, []string{".env", "main.go"}, relative(t, root, files))

	files, err = Scan(root, WithIgnoreOptions(ignore.WithHiddenIgnore(true)))
	require.NoError(t, err)
	assert.Equal(t, []string{"gen/types.go", "main.go"}, relative(t, root, files))
}

func TestScanWithPrebuiltMatcher(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.go\n",
		"a.go":       "x",
		"b.md":       "x",
	})

	files, err := Scan(root, WithMatcher(ignore.CreateDisabledMatcher()))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestScanExtensionFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go":     "x",
		"b.TS":     "x",
		"c.md":     "x",
		"Makefile": "x",
	})

	res, err := Walk(root, WithExtensions([]string{".go", "ts"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.TS"}, relative(t, root, res.Files))
	assert.Contains(t, res.Skipped, SkippedItem{Path: "c.md", Reason: ReasonFilteredExtension})
}

func TestScanMaxDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.go":       "x",
		"a/mid.go":     "x",
		"a/b/deep.go":  "x",
		"a/b/c/end.go": "x",
	})

	files, err := Scan(root, WithMaxDepth(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a/mid.go", "top.go"}, relative(t, root, files))
}

func TestScanMaxFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, root, fmt.Sprintf("f%d.go", i), "x")
	}

	res, err := Walk(root, WithMaxFiles(3))
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)
	assert.True(t, res.Truncated)

	res, err = Walk(root, WithMaxFiles(5))
	require.NoError(t, err)
	assert.Len(t, res.Files, 5)
	assert.False(t, res.Truncated)
}

func TestScanCancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.go", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(root, WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkStats(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":   "vendor/\n*.log\n",
		"main.go":      "x",
		"app.log":      "x",
		"vendor/x.go":  "x",
		"pkg/util.go":  "x",
		"pkg/deep/z.c": "x",
	})

	res, err := Walk(root)
	require.NoError(t, err)
	assert.Equal(t, root, res.Root)
	assert.Equal(t, int64(4), res.Stats.KeptFiles)
	assert.Equal(t, int64(5), res.Stats.TotalFiles)
	assert.Equal(t, int64(3), res.Stats.TotalDirs)
	assert.Equal(t, int64(1), res.Stats.SkippedDirs)
	assert.Equal(t, int64(1), res.Stats.SkippedFiles)
}

// slowStartLogger stalls on its first debug line so the walk outlives at
// least one progress tick.
type slowStartLogger struct {
	utils.NoopLogger
	once sync.Once
}

func (l *slowStartLogger) Debug(string, ...interface{}) {
	l.once.Do(func() { time.Sleep(400 * time.Millisecond) })
}

func TestWalkWaitsForProgressReporter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")

	var calls, inFlight atomic.Int32
	res, err := Walk(root,
		WithMatcher(ignore.CreateDisabledMatcher()),
		WithLogger(&slowStartLogger{}),
		WithProgress(func(ProgressStats) {
			inFlight.Add(1)
			calls.Add(1)
			time.Sleep(100 * time.Millisecond)
			inFlight.Add(-1)
		}),
	)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Zero(t, inFlight.Load(), "progress callback still running after Walk returned")
}
