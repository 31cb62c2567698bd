// Package fileutil writes report files without exposing partial content.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to a target path to form its lock file.
const LockSuffix = ".lock"

// AtomicWrite replaces path with data. Concurrent writers are serialized by
// an flock on path+".lock", which is left in place; readers see either the
// old or the new content.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fileutil: create directory %s: %w", dir, err)
	}

	lock := flock.New(path + LockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("fileutil: lock %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("fileutil: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("fileutil: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fileutil: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fileutil: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("fileutil: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("fileutil: rename to %s: %w", path, err)
	}
	committed = true
	return nil
}
