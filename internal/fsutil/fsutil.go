package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock held in an output folder while writing.
const LockFileName = ".srt2titles.lock"

const lockRetryDelay = 100 * time.Millisecond

// named file content destined for one folder
type File struct {
	Name string
	Data []byte
}

// WriteFileAtomic writes data to a temp file next to destPath and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(destPath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// no-op once the rename succeeded
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("rename tmp -> dest: %w", err)
	}
	return nil
}

// Lock takes an exclusive advisory lock on path, retrying until ctx is done.
func Lock(ctx context.Context, path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s is held by another process", path)
	}
	return lock, nil
}

// RemoveMatching deletes the files in dir matching pattern (filepath.Match
// syntax, not recursive) and returns how many were removed.
func RemoveMatching(dir, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range matches {
		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// DirOptions controls WriteDir.
type DirOptions struct {
	// files matching this pattern are removed before writing; empty keeps them
	ClearPattern string
	Perm         os.FileMode
}

// WriteDir writes files into dir while holding the folder lock, so that two
// runs targeting the same folder cannot interleave. It returns the number of
// bytes written.
func WriteDir(
	ctx context.Context,
	dir string,
	files []File,
	opts DirOptions,
) (int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock, err := Lock(ctx, filepath.Join(dir, LockFileName))
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if opts.ClearPattern != "" {
		if _, err := RemoveMatching(dir, opts.ClearPattern); err != nil {
			return 0, fmt.Errorf("failed to clear output directory: %w", err)
		}
	}

	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}

	var written int64
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if f.Name == "" || f.Name != filepath.Base(f.Name) {
			return written, fmt.Errorf("invalid file name %q", f.Name)
		}
		if err := WriteFileAtomic(filepath.Join(dir, f.Name), f.Data, perm); err != nil {
			return written, err
		}
		written += int64(len(f.Data))
	}
	return written, nil
}
