// Package filex holds small helpers for the local temp files that uploads
// are staged in before they are pushed to the blob store.
package filex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SaveTemp copies r into a new file under dir and returns its path and size.
// At most limit bytes are accepted; a larger stream removes the partial file
// and returns ErrTooLarge.
func SaveTemp(dir, pattern string, r io.Reader, limit int64) (string, int64, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}
	if n > limit {
		_ = os.Remove(path)
		return "", 0, ErrTooLarge
	}
	return path, n, nil
}

// ErrTooLarge is returned by SaveTemp when the stream exceeds the limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Release removes a temp file. A file that is already gone is not an error.
func Release(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
