// Package fsutil holds small filesystem helpers shared by the registry and
// the build orchestrator.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// rename and link are swapped in tests to simulate an interruption before
// the final step.
var (
	rename = os.Rename
	link   = os.Link
)

// WriteFileAtomic makes data visible at path either fully or not at all.
//
// The content is written to a temporary file in the same directory as path,
// so the final rename never crosses a filesystem boundary, and then renamed
// over path. If anything fails the temporary file is removed and path keeps
// its previous content (or stays absent).
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}

	if err := rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// writeTemp writes data to a synced temporary file next to path and returns
// its name. On error nothing is left behind.
func writeTemp(path string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// CreateTemp always uses 0600
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	return tmpPath, nil
}

// CreateFileAtomic is WriteFileAtomic without the overwrite: it fails with an
// error satisfying errors.Is(err, fs.ErrExist) if path already exists, even
// when another process creates it concurrently.
func CreateFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	// link(2) refuses to replace an existing name, rename(2) does not.
	if err := link(tmpPath, path); err != nil {
		return fmt.Errorf("failed to publish %s: %w", filepath.Base(path), err)
	}

	return nil
}

// SymlinkAtomic points link at target, replacing whatever is at link in a
// single rename so the name never goes missing.
func SymlinkAtomic(target, link string) error {
	dir := filepath.Dir(link)

	// Reserve a unique name, then swap the placeholder for the symlink.
	placeholder, err := os.CreateTemp(dir, "."+filepath.Base(link)+".link-*")
	if err != nil {
		return fmt.Errorf("failed to reserve temp link name: %w", err)
	}
	tmpPath := placeholder.Name()
	placeholder.Close()

	if err := os.Remove(tmpPath); err != nil {
		return fmt.Errorf("failed to clear temp link name: %w", err)
	}

	if err := os.Symlink(target, tmpPath); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}

	if err := rename(tmpPath, link); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", link, err)
	}

	return nil
}
