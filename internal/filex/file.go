// Package filex contains small filesystem helpers for the storage layer.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir resolves dir to an absolute, cleaned path and creates it
// (with parents) if missing. Relative paths are resolved against the
// working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// RemoveIfExists removes path and treats a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
