package cache

import (
	"fmt"
	"io"
	"os"
)

// Store writes r to destPath through a temp file and renames it into place,
// so an interrupted download never leaves a truncated .crx behind.
// Returns the number of bytes written.
func (m *Manager) Store(destPath string, r io.Reader) (int64, error) {
	if err := m.EnsureParent(destPath); err != nil {
		return 0, fmt.Errorf("create archive dir: %w", err)
	}
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("writing to archive: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}
	return n, nil
}
