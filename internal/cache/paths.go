// Package cache manages the on-disk archive of downloaded CRX copies.
package cache

import (
	"os"
	"path/filepath"

	"github.com/blackwell-systems/crxledger/internal/util"
)

// VendorSource is the source name for copies fetched from the vendor CDN.
const VendorSource = "google"

// MirrorSource is the source name for copies fetched from the mirror site.
const MirrorSource = "crx4chrome"

// Manager handles the local archive.
type Manager struct {
	baseDir string
}

// New creates a Manager rooted at baseDir (normally <data>/extensions).
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// ExtensionPath returns the unpacked directory for one copy.
// Layout: <baseDir>/<extensionID>/<version>/<source>
func (m *Manager) ExtensionPath(extensionID, version, source string) string {
	return filepath.Join(m.baseDir, extensionID, version, source)
}

// ZipPath returns the archived CRX file for one copy.
// Layout: <baseDir>/<extensionID>/<version>/<source>.crx
func (m *Manager) ZipPath(extensionID, version, source string) string {
	return m.ExtensionPath(extensionID, version, source) + ".crx"
}

// IsVendorCopy reports whether a zip path is the vendor CDN copy.
func IsVendorCopy(zipPath string) bool {
	return filepath.Base(zipPath) == VendorSource+".crx"
}

// Exists reports whether path exists.
func (m *Manager) Exists(path string) bool {
	return util.PathExists(path)
}

// EnsureParent creates the directory that will hold path.
func (m *Manager) EnsureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0750)
}

// RemoveTree deletes an unpacked directory if it exists.
func (m *Manager) RemoveTree(path string) error {
	return util.RemoveTree(path)
}

// Remove deletes a single archived file if it exists.
func (m *Manager) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
