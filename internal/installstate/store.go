package installstate

import (
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/crxledger/internal/util"
)

// ErrStoreMissing is returned when a state file does not exist.
var ErrStoreMissing = errors.New("install state file not found")

// Store reads and rewrites an install-state file as a whole.
type Store struct {
	path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the stored entries.
func (s *Store) Load() ([]Entry, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrStoreMissing, s.path)
	}
	var entries []Entry
	if err := util.ReadJSON(s.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save replaces the file contents with entries.
func (s *Store) Save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return util.WriteJSON(s.path, entries)
}

// LoadByVersion reads a by-version file.
func LoadByVersion(path string) (ByVersion, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrStoreMissing, path)
	}
	var bv ByVersion
	if err := util.ReadJSON(path, &bv); err != nil {
		return nil, err
	}
	return bv, nil
}

// SaveByVersion writes a by-version file.
func SaveByVersion(path string, bv ByVersion) error {
	return util.WriteJSON(path, bv)
}
