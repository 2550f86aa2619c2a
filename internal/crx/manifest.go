package crx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/blackwell-systems/crxledger/internal/util"
)

// ManifestFile is the manifest name inside an unpacked extension.
const ManifestFile = "manifest.json"

// ReadManifest decodes dir/manifest.json. Comments and trailing commas, which
// the browser accepts, are tolerated.
func ReadManifest(dir string) (map[string]json.RawMessage, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", dir, ErrManifestMissing)
	}
	if err != nil {
		return nil, err
	}
	// Some store packages ship a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var m map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// WriteKeyToManifest sets the "key" field of dir/manifest.json to key and
// rewrites the file as plain JSON.
func WriteKeyToManifest(dir, key string) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	m["key"] = raw
	return util.WriteJSON(filepath.Join(dir, ManifestFile), m)
}
