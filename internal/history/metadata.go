package history

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/util"
)

// MetadataFile is everything known about one extension's published versions.
type MetadataFile struct {
	Overview crx4chrome.Overview `json:"overview"`
	Versions []VersionRecord     `json:"versions"`
}

// VersionRecord pairs a history row with its validated detail page.
type VersionRecord struct {
	Entry  crx4chrome.HistoryEntry  `json:"item"`
	Detail crx4chrome.VersionDetail `json:"detail"`
}

// LoadMetadata reads a metadata file.
func LoadMetadata(path string) (*MetadataFile, error) {
	if !util.PathExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrMetadataFileMissing, path)
	}
	var mf MetadataFile
	if err := util.ReadJSON(path, &mf); err != nil {
		return nil, err
	}
	return &mf, nil
}

// Save writes the metadata file with two-space indentation.
func (mf *MetadataFile) Save(path string) error {
	return util.WriteJSON(path, mf)
}

// FindByDownloadURL returns the version whose primary or mirror link is url.
func (mf *MetadataFile) FindByDownloadURL(url string) (VersionRecord, bool) {
	for _, v := range mf.Versions {
		if v.Detail.Links.Primary == url || (v.Detail.Links.Secondary != "" && v.Detail.Links.Secondary == url) {
			return v, true
		}
	}
	return VersionRecord{}, false
}
