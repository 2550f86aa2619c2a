package downloadlog

import (
	"fmt"

	"github.com/blackwell-systems/crxledger/internal/cache"
	"github.com/blackwell-systems/crxledger/internal/history"
)

// Plan lists the download attempts for every version in mf: the vendor copy
// always, the mirror copy when the detail page links one.
func Plan(mf *history.MetadataFile, archive *cache.Manager) ([]Attempt, error) {
	id := mf.Overview.ExtensionID
	var attempts []Attempt
	for _, v := range mf.Versions {
		d := v.Detail
		if d.Links.Primary == "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNoPrimaryLink, d.Version, d.DetailPath)
		}
		sources := []struct{ name, url string }{{cache.VendorSource, d.Links.Primary}}
		if d.Links.Secondary != "" {
			sources = append(sources, struct{ name, url string }{cache.MirrorSource, d.Links.Secondary})
		}
		for _, s := range sources {
			attempts = append(attempts, Attempt{
				ExtensionID:        id,
				Version:            d.Version,
				Source:             s.name,
				DownloadURL:        s.url,
				ExtensionPath:      archive.ExtensionPath(id, d.Version, s.name),
				ExtensionZipPath:   archive.ZipPath(id, d.Version, s.name),
				KeepZip:            true,
				WriteKeyToManifest: true,
			})
		}
	}
	return attempts, nil
}
