// Package history discovers every published version of an extension on the
// mirror and assembles the metadata file the download stage consumes.
package history

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/extversion"
	"github.com/blackwell-systems/crxledger/internal/logger"
)

// Scraper is the subset of the mirror client the collector needs.
type Scraper interface {
	FetchListingPage(url string) (crx4chrome.ListingPage, error)
	FetchDetailPage(path string) (crx4chrome.DetailPage, error)
}

// Collector walks the version history of one extension.
type Collector struct {
	scraper Scraper

	// OnDetail, if set, is called after each detail page is processed.
	OnDetail func(done, total int)
}

// NewCollector creates a Collector backed by s.
func NewCollector(s Scraper) *Collector {
	return &Collector{scraper: s}
}

// CollectAll returns every history row across all listing pages, newest
// first. Every page repeats the latest version as its first row, so only
// page 1 keeps its first row.
func (c *Collector) CollectAll(o crx4chrome.Overview) ([]crx4chrome.HistoryEntry, error) {
	var acc []crx4chrome.HistoryEntry
	for curPage := 1; ; curPage++ {
		url := o.ListingURL(curPage)
		page, err := c.scraper.FetchListingPage(url)
		if err != nil {
			return nil, fmt.Errorf("history page %d: %w", curPage, err)
		}
		if page.Pagination.CurPage != curPage {
			return nil, fmt.Errorf("%w: requested %d, page reports %d (%s)",
				ErrPageNumberMismatch, curPage, page.Pagination.CurPage, url)
		}

		rows := page.Rows
		if curPage > 1 && len(rows) > 0 {
			rows = rows[1:]
		}
		acc = append(acc, rows...)
		logger.L().Debugw("history page collected", "page", curPage, "endPage", page.Pagination.EndPage, "rows", len(rows))

		// On the final page EndPage reads one short, so >= still stops here.
		if curPage >= page.Pagination.EndPage {
			return acc, nil
		}
	}
}

// CollectDetails fetches the detail page of every entry and returns the
// metadata file with versions sorted newest first.
func (c *Collector) CollectDetails(o crx4chrome.Overview, entries []crx4chrome.HistoryEntry) (*MetadataFile, error) {
	mf := &MetadataFile{Overview: o}
	for i, entry := range entries {
		page, err := c.scraper.FetchDetailPage(entry.DetailPageRef)
		if err != nil {
			return nil, fmt.Errorf("history entry %d (%s): %w", i+1, entry.DetailPageRef, err)
		}
		detail, err := page.VersionDetail()
		if err != nil {
			return nil, fmt.Errorf("history entry %d (%s): %w", i+1, entry.DetailPageRef, err)
		}
		mf.Versions = append(mf.Versions, VersionRecord{Entry: entry, Detail: detail})
		if c.OnDetail != nil {
			c.OnDetail(i+1, len(entries))
		}
	}
	if err := mf.SortDescending(); err != nil {
		return nil, err
	}
	return mf, nil
}

// SortDescending orders versions newest first. Ties keep page order.
func (mf *MetadataFile) SortDescending() error {
	for _, v := range mf.Versions {
		if _, err := extversion.Normalize(v.Detail.Version); err != nil {
			return fmt.Errorf("version %q (%s): %w", v.Detail.Version, v.Detail.DetailPath, err)
		}
	}
	sort.SliceStable(mf.Versions, func(i, j int) bool {
		cmp, _ := extversion.CompareDescending(mf.Versions[i].Detail.Version, mf.Versions[j].Detail.Version)
		return cmp < 0
	})
	return nil
}
