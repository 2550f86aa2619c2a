package history_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
	"github.com/blackwell-systems/crxledger/internal/history"
)

// fakeScraper serves canned listing pages keyed by URL and detail pages
// keyed by path.
type fakeScraper struct {
	pages     map[string]crx4chrome.ListingPage
	details   map[string]crx4chrome.DetailPage
	requested []string
}

func (f *fakeScraper) FetchListingPage(url string) (crx4chrome.ListingPage, error) {
	f.requested = append(f.requested, url)
	p, ok := f.pages[url]
	if !ok {
		return crx4chrome.ListingPage{}, fmt.Errorf("no page %s", url)
	}
	return p, nil
}

func (f *fakeScraper) FetchDetailPage(path string) (crx4chrome.DetailPage, error) {
	d, ok := f.details[path]
	if !ok {
		return crx4chrome.DetailPage{}, fmt.Errorf("no detail %s", path)
	}
	return d, nil
}

var overview = crx4chrome.Overview{ExtensionID: "abc", SiteID: 7, HistoryURL: "https://mirror.test/history/7"}

func rows(refs ...string) []crx4chrome.HistoryEntry {
	out := make([]crx4chrome.HistoryEntry, len(refs))
	for i, r := range refs {
		out[i] = crx4chrome.HistoryEntry{DetailPageRef: r}
	}
	return out
}

func refs(entries []crx4chrome.HistoryEntry) string {
	var s []string
	for _, e := range entries {
		s = append(s, e.DetailPageRef)
	}
	return strings.Join(s, ",")
}

// --- CollectAll ---

func TestCollectAll_ThreePages(t *testing.T) {
	f := &fakeScraper{pages: map[string]crx4chrome.ListingPage{
		overview.ListingURL(1): {Rows: rows("L", "a", "b"), Pagination: crx4chrome.Pagination{CurPage: 1, EndPage: 3}},
		overview.ListingURL(2): {Rows: rows("L", "c", "d"), Pagination: crx4chrome.Pagination{CurPage: 2, EndPage: 3}},
		// The last page reports the page before it as its end page.
		overview.ListingURL(3): {Rows: rows("L", "e"), Pagination: crx4chrome.Pagination{CurPage: 3, EndPage: 2}},
	}}

	got, err := history.NewCollector(f).CollectAll(overview)
	if err != nil {
		t.Fatalf("CollectAll: %v", err)
	}
	if refs(got) != "L,a,b,c,d,e" {
		t.Errorf("CollectAll() = %s, want L,a,b,c,d,e", refs(got))
	}
	if len(f.requested) != 3 {
		t.Errorf("requested %d pages, want 3", len(f.requested))
	}
}

func TestCollectAll_SinglePage(t *testing.T) {
	f := &fakeScraper{pages: map[string]crx4chrome.ListingPage{
		overview.ListingURL(1): {Rows: rows("L", "a"), Pagination: crx4chrome.Pagination{CurPage: 1, EndPage: 1}},
	}}
	got, err := history.NewCollector(f).CollectAll(overview)
	if err != nil {
		t.Fatal(err)
	}
	if refs(got) != "L,a" {
		t.Errorf("CollectAll() = %s, want L,a", refs(got))
	}
}

func TestCollectAll_PageNumberMismatch(t *testing.T) {
	f := &fakeScraper{pages: map[string]crx4chrome.ListingPage{
		overview.ListingURL(1): {Rows: rows("L"), Pagination: crx4chrome.Pagination{CurPage: 1, EndPage: 2}},
		overview.ListingURL(2): {Rows: rows("L"), Pagination: crx4chrome.Pagination{CurPage: 1, EndPage: 2}},
	}}
	_, err := history.NewCollector(f).CollectAll(overview)
	if !errors.Is(err, history.ErrPageNumberMismatch) {
		t.Errorf("CollectAll() err = %v, want ErrPageNumberMismatch", err)
	}
}

func TestCollectAll_FetchErrorCarriesPage(t *testing.T) {
	f := &fakeScraper{pages: map[string]crx4chrome.ListingPage{
		overview.ListingURL(1): {Rows: rows("L"), Pagination: crx4chrome.Pagination{CurPage: 1, EndPage: 2}},
	}}
	_, err := history.NewCollector(f).CollectAll(overview)
	if err == nil || !strings.Contains(err.Error(), "history page 2") {
		t.Errorf("CollectAll() err = %v, want page context", err)
	}
}

// --- CollectDetails ---

func detailPage(path, version string) crx4chrome.DetailPage {
	return crx4chrome.DetailPage{
		Path: path,
		Metadata: []crx4chrome.KV{
			{Key: "crx-file", Value: "x.crx"},
			{Key: "file-size", Value: "1 MB"},
			{Key: "package-version", Value: version},
			{Key: "updated-on", Value: "May 6, 2021"},
			{Key: "sha256", Value: "ab"},
		},
		Links: []crx4chrome.Anchor{
			{Title: crx4chrome.PrimaryTitle, Href: "https://clients2.google.com/service/update2/crx?v=" + version},
		},
	}
}

func TestCollectDetails_SortsDescending(t *testing.T) {
	f := &fakeScraper{details: map[string]crx4chrome.DetailPage{
		"/crx/1/": detailPage("/crx/1/", "14.1009.0"),
		"/crx/2/": detailPage("/crx/2/", "14.1100.0 (Latest)"),
		"/crx/3/": detailPage("/crx/3/", "14.1010"),
	}}
	var progress []int
	c := history.NewCollector(f)
	c.OnDetail = func(done, total int) { progress = append(progress, done) }

	mf, err := c.CollectDetails(overview, rows("/crx/1/", "/crx/2/", "/crx/3/"))
	if err != nil {
		t.Fatalf("CollectDetails: %v", err)
	}
	var got []string
	for _, v := range mf.Versions {
		got = append(got, v.Detail.Version)
	}
	if strings.Join(got, " ") != "14.1100.0 14.1010 14.1009.0" {
		t.Errorf("versions = %v", got)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress callbacks = %v", progress)
	}
	if mf.Overview.ExtensionID != "abc" {
		t.Errorf("Overview not carried: %+v", mf.Overview)
	}
}

func TestCollectDetails_StructuralErrorAborts(t *testing.T) {
	bad := detailPage("/crx/2/", "2.0")
	bad.Links = nil
	f := &fakeScraper{details: map[string]crx4chrome.DetailPage{
		"/crx/1/": detailPage("/crx/1/", "1.0"),
		"/crx/2/": bad,
	}}
	_, err := history.NewCollector(f).CollectDetails(overview, rows("/crx/1/", "/crx/2/"))
	if !errors.Is(err, crx4chrome.ErrPrimaryLinkMissing) {
		t.Fatalf("err = %v, want ErrPrimaryLinkMissing", err)
	}
	if !strings.Contains(err.Error(), "/crx/2/") {
		t.Errorf("err = %v, want detail path context", err)
	}
}

// --- MetadataFile ---

func TestMetadataFile_SaveLoadAndLookup(t *testing.T) {
	f := &fakeScraper{details: map[string]crx4chrome.DetailPage{
		"/crx/1/": detailPage("/crx/1/", "1.0"),
	}}
	mf, err := history.NewCollector(f).CollectDetails(overview, rows("/crx/1/"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := mf.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := history.LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	v, ok := loaded.FindByDownloadURL("https://clients2.google.com/service/update2/crx?v=1.0")
	if !ok {
		t.Fatal("FindByDownloadURL did not find primary link")
	}
	if v.Detail.Hashes.Set()["sha256"] != "ab" {
		t.Errorf("hashes lost in round trip: %v", v.Detail.Hashes.Set())
	}
	if _, ok := loaded.FindByDownloadURL("https://elsewhere.test/"); ok {
		t.Error("unexpected match for unknown URL")
	}
}

func TestLoadMetadata_Missing(t *testing.T) {
	_, err := history.LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, history.ErrMetadataFileMissing) {
		t.Errorf("err = %v, want ErrMetadataFileMissing", err)
	}
}
