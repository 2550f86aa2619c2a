package crx4chrome_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
)

const grammarlyID = "kbfnbcaeplbcioakkpcpgfkobkghlhen"

// newSite serves testdata pages by path.
func newSite(t *testing.T, pages map[string]string) (*httptest.Server, *crx4chrome.Client) {
	t.Helper()
	mux := http.NewServeMux()
	for route, file := range pages {
		body, err := os.ReadFile(filepath.Join("testdata", file))
		if err != nil {
			t.Fatalf("reading fixture %s: %v", file, err)
		}
		route, body := route, body // per-iteration copies for go < 1.22 loop semantics
		mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != route {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, crx4chrome.New(srv.URL, "crxledger-test", srv.Client())
}

// --- FetchOverview ---

func TestFetchOverview(t *testing.T) {
	srv, c := newSite(t, map[string]string{
		"/extensions/" + grammarlyID + "/": "overview.html",
	})

	o, err := c.FetchOverview(grammarlyID)
	if err != nil {
		t.Fatalf("FetchOverview: %v", err)
	}
	if o.SiteID != 2722 {
		t.Errorf("SiteID = %d, want 2722", o.SiteID)
	}
	if o.HistoryURL != srv.URL+"/history/2722" {
		t.Errorf("HistoryURL = %q", o.HistoryURL)
	}
	if got := o.ListingURL(2); got != srv.URL+"/history/2722/2/" {
		t.Errorf("ListingURL(2) = %q", got)
	}
}

func TestFetchOverview_NoSiteID(t *testing.T) {
	_, c := newSite(t, map[string]string{
		"/extensions/" + grammarlyID + "/": "detail_no_blocks.html",
	})
	if _, err := c.FetchOverview(grammarlyID); !errors.Is(err, crx4chrome.ErrSiteIDNotFound) {
		t.Errorf("FetchOverview() err = %v, want ErrSiteIDNotFound", err)
	}
}

func TestFetchOverview_HTTPError(t *testing.T) {
	_, c := newSite(t, map[string]string{})
	if _, err := c.FetchOverview(grammarlyID); !errors.Is(err, crx4chrome.ErrUnexpectedStatus) {
		t.Errorf("FetchOverview() err = %v, want ErrUnexpectedStatus", err)
	}
}

// --- FetchListingPage ---

func TestFetchListingPage_Pagination(t *testing.T) {
	srv, c := newSite(t, map[string]string{
		"/history/2722/1/": "history_1.html",
		"/history/2722/3/": "history_3.html",
	})

	first, err := c.FetchListingPage(srv.URL + "/history/2722/1/")
	if err != nil {
		t.Fatalf("FetchListingPage(1): %v", err)
	}
	if first.Pagination != (crx4chrome.Pagination{CurPage: 1, EndPage: 3}) {
		t.Errorf("page 1 pagination = %+v", first.Pagination)
	}
	if len(first.Rows) != 3 {
		t.Fatalf("page 1 rows = %d, want 3", len(first.Rows))
	}
	if first.Rows[0].DetailPageRef != "/crx/300003/" {
		t.Errorf("first row ref = %q", first.Rows[0].DetailPageRef)
	}
	wantMeta := []string{"Grammarly 14.1100.0 (Latest)", "January 3, 2024"}
	if len(first.Rows[0].RawMetadata) != 2 || first.Rows[0].RawMetadata[0] != wantMeta[0] || first.Rows[0].RawMetadata[1] != wantMeta[1] {
		t.Errorf("first row metadata = %q, want %q", first.Rows[0].RawMetadata, wantMeta)
	}

	// The last page reports the page before it as its end page.
	last, err := c.FetchListingPage(srv.URL + "/history/2722/3/")
	if err != nil {
		t.Fatalf("FetchListingPage(3): %v", err)
	}
	if last.Pagination != (crx4chrome.Pagination{CurPage: 3, EndPage: 2}) {
		t.Errorf("last page pagination = %+v", last.Pagination)
	}
}

func TestFetchListingPage_SinglePage(t *testing.T) {
	srv, c := newSite(t, map[string]string{"/history/9/1/": "history_single.html"})
	page, err := c.FetchListingPage(srv.URL + "/history/9/1/")
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination != (crx4chrome.Pagination{CurPage: 1, EndPage: 1}) {
		t.Errorf("pagination = %+v, want {1 1}", page.Pagination)
	}
}

func TestFetchListingPage_Errors(t *testing.T) {
	srv, c := newSite(t, map[string]string{
		"/history/1/1/": "history_broken_pagination.html",
		"/history/2/1/": "overview.html",
	})
	if _, err := c.FetchListingPage(srv.URL + "/history/1/1/"); !errors.Is(err, crx4chrome.ErrPaginationParse) {
		t.Errorf("broken pagination err = %v, want ErrPaginationParse", err)
	}
	if _, err := c.FetchListingPage(srv.URL + "/history/2/1/"); !errors.Is(err, crx4chrome.ErrHistoryListMissing) {
		t.Errorf("missing list err = %v, want ErrHistoryListMissing", err)
	}
}

// --- FetchDetailPage ---

func TestFetchDetailPage_Full(t *testing.T) {
	_, c := newSite(t, map[string]string{"/crx/300003/": "detail_300003.html"})

	page, err := c.FetchDetailPage("/crx/300003/")
	if err != nil {
		t.Fatalf("FetchDetailPage: %v", err)
	}
	if v, _ := page.Get("more-about-grammarly"); v != "https://www.grammarly.com/" {
		t.Errorf("more-about-grammarly = %q", v)
	}
	if _, ok := page.Get("rating"); ok {
		t.Error("label without a value should be skipped")
	}

	d, err := page.VersionDetail()
	if err != nil {
		t.Fatalf("VersionDetail: %v", err)
	}
	if d.Version != "14.1100.0" {
		t.Errorf("Version = %q, want 14.1100.0", d.Version)
	}
	if d.UpdatedAt != "January 3, 2024" || d.FileSize != "28.31 MB" {
		t.Errorf("UpdatedAt/FileSize = %q / %q", d.UpdatedAt, d.FileSize)
	}
	hashes := d.Hashes.Set()
	if hashes[checksum.MD5] != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("md5 = %q, want lowercased", hashes[checksum.MD5])
	}
	if hashes[checksum.CRC32] != "8a985d" || d.Hashes.Len() != 4 {
		t.Errorf("hashes = %v", hashes)
	}
	if d.Links.Primary != "https://clients2.google.com/service/update2/crx?id=kbfn" {
		t.Errorf("Primary = %q", d.Links.Primary)
	}
	if d.Links.Secondary != "https://f6.crx4chrome.com/crx.php?i=kbfnbcaeplbcioakkpcpgfkobkghlhen&v=14.1100.0" {
		t.Errorf("Secondary = %q", d.Links.Secondary)
	}
	if d.Links.Listing != "https://chrome.google.com/webstore/detail/grammarly/kbfnbcaeplbcioakkpcpgfkobkghlhen?hl=en" {
		t.Errorf("Listing = %q, want tracking stripped", d.Links.Listing)
	}
	if len(d.Links.Unclassified) != 1 || d.Links.Unclassified[0].Href != "/faq/" {
		t.Errorf("Unclassified = %+v", d.Links.Unclassified)
	}
}

func TestFetchDetailPage_AcceptsFullURL(t *testing.T) {
	srv, c := newSite(t, map[string]string{"/crx/300003/": "detail_300003.html"})
	page, err := c.FetchDetailPage(srv.URL + "/crx/300003/")
	if err != nil {
		t.Fatal(err)
	}
	if page.Path != "/crx/300003/" {
		t.Errorf("Path = %q", page.Path)
	}
}

func TestFetchDetailPage_InvalidPath(t *testing.T) {
	_, c := newSite(t, map[string]string{})
	if _, err := c.FetchDetailPage("/extensions/abc/"); !errors.Is(err, crx4chrome.ErrInvalidDetailPath) {
		t.Errorf("err = %v, want ErrInvalidDetailPath", err)
	}
}

func TestFetchDetailPage_MissingBlocks(t *testing.T) {
	_, c := newSite(t, map[string]string{"/crx/1/": "detail_no_blocks.html"})
	if _, err := c.FetchDetailPage("/crx/1/"); !errors.Is(err, crx4chrome.ErrMetadataBlockMissing) {
		t.Errorf("err = %v, want ErrMetadataBlockMissing", err)
	}
}

func TestVersionDetail_OptionalLinksOmitted(t *testing.T) {
	_, c := newSite(t, map[string]string{"/crx/9/": "detail_no_mirror.html"})
	page, err := c.FetchDetailPage("/crx/9/")
	if err != nil {
		t.Fatal(err)
	}
	d, err := page.VersionDetail()
	if err != nil {
		t.Fatalf("VersionDetail: %v", err)
	}
	if d.Links.Secondary != "" || d.Links.Listing != "" {
		t.Errorf("optional links = %+v, want empty", d.Links)
	}
	if d.Links.Primary == "" {
		t.Error("primary link should be classified by its CDN prefix")
	}
}

func TestVersionDetail_PrimaryMissing(t *testing.T) {
	_, c := newSite(t, map[string]string{"/crx/9/": "detail_no_primary.html"})
	page, err := c.FetchDetailPage("/crx/9/")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := page.VersionDetail(); !errors.Is(err, crx4chrome.ErrPrimaryLinkMissing) {
		t.Errorf("err = %v, want ErrPrimaryLinkMissing", err)
	}
}

func TestVersionDetail_NoPublishedChecksum(t *testing.T) {
	_, c := newSite(t, map[string]string{"/crx/9/": "detail_no_hashes.html"})
	page, err := c.FetchDetailPage("/crx/9/")
	if err != nil {
		t.Fatal(err)
	}
	_, err = page.VersionDetail()
	if !errors.Is(err, crx4chrome.ErrInvalidMetadata) {
		t.Errorf("err = %v, want ErrInvalidMetadata", err)
	}
	if !errors.Is(err, checksum.ErrNoPublishedChecksum) {
		t.Errorf("err = %v, want ErrNoPublishedChecksum in chain", err)
	}
}

func TestVersionDetail_MissingRequiredKeys(t *testing.T) {
	page := crx4chrome.DetailPage{
		Path:     "/crx/5/",
		Metadata: []crx4chrome.KV{{Key: "package-version", Value: "1.0"}},
	}
	if _, err := page.VersionDetail(); !errors.Is(err, crx4chrome.ErrInvalidMetadata) {
		t.Errorf("err = %v, want ErrInvalidMetadata", err)
	}
}

// --- ClassifyLinks ---

func TestClassifyLinks_Precedence(t *testing.T) {
	anchors := []crx4chrome.Anchor{
		{Href: "https://www.crx4chrome.com/go.php?url=https%3A%2F%2Fclients2.googleusercontent.com%2Fcrx%2Fblobs%2Fabc"},
		{Href: "https://clients2.google.com/service/update2/crx?second=1"},
		{Href: "https://chromewebstore.google.com/detail/x/abc?utm_medium=ref&utm_source=m"},
	}
	links := crx4chrome.ClassifyLinks(anchors)
	if links.Primary != "https://clients2.googleusercontent.com/crx/blobs/abc" {
		t.Errorf("Primary = %q, want the redirect target", links.Primary)
	}
	if links.Secondary != "" {
		t.Errorf("Secondary = %q; a redirect through the mirror to the CDN is not a mirror copy", links.Secondary)
	}
	if links.Listing != "https://chromewebstore.google.com/detail/x/abc" {
		t.Errorf("Listing = %q", links.Listing)
	}
	if len(links.Unclassified) != 1 {
		t.Errorf("second CDN link should be unclassified, got %+v", links.Unclassified)
	}
}
