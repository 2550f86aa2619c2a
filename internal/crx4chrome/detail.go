package crx4chrome

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/blackwell-systems/crxledger/internal/checksum"
	"github.com/blackwell-systems/crxledger/internal/extversion"
	"github.com/blackwell-systems/crxledger/internal/logger"
)

const detailPrefix = "/crx/"

// Metadata keys every detail page must carry.
const (
	KeyCrxFile        = "crx-file"
	KeyFileSize       = "file-size"
	KeyPackageVersion = "package-version"
	KeyUpdatedOn      = "updated-on"
)

var requiredKeys = []string{KeyCrxFile, KeyFileSize, KeyPackageVersion, KeyUpdatedOn}

// KV is one "Label: value" line of the metadata block, in page order.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Anchor is a raw link from the download block.
type Anchor struct {
	Title string `json:"title,omitempty"`
	Href  string `json:"href"`
	Text  string `json:"text,omitempty"`
}

// DetailPage is a parsed, not yet validated, version detail page.
type DetailPage struct {
	Path     string   `json:"path"`
	URL      string   `json:"url"`
	Metadata []KV     `json:"metadata"`
	Links    []Anchor `json:"links"`
}

// VersionDetail is the validated record for one published version.
type VersionDetail struct {
	DetailPath string              `json:"detailPage"`
	Version    string              `json:"version"`
	UpdatedAt  string              `json:"updatedOn"`
	CrxFile    string              `json:"crxFile"`
	FileSize   string              `json:"fileSize"`
	Hashes     checksum.PartialSet `json:"hashes"`
	Links      DownloadLinks       `json:"crx"`
}

// DetailPathFromURL converts a full detail URL on the mirror to its path.
func (c *Client) DetailPathFromURL(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, prefix := range []string{c.baseURL, defaultBaseURL} {
		if strings.HasPrefix(ref, prefix+detailPrefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}

// FetchDetailPage fetches and parses the detail page at path (/crx/<n>/).
// Full URLs on the mirror are accepted and reduced to their path.
func (c *Client) FetchDetailPage(path string) (DetailPage, error) {
	path = c.DetailPathFromURL(path)
	if !strings.HasPrefix(path, detailPrefix) {
		return DetailPage{}, fmt.Errorf("%w: %q", ErrInvalidDetailPath, path)
	}
	url := c.url(path)
	doc, err := c.fetchDocument(url)
	if err != nil {
		return DetailPage{}, err
	}
	page, err := parseDetail(doc)
	if err != nil {
		return DetailPage{}, fmt.Errorf("%s: %w", path, err)
	}
	page.Path = path
	page.URL = url
	return page, nil
}

func parseDetail(doc *goquery.Document) (DetailPage, error) {
	metaBlock := doc.Find("ul.crx-meta").First()
	if metaBlock.Length() == 0 {
		return DetailPage{}, ErrMetadataBlockMissing
	}
	linkBlock := doc.Find("div.crx-download").First()
	if linkBlock.Length() == 0 {
		return DetailPage{}, ErrLinksBlockMissing
	}

	var page DetailPage
	metaBlock.Find("li").Each(func(_ int, li *goquery.Selection) {
		label, value, ok := strings.Cut(cleanText(li.Text()), ":")
		if !ok {
			return
		}
		key := kebab(label)
		if key == "" {
			return
		}
		page.Metadata = append(page.Metadata, KV{Key: key, Value: strings.TrimSpace(value)})
	})
	linkBlock.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		title, _ := a.Attr("title")
		page.Links = append(page.Links, Anchor{
			Title: strings.TrimSpace(title),
			Href:  strings.TrimSpace(href),
			Text:  cleanText(a.Text()),
		})
	})
	return page, nil
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// kebab lower-cases a label and joins its words with dashes.
func kebab(label string) string {
	return strings.Trim(nonAlnumRun.ReplaceAllString(strings.ToLower(label), "-"), "-")
}

// Get returns the first value recorded for key.
func (p DetailPage) Get(key string) (string, bool) {
	for _, kv := range p.Metadata {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// hashAlgorithm maps a metadata key such as "sha256", "sha-256" or
// "crc32-checksum" to its algorithm.
func hashAlgorithm(key string) (checksum.Algorithm, bool) {
	k := strings.TrimSuffix(strings.TrimSuffix(key, "-checksum"), "-hash")
	k = strings.ReplaceAll(k, "-", "")
	a, err := checksum.ParseAlgorithm(k)
	if err != nil {
		return "", false
	}
	return a, true
}

// Hashes collects the published digests on the page.
func (p DetailPage) Hashes() (checksum.PartialSet, error) {
	digests := make(map[checksum.Algorithm]string)
	for _, kv := range p.Metadata {
		if a, ok := hashAlgorithm(kv.Key); ok {
			if _, seen := digests[a]; !seen {
				digests[a] = kv.Value
			}
		}
	}
	return checksum.NewPartialSet(digests)
}

// VersionDetail validates the page and builds the typed record. A page
// without a vendor CDN link is rejected; a missing mirror or storefront link
// is only logged.
func (p DetailPage) VersionDetail() (VersionDetail, error) {
	values := make(map[string]string, len(requiredKeys))
	var missing []string
	for _, k := range requiredKeys {
		v, ok := p.Get(k)
		if !ok || v == "" {
			missing = append(missing, k)
			continue
		}
		values[k] = v
	}
	if len(missing) > 0 {
		return VersionDetail{}, fmt.Errorf("%w: %s: missing %s", ErrInvalidMetadata, p.Path, strings.Join(missing, ", "))
	}

	version, err := extversion.Extract(values[KeyPackageVersion])
	if err != nil {
		return VersionDetail{}, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, p.Path, err)
	}
	hashes, err := p.Hashes()
	if err != nil {
		return VersionDetail{}, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, p.Path, err)
	}

	links := ClassifyLinks(p.Links)
	if links.Primary == "" {
		return VersionDetail{}, fmt.Errorf("%w: %s (version %s)", ErrPrimaryLinkMissing, p.Path, version)
	}
	if links.Secondary == "" {
		logger.L().Warnw("detail page has no mirror download link", "page", p.Path, "version", version)
	}
	if links.Listing == "" {
		logger.L().Warnw("detail page has no storefront link", "page", p.Path, "version", version)
	}

	return VersionDetail{
		DetailPath: p.Path,
		Version:    version,
		UpdatedAt:  values[KeyUpdatedOn],
		CrxFile:    values[KeyCrxFile],
		FileSize:   values[KeyFileSize],
		Hashes:     hashes,
		Links:      links,
	}, nil
}
