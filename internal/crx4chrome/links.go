package crx4chrome

import (
	"net/url"
	"strings"
)

// Anchor titles the mirror uses on its download buttons.
const (
	PrimaryTitle = "Download crx from Google CDN"
	MirrorTitle  = "Download crx from crx4chrome"
)

// MirrorDomain is the host suffix of mirror-hosted copies.
const MirrorDomain = "crx4chrome.com"

// VendorPrefixes are the targets that identify a vendor CDN copy.
var VendorPrefixes = []string{
	"https://clients2.google.com/service/update2/crx",
	"https://clients2.googleusercontent.com/crx/",
}

// StorefrontPrefixes identify the extension's store listing.
var StorefrontPrefixes = []string{
	"https://chrome.google.com/webstore/detail/",
	"https://chromewebstore.google.com/detail/",
}

// DownloadLinks is the classified download block of a detail page.
type DownloadLinks struct {
	// Primary is the vendor CDN copy. Always set on a valid detail.
	Primary   string `json:"google"`
	Secondary string `json:"crx4chrome,omitempty"`
	Listing   string `json:"webstore,omitempty"`
	// Unclassified anchors are kept for audit only.
	Unclassified []Anchor `json:"unclassified,omitempty"`
}

// ClassifyLinks sorts anchors into primary, secondary and storefront links.
// Each anchor lands in the first category it satisfies; within a category
// the first anchor wins and later ones are unclassified.
func ClassifyLinks(anchors []Anchor) DownloadLinks {
	var links DownloadLinks
	for _, a := range anchors {
		target := redirectTarget(a.Href)
		switch {
		case links.Primary == "" && isPrimary(a, target):
			links.Primary = target
		case links.Secondary == "" && isSecondary(a, target):
			links.Secondary = target
		case links.Listing == "" && isStorefront(a, target):
			links.Listing = stripTracking(target)
		default:
			links.Unclassified = append(links.Unclassified, a)
		}
	}
	return links
}

// redirectTarget returns the url query parameter of an outbound redirect
// link, or the href itself.
func redirectTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if t := u.Query().Get("url"); t != "" {
		return t
	}
	return href
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isPrimary(a Anchor, target string) bool {
	return a.Title == PrimaryTitle || hasAnyPrefix(target, VendorPrefixes)
}

func isSecondary(a Anchor, target string) bool {
	if a.Title == MirrorTitle {
		return true
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == MirrorDomain || strings.HasSuffix(host, "."+MirrorDomain)
}

func isStorefront(a Anchor, target string) bool {
	return hasAnyPrefix(a.Title, StorefrontPrefixes) ||
		hasAnyPrefix(a.Href, StorefrontPrefixes) ||
		hasAnyPrefix(target, StorefrontPrefixes)
}

// stripTracking removes utm_* parameters from a storefront URL.
func stripTracking(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
