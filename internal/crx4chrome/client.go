// Package crx4chrome scrapes the crx4chrome mirror: the extension overview,
// the paginated version history and the per-version detail pages. All DOM
// handling lives here; callers only see typed results.
package crx4chrome

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultBaseURL = "https://www.crx4chrome.com"

// Client fetches mirror pages. Requests have no timeout and are never retried.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Client. An empty baseURL uses the public site; a nil
// httpClient uses a plain http.Client.
func New(baseURL, userAgent string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
	}
}

// BaseURL returns the site root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// url resolves a site-relative path.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) get(url string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) fetchText(url string) (string, error) {
	body, err := c.get(url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) fetchDocument(url string) (*goquery.Document, error) {
	body, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("could not parse page %s: %w", url, err)
	}
	return doc, nil
}

var spaceRun = regexp.MustCompile(`\s+`)

// cleanText collapses whitespace the way a browser renders text content.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
