package crx4chrome

import (
	"fmt"
	"regexp"
	"strconv"
)

// Overview identifies an extension on the mirror.
type Overview struct {
	ExtensionID string `json:"extensionId"`
	OverviewURL string `json:"overviewPageURL"`
	// SiteID is the mirror's internal id for the extension.
	SiteID     int    `json:"siteId"`
	HistoryURL string `json:"versionHistoryURL"`
}

// ListingURL returns the URL of history page n (1-based).
func (o Overview) ListingURL(page int) string {
	return fmt.Sprintf("%s/%d/", o.HistoryURL, page)
}

var siteIDPattern = regexp.MustCompile(`href="/history/(\d+)/"`)

// FetchOverview discovers the site id of extensionID from its overview page.
func (c *Client) FetchOverview(extensionID string) (Overview, error) {
	overviewURL := c.url("/extensions/" + extensionID + "/")
	src, err := c.fetchText(overviewURL)
	if err != nil {
		return Overview{}, err
	}

	m := siteIDPattern.FindStringSubmatch(src)
	if m == nil {
		return Overview{}, fmt.Errorf("%w: %s", ErrSiteIDNotFound, overviewURL)
	}
	siteID, err := strconv.Atoi(m[1])
	if err != nil {
		return Overview{}, fmt.Errorf("%w: %s: %v", ErrSiteIDNotFound, overviewURL, err)
	}

	return Overview{
		ExtensionID: extensionID,
		OverviewURL: overviewURL,
		SiteID:      siteID,
		HistoryURL:  c.url(fmt.Sprintf("/history/%d", siteID)),
	}, nil
}
