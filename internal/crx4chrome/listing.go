package crx4chrome

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Pagination is the page position reported by a history page.
//
// On the real last page the final numbered link is the page before it, so
// EndPage reads one less than the true last page there. Callers stop when
// CurPage >= EndPage, which still terminates correctly.
type Pagination struct {
	CurPage int `json:"curPage"`
	EndPage int `json:"endPage"`
}

// HistoryEntry is one row of the version history list.
type HistoryEntry struct {
	DetailPageRef string   `json:"crxPage"`
	RawMetadata   []string `json:"metadata"`
}

// ListingPage is one parsed history page.
type ListingPage struct {
	Rows       []HistoryEntry
	Pagination Pagination
}

// FetchListingPage fetches and parses a history page.
func (c *Client) FetchListingPage(url string) (ListingPage, error) {
	doc, err := c.fetchDocument(url)
	if err != nil {
		return ListingPage{}, err
	}
	return parseListing(doc)
}

func parseListing(doc *goquery.Document) (ListingPage, error) {
	p, err := parsePagination(doc)
	if err != nil {
		return ListingPage{}, err
	}
	rows, err := parseHistoryRows(doc)
	if err != nil {
		return ListingPage{}, err
	}
	return ListingPage{Rows: rows, Pagination: p}, nil
}

func parsePagination(doc *goquery.Document) (Pagination, error) {
	box := doc.Find(".pagination").First()
	// No controls when there is only one page.
	if box.Length() == 0 {
		return Pagination{CurPage: 1, EndPage: 1}, nil
	}

	cur, err := pageNumber(box.Find(".current").First())
	if err != nil {
		return Pagination{}, fmt.Errorf("%w: current page: %v", ErrPaginationParse, err)
	}
	end, err := pageNumber(box.Find("a:not(.next)").Last())
	if err != nil {
		return Pagination{}, fmt.Errorf("%w: end page: %v", ErrPaginationParse, err)
	}
	return Pagination{CurPage: cur, EndPage: end}, nil
}

func pageNumber(s *goquery.Selection) (int, error) {
	if s.Length() == 0 {
		return 0, fmt.Errorf("element missing")
	}
	text := cleanText(s.Text())
	if text == "" {
		return 0, fmt.Errorf("element has no text")
	}
	return strconv.Atoi(text)
}

func parseHistoryRows(doc *goquery.Document) ([]HistoryEntry, error) {
	list := doc.Find("ol.history").First()
	if list.Length() == 0 {
		return nil, ErrHistoryListMissing
	}

	var rows []HistoryEntry
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		href, _ := li.Find("a").First().Attr("href")
		var meta []string
		li.Children().Each(func(_ int, child *goquery.Selection) {
			meta = append(meta, cleanText(child.Text()))
		})
		rows = append(rows, HistoryEntry{
			DetailPageRef: strings.TrimSpace(href),
			RawMetadata:   meta,
		})
	})
	return rows, nil
}
