package history

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/blackwell-systems/crxledger/internal/crx4chrome"
)

// moreAboutPrefix marks per-extension "More about ..." labels, which are
// folded into one example list keyed by the label.
const moreAboutPrefix = "more-about-"

// DetailFetcher fetches one detail page.
type DetailFetcher interface {
	FetchDetailPage(path string) (crx4chrome.DetailPage, error)
}

// PageError is a sample page that could not be scraped.
type PageError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// MoreAbout is one folded more-about-* value and the key it came from.
type MoreAbout struct {
	Value string `json:"value"`
	Key   string `json:"key"`
}

// SampleReport lists the metadata keys observed across sampled detail
// pages, with up to Limit distinct example values per key.
type SampleReport struct {
	Examples        map[string][]string `json:"examples"`
	MoreAbout       []MoreAbout         `json:"moreAbout,omitempty"`
	Errors          []PageError         `json:"errorDetails"`
	AllMetadataKeys []string            `json:"allMetadataKeys"`
}

// Sampler surveys detail pages to learn which metadata keys the mirror
// publishes.
type Sampler struct {
	fetcher DetailFetcher
	Limit   int

	// OnPage, if set, is called after each page, scraped or not.
	OnPage func(done, total int)
}

// NewSampler returns a Sampler keeping up to limit examples per key.
func NewSampler(f DetailFetcher, limit int) *Sampler {
	return &Sampler{fetcher: f, Limit: limit}
}

// ReadSampleList reads one detail URL or path per line, skipping blanks.
// At most limit lines are returned when limit > 0.
func ReadSampleList(r io.Reader, limit int) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, sc.Err()
}

// Sample scrapes every path. Failures are collected in the report.
func (s *Sampler) Sample(paths []string) SampleReport {
	rep := SampleReport{Examples: make(map[string][]string), Errors: []PageError{}}
	keys := make(map[string]bool)
	seenMoreAbout := make(map[string]bool)

	for i, path := range paths {
		page, err := s.fetcher.FetchDetailPage(path)
		if err != nil {
			rep.Errors = append(rep.Errors, PageError{Path: path, Error: err.Error()})
		} else {
			for _, kv := range page.Metadata {
				keys[kv.Key] = true
				if strings.HasPrefix(kv.Key, moreAboutPrefix) {
					if !seenMoreAbout[kv.Key] && s.room(len(rep.MoreAbout)) {
						seenMoreAbout[kv.Key] = true
						rep.MoreAbout = append(rep.MoreAbout, MoreAbout{Value: kv.Value, Key: kv.Key})
					}
					continue
				}
				ex := rep.Examples[kv.Key]
				if s.room(len(ex)) && !contains(ex, kv.Value) {
					rep.Examples[kv.Key] = append(ex, kv.Value)
				}
			}
		}
		if s.OnPage != nil {
			s.OnPage(i+1, len(paths))
		}
	}

	for k := range keys {
		rep.AllMetadataKeys = append(rep.AllMetadataKeys, k)
	}
	sort.Strings(rep.AllMetadataKeys)
	return rep
}

func (s *Sampler) room(n int) bool {
	return s.Limit <= 0 || n < s.Limit
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
