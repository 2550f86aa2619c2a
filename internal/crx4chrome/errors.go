package crx4chrome

import "errors"

// Structural scrape errors. Any of these aborts the run: the page no longer
// looks like what the extractor understands.
var (
	ErrSiteIDNotFound       = errors.New("could not find site id on overview page")
	ErrPaginationParse      = errors.New("could not parse pagination")
	ErrHistoryListMissing   = errors.New("could not find history list")
	ErrInvalidDetailPath    = errors.New("detail page path must start with /crx/")
	ErrMetadataBlockMissing = errors.New("could not find metadata block")
	ErrLinksBlockMissing    = errors.New("could not find download links block")
	ErrInvalidMetadata      = errors.New("detail page metadata is incomplete")
	ErrPrimaryLinkMissing   = errors.New("no vendor CDN download link")
	ErrUnexpectedStatus     = errors.New("unexpected response status")
)
