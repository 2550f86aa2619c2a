package history

import "errors"

var (
	// ErrPageNumberMismatch is returned when a listing page reports a
	// different page number than the one requested.
	ErrPageNumberMismatch = errors.New("listing page number mismatch")
	// ErrMetadataFileMissing is returned when the metadata file does not exist.
	ErrMetadataFileMissing = errors.New("metadata file not found")
)
