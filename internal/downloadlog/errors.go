package downloadlog

import "errors"

var (
	// ErrInvalidLog is returned when a persisted log fails schema validation.
	ErrInvalidLog = errors.New("download log does not match schema")
	// ErrNoPrimaryLink is returned when a planned version has no vendor link.
	ErrNoPrimaryLink = errors.New("version has no vendor download link")
)
