package reconcile

import "errors"

// ErrNoMetadata is returned when a planned attempt has no metadata entry.
// The plan and the metadata file are out of sync, so the run stops.
var ErrNoMetadata = errors.New("no metadata entry for download")
