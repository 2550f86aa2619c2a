package fetch

import "errors"

// Transport errors.
var (
	// ErrNotFound is returned when the remote reports 404 Not Found.
	ErrNotFound = errors.New("not found")
	// ErrUnexpectedStatus is returned for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrEmptyBody is returned when a download response carries no payload.
	ErrEmptyBody = errors.New("empty response body")
	// ErrMalformedResponse is returned when the update service answer is not JSON.
	ErrMalformedResponse = errors.New("malformed update service response")
)
