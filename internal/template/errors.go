package template

import (
	"errors"
	"fmt"
)

// ErrFetch indicates the template archive could not be downloaded.
var ErrFetch = errors.New("template fetch failed")

// FetchError describes a failed archive download.
type FetchError struct {
	// URL is the archive URL that was requested
	URL string

	// StatusCode is the HTTP status, or 0 for transport and content failures
	StatusCode int

	// Err is the underlying cause, if any
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes both ErrFetch and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
