package upstream

import (
	"errors"
	"fmt"
)

// ErrFetch marks every failure to obtain a payload from an upstream provider.
var ErrFetch = errors.New("upstream fetch failed")

// StatusError is returned when a provider answers with a non-success status.
type StatusError struct {
	Provider   string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Provider, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Path, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrFetch) match status failures.
func (e *StatusError) Unwrap() error { return ErrFetch }

// StatusCode extracts the upstream status code carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
