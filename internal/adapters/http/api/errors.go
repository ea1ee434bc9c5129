package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = NewKind("bad request")
	ErrNotFound   = NewKind("not found")
	ErrUpstream   = NewKind("upstream failure")
)

// NewKind declares an error kind that callers match with errors.Is.
func NewKind(name string) error {
	return errors.New(name)
}

// WrapKind tags err with kind and op, keeping both reachable via errors.Is.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
