package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrTeamNotFound = errors.New("team not found")
	ErrEmptyQuery   = errors.New("empty team query")
)
