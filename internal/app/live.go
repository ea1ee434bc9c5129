package service

import (
	"context"

	"github.com/okian/livetable/internal/domain/standings"
	"github.com/okian/livetable/pkg/logger"
	"github.com/okian/livetable/pkg/metrics"
)

// LiveSource lists a league's matches in a given status.
type LiveSource interface {
	LiveMatches(ctx context.Context, status string) ([]standings.LiveMatch, error)
}

// LiveFetcher retrieves in-progress matches on a best-effort basis.
//
// Strategy: ask for StatusLive; when that yields nothing (empty or failed),
// ask for StatusInPlay. A failed step contributes no matches. The fetcher
// never returns an error because the base table must be served regardless.
type LiveFetcher struct {
	source LiveSource
	logger logger.Logger
}

// NewLiveFetcher creates a fetcher over source.
func NewLiveFetcher(source LiveSource, l logger.Logger) *LiveFetcher {
	return &LiveFetcher{source: source, logger: l}
}

// fetchResult is the outcome of one query step.
type fetchResult struct {
	status  string
	matches []standings.LiveMatch
	err     error
}

// empty reports whether the step produced no usable matches.
func (r fetchResult) empty() bool { return r.err != nil || len(r.matches) == 0 }

func (f *LiveFetcher) attempt(ctx context.Context, status string) fetchResult {
	matches, err := f.source.LiveMatches(ctx, status)
	return fetchResult{status: status, matches: matches, err: err}
}

// Fetch returns the current in-progress matches, or an empty slice.
func (f *LiveFetcher) Fetch(ctx context.Context) []standings.LiveMatch {
	res := f.attempt(ctx, standings.StatusLive)
	f.noteFailure(ctx, res)

	if res.empty() {
		metrics.RecordLiveFallback()
		res = f.attempt(ctx, standings.StatusInPlay)
		f.noteFailure(ctx, res)
	}

	if res.err != nil || res.matches == nil {
		return []standings.LiveMatch{}
	}
	return res.matches
}

// noteFailure logs and counts a failed step; the step's result is then
// treated as no live matches.
func (f *LiveFetcher) noteFailure(ctx context.Context, res fetchResult) {
	if res.err == nil {
		return
	}
	metrics.RecordLiveDegraded()
	if f.logger != nil {
		f.logger.Warn(ctx, "live match query failed; treating as no live matches",
			logger.String("status", res.status),
			logger.Error(res.err),
		)
	}
}
