// Package service provides the aggregation facade that builds base and live
// league tables for the HTTP API.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/okian/livetable/internal/adapters/cache"
	"github.com/okian/livetable/internal/domain/standings"
	"github.com/okian/livetable/pkg/logger"
	"github.com/okian/livetable/pkg/metrics"
)

// Default cache windows.
const (
	DefaultStandingsTTL = 3 * time.Minute
	DefaultLiveTTL      = time.Minute
)

// Provider is an upstream that serves both standings and live matches.
type Provider interface {
	LiveSource

	// Standings returns the adapted current season table.
	Standings(ctx context.Context) (standings.Season, error)

	Name() string
	League() string
	HasCredentials() bool
}

// BaseTable is the season table without live adjustment.
type BaseTable struct {
	League      string                   `json:"league"`
	Competition string                   `json:"competition"`
	SeasonUsed  *int                     `json:"seasonUsed"`
	Source      string                   `json:"source"`
	Rows        []standings.TeamStanding `json:"rows"`
}

// LiveTable is the provisional table with in-progress matches folded in.
type LiveTable struct {
	League      string                   `json:"league"`
	Competition string                   `json:"competition"`
	SeasonUsed  *int                     `json:"seasonUsed"`
	Source      string                   `json:"source"`
	LiveCount   int                      `json:"liveCount"`
	Rows        []standings.TeamStanding `json:"rows"`
}

// Service implements the API dependencies for the standings system.
type Service struct {
	provider Provider
	cache    *cache.TTLCache
	live     *LiveFetcher

	standingsTTL time.Duration
	liveTTL      time.Duration

	standingsKey string
	liveKey      string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCache shares an existing cache. Without it the service owns a private one.
func WithCache(c *cache.TTLCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithStandingsTTL sets how long base standings are served from cache.
func WithStandingsTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.standingsTTL = d
		}
	}
}

// WithLiveTTL sets how long the live match list is served from cache.
func WithLiveTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.liveTTL = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service reading from provider.
func New(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		standingsTTL: DefaultStandingsTTL,
		liveTTL:      DefaultLiveTTL,
		standingsKey: "standings:" + provider.Name() + ":" + provider.League(),
		liveKey:      "live:" + provider.Name() + ":" + provider.League(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.live = NewLiveFetcher(provider, s.logger)
	return s
}

// Source returns the upstream provider name.
func (s *Service) Source() string { return s.provider.Name() }

// HasCredentials reports whether the provider has an API key configured.
func (s *Service) HasCredentials() bool { return s.provider.HasCredentials() }

// season returns the cached base standings or fetches and caches them.
// The returned value aliases the cache and must not be modified.
func (s *Service) season(ctx context.Context) (standings.Season, error) {
	if hit, ok := cache.Lookup[standings.Season](s.cache, s.standingsKey, s.standingsTTL); ok {
		return hit, nil
	}

	season, err := s.provider.Standings(ctx)
	if err != nil {
		s.logger.Error(ctx, "base standings fetch failed",
			logger.String("provider", s.provider.Name()),
			logger.Error(err),
		)
		return standings.Season{}, err
	}
	s.cache.Set(s.standingsKey, season)
	s.logger.Debug(ctx, "base standings refreshed",
		logger.String("competition", season.Competition),
		logger.Int("rows", len(season.Rows)),
	)
	return season, nil
}

// liveMatches returns the cached live match list or fetches and caches it.
func (s *Service) liveMatches(ctx context.Context) []standings.LiveMatch {
	if hit, ok := cache.Lookup[[]standings.LiveMatch](s.cache, s.liveKey, s.liveTTL); ok {
		return hit
	}
	matches := s.live.Fetch(ctx)
	s.cache.Set(s.liveKey, matches)
	metrics.UpdateLiveMatches(len(matches))
	return matches
}

// GetBaseTable returns the season table as ranked upstream.
func (s *Service) GetBaseTable(ctx context.Context) (BaseTable, error) {
	start := time.Now()
	season, err := s.season(ctx)
	if err != nil {
		metrics.RecordTableBuild("base", "error", msSince(start))
		return BaseTable{}, fmt.Errorf("base table: %w", err)
	}
	season = season.Clone()
	metrics.RecordTableBuild("base", "ok", msSince(start))
	return BaseTable{
		League:      s.provider.League(),
		Competition: season.Competition,
		SeasonUsed:  season.SeasonYear,
		Source:      s.provider.Name(),
		Rows:        season.Rows,
	}, nil
}

// GetLiveTable returns the base table with live matches applied and ranks
// recomputed. LiveCount is the number of live matches fetched, whether or
// not both participants were found in the table.
func (s *Service) GetLiveTable(ctx context.Context) (LiveTable, error) {
	start := time.Now()
	season, err := s.season(ctx)
	if err != nil {
		metrics.RecordTableBuild("live", "error", msSince(start))
		return LiveTable{}, fmt.Errorf("live table: %w", err)
	}

	matches := s.liveMatches(ctx)
	rows, outcome := standings.Apply(season.Rows, matches)
	standings.Rank(rows)

	metrics.RecordLiveAdjustment(outcome.Applied, outcome.Skipped)
	metrics.UpdateTableRows(len(rows))
	metrics.RecordTableBuild("live", "ok", msSince(start))
	if outcome.Skipped > 0 {
		s.logger.Debug(ctx, "live matches skipped for unknown teams", logger.Int("skipped", outcome.Skipped))
	}

	var year *int
	if season.SeasonYear != nil {
		y := *season.SeasonYear
		year = &y
	}
	return LiveTable{
		League:      s.provider.League(),
		Competition: season.Competition,
		SeasonUsed:  year,
		Source:      s.provider.Name(),
		LiveCount:   len(matches),
		Rows:        rows,
	}, nil
}

// FindTeam returns the live row whose team name best matches query.
func (s *Service) FindTeam(ctx context.Context, query string) (standings.TeamStanding, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return standings.TeamStanding{}, ErrEmptyQuery
	}
	table, err := s.GetLiveTable(ctx)
	if err != nil {
		return standings.TeamStanding{}, err
	}

	names := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		names[i] = r.Team.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return standings.TeamStanding{}, fmt.Errorf("%w: %q", ErrTeamNotFound, query)
	}
	sort.Sort(ranks)
	return table.Rows[ranks[0].OriginalIndex], nil
}

// Warm refreshes whichever cache entries are stale. It is run by the cache
// warmer so requests rarely pay for the upstream round trip.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.GetLiveTable(ctx)
	return err
}

// LiveSummary describes the current live match list for diagnostics.
type LiveSummary struct {
	LiveCount int            `json:"liveCount"`
	ByStatus  map[string]int `json:"byStatus"`
	SampleIDs []int          `json:"sampleIds"`
}

const liveSampleSize = 5

// LiveSummary counts the cached live matches by status. Matches without a
// status are counted under "UNK".
func (s *Service) LiveSummary(ctx context.Context) LiveSummary {
	matches := s.liveMatches(ctx)
	sum := LiveSummary{
		LiveCount: len(matches),
		ByStatus:  make(map[string]int),
		SampleIDs: make([]int, 0, min(len(matches), liveSampleSize)),
	}
	for i, m := range matches {
		status := m.Status
		if status == "" {
			status = "UNK"
		}
		sum.ByStatus[status]++
		if i < liveSampleSize {
			sum.SampleIDs = append(sum.SampleIDs, m.ID)
		}
	}
	return sum
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	entries := make(map[string]interface{})
	for _, k := range s.cache.Keys() {
		if age, ok := s.cache.Age(k); ok {
			entries[k] = map[string]interface{}{"ageMs": age.Milliseconds()}
		}
	}
	return map[string]interface{}{
		"provider":       s.provider.Name(),
		"league":         s.provider.League(),
		"hasKey":         s.provider.HasCredentials(),
		"standingsTtlMs": s.standingsTTL.Milliseconds(),
		"liveTtlMs":      s.liveTTL.Milliseconds(),
		"cache":          entries,
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
