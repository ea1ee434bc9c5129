// Package footballdata adapts the football-data.org v4 API to the canonical
// standings model.
package footballdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/livetable/internal/adapters/upstream"
	"github.com/okian/livetable/internal/domain/standings"
)

// Provider is the name reported in tables, errors and metrics.
const Provider = "football-data"

// DefaultBaseURL is the public v4 endpoint.
const DefaultBaseURL = "https://api.football-data.org/v4"

const (
	authHeader         = "X-Auth-Token"
	totalTable         = "TOTAL"
	defaultCompetition = "Premier League"
)

// Client reads standings and live matches for one competition code (e.g. "PL").
type Client struct {
	http   *upstream.Client
	league string
}

// New creates a client for league using token for authentication.
func New(baseURL, token, league string, opts ...upstream.Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]upstream.Option{upstream.WithHeader(authHeader, token)}, opts...)
	return &Client{
		http:   upstream.NewClient(Provider, baseURL, opts...),
		league: league,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return Provider }

// League returns the configured competition code.
func (c *Client) League() string { return c.league }

// HasCredentials reports whether an API token is configured.
func (c *Client) HasCredentials() bool { return c.http.HasHeader(authHeader) }

// Standings fetches the current season's TOTAL table.
func (c *Client) Standings(ctx context.Context) (standings.Season, error) {
	var resp standingsResponse
	path := fmt.Sprintf("/competitions/%s/standings", url.PathEscape(c.league))
	if err := c.http.GetJSON(ctx, "standings", path, nil, &resp); err != nil {
		return standings.Season{}, err
	}
	return adaptStandings(resp), nil
}

// LiveMatches fetches the competition's matches with the given status.
func (c *Client) LiveMatches(ctx context.Context, status string) ([]standings.LiveMatch, error) {
	var resp matchesResponse
	path := fmt.Sprintf("/competitions/%s/matches", url.PathEscape(c.league))
	if err := c.http.GetJSON(ctx, "matches", path, url.Values{"status": {status}}, &resp); err != nil {
		return nil, err
	}
	return adaptMatches(resp), nil
}

func adaptStandings(resp standingsResponse) standings.Season {
	competition := resp.Competition.Name
	if competition == "" {
		competition = defaultCompetition
	}

	var table []tableRow
	for _, s := range resp.Standings {
		if s.Type == totalTable {
			table = s.Table
			break
		}
	}

	rows := make([]standings.TeamStanding, 0, len(table))
	for _, r := range table {
		logo := r.Team.Crest
		if strings.TrimSpace(logo) == "" {
			logo = standings.PlaceholderLogo
		}
		rows = append(rows, standings.TeamStanding{
			Rank:   r.Position,
			Team:   standings.Team{ID: r.Team.ID, Name: r.Team.Name, Logo: logo},
			Points: r.Points,
			All: standings.Record{
				Win:   r.Won,
				Draw:  r.Draw,
				Lose:  r.Lost,
				Goals: standings.Goals{For: r.GoalsFor, Against: r.GoalsAgainst},
			},
		})
	}

	return standings.Season{
		Competition: competition,
		SeasonYear:  seasonYear(resp.Season.StartDate, resp.Season.Year),
		Rows:        standings.Normalize(rows),
	}
}

// seasonYear prefers the year of the season start date ("2025-08-15") and
// falls back to the explicit year field.
func seasonYear(startDate string, year *int) *int {
	if len(startDate) >= 4 {
		if y, err := strconv.Atoi(startDate[:4]); err == nil && y > 0 {
			return &y
		}
	}
	if year != nil && *year > 0 {
		y := *year
		return &y
	}
	return nil
}

func adaptMatches(resp matchesResponse) []standings.LiveMatch {
	out := make([]standings.LiveMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hs, as := upstream.PickScore(m.Score.FullTime, m.Score.RegularTime, m.Score.HalfTime)
		status := m.Status
		if status == "" {
			status = m.Score.Duration
		}
		out = append(out, standings.LiveMatch{
			ID:         m.ID,
			Status:     status,
			HomeTeamID: m.HomeTeam.ID,
			AwayTeamID: m.AwayTeam.ID,
			HomeScore:  hs,
			AwayScore:  as,
		})
	}
	return out
}
