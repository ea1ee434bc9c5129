// Package apifootball adapts the API-Football v3 API to the canonical
// standings model.
package apifootball

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/livetable/internal/adapters/upstream"
	"github.com/okian/livetable/internal/domain/standings"
)

// Provider is the name reported in tables, errors and metrics.
const Provider = "api-football"

// DefaultBaseURL is the public v3 endpoint.
const DefaultBaseURL = "https://v3.football.api-sports.io"

const (
	authHeader = "x-apisports-key"
	// inPlayStatuses lists the short codes of a match that has kicked off
	// and not finished.
	inPlayStatuses = "1H-HT-2H-ET-BT-P"
	// seasonStartMonth is the month European seasons are labelled from.
	seasonStartMonth = time.July
)

// Client reads standings and live fixtures for one league id (e.g. 39).
type Client struct {
	http   *upstream.Client
	league int
	season int
}

// New creates a client for league. A season <= 0 selects the season that
// is current today.
func New(baseURL, key string, league, season int, opts ...upstream.Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if season <= 0 {
		season = CurrentSeason(time.Now())
	}
	opts = append([]upstream.Option{upstream.WithHeader(authHeader, key)}, opts...)
	return &Client{
		http:   upstream.NewClient(Provider, baseURL, opts...),
		league: league,
		season: season,
	}
}

// CurrentSeason returns the starting year of the season in progress at now.
func CurrentSeason(now time.Time) int {
	if now.Month() >= seasonStartMonth {
		return now.Year()
	}
	return now.Year() - 1
}

// Name returns the provider name.
func (c *Client) Name() string { return Provider }

// League returns the configured league id as text.
func (c *Client) League() string { return strconv.Itoa(c.league) }

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool { return c.http.HasHeader(authHeader) }

// Standings fetches the first standings group of the league season.
func (c *Client) Standings(ctx context.Context) (standings.Season, error) {
	var resp envelope[standingsItem]
	q := url.Values{
		"league": {strconv.Itoa(c.league)},
		"season": {strconv.Itoa(c.season)},
	}
	if err := c.http.GetJSON(ctx, "standings", "/standings", q, &resp); err != nil {
		return standings.Season{}, err
	}
	if err := c.checkErrors("/standings", resp.Errors); err != nil {
		return standings.Season{}, err
	}
	return adaptStandings(resp.Response), nil
}

// LiveMatches fetches fixtures currently in play. StatusLive asks for the
// provider's live feed; any other status asks for fixtures by in-play codes.
func (c *Client) LiveMatches(ctx context.Context, status string) ([]standings.LiveMatch, error) {
	q := url.Values{"league": {strconv.Itoa(c.league)}}
	if status == standings.StatusLive {
		q.Set("live", "all")
	} else {
		q.Set("season", strconv.Itoa(c.season))
		q.Set("status", inPlayStatuses)
	}

	var resp envelope[fixtureItem]
	if err := c.http.GetJSON(ctx, "fixtures", "/fixtures", q, &resp); err != nil {
		return nil, err
	}
	if err := c.checkErrors("/fixtures", resp.Errors); err != nil {
		return nil, err
	}
	return adaptFixtures(resp.Response), nil
}

// checkErrors turns a populated errors field into a StatusError. The API
// reports these with HTTP 200, so they surface as a bad gateway.
func (c *Client) checkErrors(path string, raw []byte) error {
	body := strings.TrimSpace(string(raw))
	switch body {
	case "", "null", "[]", "{}":
		return nil
	}
	return &upstream.StatusError{
		Provider:   Provider,
		Path:       path,
		StatusCode: http.StatusBadGateway,
		Body:       body,
	}
}

func adaptStandings(items []standingsItem) standings.Season {
	season := standings.Season{Rows: []standings.TeamStanding{}}
	if len(items) == 0 {
		return season
	}
	league := items[0].League
	season.Competition = league.Name
	if league.Season != nil && *league.Season > 0 {
		y := *league.Season
		season.SeasonYear = &y
	}
	if len(league.Standings) == 0 {
		return season
	}

	group := league.Standings[0]
	rows := make([]standings.TeamStanding, 0, len(group))
	for _, r := range group {
		logo := r.Team.Logo
		if strings.TrimSpace(logo) == "" {
			logo = standings.PlaceholderLogo
		}
		rows = append(rows, standings.TeamStanding{
			Rank:   r.Rank,
			Team:   standings.Team{ID: r.Team.ID, Name: r.Team.Name, Logo: logo},
			Points: r.Points,
			All: standings.Record{
				Win:   r.All.Win,
				Draw:  r.All.Draw,
				Lose:  r.All.Lose,
				Goals: standings.Goals{For: r.All.Goals.For, Against: r.All.Goals.Against},
			},
		})
	}
	season.Rows = standings.Normalize(rows)
	return season
}

func adaptFixtures(items []fixtureItem) []standings.LiveMatch {
	out := make([]standings.LiveMatch, 0, len(items))
	for _, f := range items {
		hs, as := upstream.PickScore(f.Score.Fulltime, f.Goals, f.Score.Halftime)
		out = append(out, standings.LiveMatch{
			ID:         f.Fixture.ID,
			Status:     f.Fixture.Status.Short,
			HomeTeamID: f.Teams.Home.ID,
			AwayTeamID: f.Teams.Away.ID,
			HomeScore:  hs,
			AwayScore:  as,
		})
	}
	return out
}
