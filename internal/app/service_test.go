package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/okian/livetable/internal/adapters/cache"
	"github.com/okian/livetable/internal/adapters/upstream"
	service "github.com/okian/livetable/internal/app"
	"github.com/okian/livetable/internal/domain/standings"
	"github.com/okian/livetable/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeProvider struct {
	mu sync.Mutex

	season       standings.Season
	standingsErr error
	live         map[string][]standings.LiveMatch
	liveErr      map[string]error

	standingsCalls int
	liveCalls      []string
}

func (f *fakeProvider) Name() string         { return "fake" }
func (f *fakeProvider) League() string       { return "PL" }
func (f *fakeProvider) HasCredentials() bool { return true }

func (f *fakeProvider) Standings(context.Context) (standings.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standingsCalls++
	if f.standingsErr != nil {
		return standings.Season{}, f.standingsErr
	}
	return f.season.Clone(), nil
}

func (f *fakeProvider) LiveMatches(_ context.Context, status string) ([]standings.LiveMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveCalls = append(f.liveCalls, status)
	if err := f.liveErr[status]; err != nil {
		return nil, err
	}
	return f.live[status], nil
}

func team(id int, name string) standings.Team {
	return standings.Team{ID: id, Name: name, Logo: standings.PlaceholderLogo}
}

func exampleSeason() standings.Season {
	year := 2025
	return standings.Season{
		Competition: "Premier League",
		SeasonYear:  &year,
		Rows: []standings.TeamStanding{
			{Rank: 1, Team: team(1, "Alpha"), Points: 10, GoalsDiff: 4, All: standings.Record{Played: 5, Win: 3, Draw: 1, Lose: 1, Goals: standings.Goals{For: 8, Against: 4}}},
			{Rank: 2, Team: team(2, "Beta"), Points: 9, GoalsDiff: 3, All: standings.Record{Played: 5, Win: 2, Draw: 3, Lose: 0, Goals: standings.Goals{For: 6, Against: 3}}},
			{Rank: 3, Team: team(3, "Gamma"), Points: 7, GoalsDiff: 0, All: standings.Record{Played: 5, Win: 2, Draw: 1, Lose: 2, Goals: standings.Goals{For: 5, Against: 5}}},
		},
	}
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestGetLiveTable(t *testing.T) {
	Convey("Given a provider with the example table", t, func() {
		ctx := context.Background()
		clk := &clock{t: time.Date(2025, 9, 13, 15, 30, 0, 0, time.UTC)}
		p := &fakeProvider{
			season:  exampleSeason(),
			live:    map[string][]standings.LiveMatch{},
			liveErr: map[string]error{},
		}
		svc := service.New(p,
			service.WithCache(cache.New(cache.WithClock(clk.Now))),
			service.WithStandingsTTL(3*time.Minute),
			service.WithLiveTTL(time.Minute),
		)

		Convey("When Gamma trails Alpha in a live match", func() {
			p.live[standings.StatusLive] = []standings.LiveMatch{{ID: 1, HomeTeamID: 3, AwayTeamID: 1, HomeScore: 1, AwayScore: 2}}
			table, err := svc.GetLiveTable(ctx)

			Convey("Then the provisional table reflects the result", func() {
				So(err, ShouldBeNil)
				So(table.LiveCount, ShouldEqual, 1)
				So(table.Source, ShouldEqual, "fake")
				So(table.League, ShouldEqual, "PL")
				So(*table.SeasonUsed, ShouldEqual, 2025)
				So(table.Rows[0].Team.Name, ShouldEqual, "Alpha")
				So(table.Rows[0].Points, ShouldEqual, 13)
				So(table.Rows[2].Team.Name, ShouldEqual, "Gamma")
				So(table.Rows[2].GoalsDiff, ShouldEqual, -1)
			})

			Convey("And the fallback query is not issued", func() {
				So(p.liveCalls, ShouldResemble, []string{standings.StatusLive})
			})

			Convey("And the cached base table is untouched", func() {
				base, err := svc.GetBaseTable(ctx)
				So(err, ShouldBeNil)
				So(base.Rows, ShouldResemble, exampleSeason().Rows)
				So(p.standingsCalls, ShouldEqual, 1)
			})
		})

		Convey("When the primary live query is empty", func() {
			p.live[standings.StatusInPlay] = []standings.LiveMatch{{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 0, AwayScore: 0}}
			table, err := svc.GetLiveTable(ctx)

			Convey("Then the in-play fallback supplies the matches", func() {
				So(err, ShouldBeNil)
				So(p.liveCalls, ShouldResemble, []string{standings.StatusLive, standings.StatusInPlay})
				So(table.LiveCount, ShouldEqual, 1)
				So(table.Rows[0].Points, ShouldEqual, 11)
			})
		})

		Convey("When the primary live query fails", func() {
			p.liveErr[standings.StatusLive] = &upstream.StatusError{Provider: "fake", StatusCode: http.StatusTooManyRequests}
			p.live[standings.StatusInPlay] = []standings.LiveMatch{{HomeTeamID: 2, AwayTeamID: 3, HomeScore: 1, AwayScore: 0}}
			table, err := svc.GetLiveTable(ctx)

			Convey("Then the fallback is still tried", func() {
				So(err, ShouldBeNil)
				So(table.LiveCount, ShouldEqual, 1)
			})
		})

		Convey("When both live queries fail", func() {
			p.liveErr[standings.StatusLive] = errors.New("boom")
			p.liveErr[standings.StatusInPlay] = errors.New("boom")
			table, err := svc.GetLiveTable(ctx)

			Convey("Then the ranked base table is served with no live matches", func() {
				So(err, ShouldBeNil)
				So(table.LiveCount, ShouldEqual, 0)
				So(table.Rows, ShouldResemble, exampleSeason().Rows)
			})
		})

		Convey("When a live match involves a team outside the table", func() {
			p.live[standings.StatusLive] = []standings.LiveMatch{{HomeTeamID: 3, AwayTeamID: 99, HomeScore: 4, AwayScore: 0}}
			table, err := svc.GetLiveTable(ctx)

			Convey("Then it still counts as live but changes nothing", func() {
				So(err, ShouldBeNil)
				So(table.LiveCount, ShouldEqual, 1)
				So(table.Rows, ShouldResemble, exampleSeason().Rows)
			})
		})

		Convey("When requests repeat inside the TTL windows", func() {
			_, _ = svc.GetLiveTable(ctx)
			clk.Advance(30 * time.Second)
			_, _ = svc.GetLiveTable(ctx)

			Convey("Then upstream is called once per resource", func() {
				So(p.standingsCalls, ShouldEqual, 1)
				So(p.liveCalls, ShouldHaveLength, 2) // LIVE then IN_PLAY, once
			})
		})

		Convey("When only the live window has expired", func() {
			_, _ = svc.GetLiveTable(ctx)
			clk.Advance(90 * time.Second)
			_, _ = svc.GetLiveTable(ctx)

			Convey("Then live matches are refetched but standings are not", func() {
				So(p.standingsCalls, ShouldEqual, 1)
				So(p.liveCalls, ShouldHaveLength, 4)
			})
		})

		Convey("When the standings window has expired", func() {
			_, _ = svc.GetLiveTable(ctx)
			clk.Advance(3 * time.Minute)
			_, _ = svc.GetLiveTable(ctx)

			Convey("Then standings are replaced from upstream", func() {
				So(p.standingsCalls, ShouldEqual, 2)
			})
		})

		Convey("When the standings fetch fails", func() {
			p.standingsErr = &upstream.StatusError{Provider: "fake", Path: "/standings", StatusCode: http.StatusForbidden}
			_, liveErr := svc.GetLiveTable(ctx)
			_, baseErr := svc.GetBaseTable(ctx)

			Convey("Then the failure propagates with its status code", func() {
				So(liveErr, ShouldNotBeNil)
				So(upstream.StatusCode(liveErr), ShouldEqual, http.StatusForbidden)
				So(errors.Is(baseErr, upstream.ErrFetch), ShouldBeTrue)
			})

			Convey("And live matches are not fetched", func() {
				So(p.liveCalls, ShouldBeEmpty)
			})
		})

		Convey("When a caller mutates a returned table", func() {
			table, _ := svc.GetLiveTable(ctx)
			table.Rows[0].Points = 1000
			base, _ := svc.GetBaseTable(ctx)
			base.Rows[1].Points = 1000
			again, _ := svc.GetBaseTable(ctx)

			Convey("Then the cache is not affected", func() {
				So(again.Rows, ShouldResemble, exampleSeason().Rows)
			})
		})

		Convey("When getting stats after a build", func() {
			_, _ = svc.GetLiveTable(ctx)
			stats := svc.GetStats()

			Convey("Then both cache keys are reported", func() {
				So(stats["provider"], ShouldEqual, "fake")
				entries, ok := stats["cache"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				So(entries, ShouldContainKey, "standings:fake:PL")
				So(entries, ShouldContainKey, "live:fake:PL")
			})
		})
	})
}

func TestFindTeam(t *testing.T) {
	Convey("Given a service over the example table", t, func() {
		p := &fakeProvider{season: exampleSeason(), live: map[string][]standings.LiveMatch{}, liveErr: map[string]error{}}
		svc := service.New(p)
		ctx := context.Background()

		Convey("When searching for a partial name", func() {
			row, err := svc.FindTeam(ctx, "gam")

			Convey("Then the matching row is returned", func() {
				So(err, ShouldBeNil)
				So(row.Team.Name, ShouldEqual, "Gamma")
				So(row.Rank, ShouldEqual, 3)
			})
		})

		Convey("When nothing matches", func() {
			_, err := svc.FindTeam(ctx, "zeta")

			Convey("Then ErrTeamNotFound is returned", func() {
				So(errors.Is(err, service.ErrTeamNotFound), ShouldBeTrue)
			})
		})

		Convey("When the query is blank", func() {
			_, err := svc.FindTeam(ctx, "  ")

			Convey("Then ErrEmptyQuery is returned", func() {
				So(errors.Is(err, service.ErrEmptyQuery), ShouldBeTrue)
			})
		})
	})
}

func TestWarm(t *testing.T) {
	Convey("Given a service", t, func() {
		p := &fakeProvider{season: exampleSeason(), live: map[string][]standings.LiveMatch{}, liveErr: map[string]error{}}
		svc := service.New(p)

		Convey("When warming", func() {
			err := svc.Warm(context.Background())

			Convey("Then the cache is filled", func() {
				So(err, ShouldBeNil)
				So(p.standingsCalls, ShouldEqual, 1)
				_, _ = svc.GetBaseTable(context.Background())
				So(p.standingsCalls, ShouldEqual, 1)
			})
		})
	})
}

func TestLiveSummary(t *testing.T) {
	Convey("Given live matches in several states", t, func() {
		p := &fakeProvider{
			season: exampleSeason(),
			live: map[string][]standings.LiveMatch{
				standings.StatusLive: {
					{ID: 11, Status: "IN_PLAY"},
					{ID: 12, Status: "PAUSED"},
					{ID: 13, Status: "IN_PLAY"},
					{ID: 14},
					{ID: 15, Status: "IN_PLAY"},
					{ID: 16, Status: "IN_PLAY"},
				},
			},
			liveErr: map[string]error{},
		}
		svc := service.New(p)

		Convey("When summarising", func() {
			sum := svc.LiveSummary(context.Background())

			Convey("Then matches are counted by status with a bounded sample", func() {
				So(sum.LiveCount, ShouldEqual, 6)
				So(sum.ByStatus, ShouldResemble, map[string]int{"IN_PLAY": 4, "PAUSED": 1, "UNK": 1})
				So(sum.SampleIDs, ShouldResemble, []int{11, 12, 13, 14, 15})
			})
		})

		Convey("When nothing is live", func() {
			p.live = map[string][]standings.LiveMatch{}
			sum := svc.LiveSummary(context.Background())

			Convey("Then the summary is empty but not nil", func() {
				So(sum.LiveCount, ShouldEqual, 0)
				So(sum.ByStatus, ShouldBeEmpty)
				So(sum.SampleIDs, ShouldNotBeNil)
			})
		})
	})
}
