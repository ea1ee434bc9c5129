package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/livetable/internal/adapters/upstream/apifootball"
	"github.com/okian/livetable/internal/adapters/upstream/footballdata"
	app "github.com/okian/livetable/internal/app"
	"github.com/okian/livetable/internal/config"
	"github.com/okian/livetable/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const standingsBody = `{
  "competition": {"name": "Premier League"},
  "season": {"startDate": "2025-08-15"},
  "standings": [{"type": "TOTAL", "table": [
    {"position": 1, "team": {"id": 57, "name": "Arsenal", "crest": "a.svg"},
     "playedGames": 3, "won": 3, "draw": 0, "lost": 0, "points": 9,
     "goalsFor": 7, "goalsAgainst": 1, "goalDifference": 6}
  ]}]
}`

func TestNewProvider(t *testing.T) {
	convey.Convey("Given a config", t, func() {
		cfg := config.New()
		l := logger.Get()

		convey.Convey("When the provider is football-data", func() {
			p, err := newProvider(cfg, l)

			convey.Convey("Then the football-data adapter is used with the default league", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Name(), convey.ShouldEqual, footballdata.Provider)
				convey.So(p.League(), convey.ShouldEqual, "PL")
				convey.So(p.HasCredentials(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the provider is api-football", func() {
			cfg.Provider = config.ProviderAPIFootball
			cfg.APIFootballKey = "secret"
			p, err := newProvider(cfg, l)

			convey.Convey("Then the API-Football adapter is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Name(), convey.ShouldEqual, apifootball.Provider)
				convey.So(p.League(), convey.ShouldEqual, "39")
				convey.So(p.HasCredentials(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the provider is unknown", func() {
			cfg.Provider = "nope"
			_, err := newProvider(cfg, l)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the full router over a fake football-data upstream", t, func() {
		up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/competitions/PL/standings":
				_, _ = w.Write([]byte(standingsBody))
			case "/competitions/PL/matches":
				_, _ = w.Write([]byte(`{"matches": []}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer up.Close()

		dir := t.TempDir()
		convey.So(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ladder</html>"), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.FootballDataURL = up.URL
		cfg.FootballDataToken = "token"
		cfg.StaticDir = dir

		ctx := context.Background()
		p, err := newProvider(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		svc := app.New(p)
		router := newRouter(ctx, cfg, svc, logger.Get())

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the live table is served end to end", func() {
			w := get("/api/standings/live")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"liveCount":0`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"Arsenal"`)
		})

		convey.Convey("Then the OpenAPI document is served", func() {
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the static site is served at the root", func() {
			w := get("/")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "ladder")
		})

		convey.Convey("Then ping reports the configured key", func() {
			w := get("/api/ping")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"hasKey":true`)
		})
	})
}

func TestWarmTimeout(t *testing.T) {
	convey.Convey("Given a two second upstream timeout", t, func() {
		cfg := config.New()
		cfg.UpstreamTimeoutMS = 2000

		convey.Convey("Then a warm run may use one timeout per sequential upstream call", func() {
			convey.So(warmTimeout(cfg), convey.ShouldEqual, 6*time.Second)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
