package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/okian/livetable/internal/adapters/upstream"
	. "github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestClientGetJSON(t *testing.T) {
	Convey("Given an upstream server", t, func() {
		var gotToken, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Auth-Token")
			gotQuery = r.URL.RawQuery
			switch r.URL.Path {
			case "/ok":
				_, _ = w.Write([]byte(`{"name":"Premier League"}`))
			case "/forbidden":
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"token invalid"}`))
			case "/garbage":
				_, _ = w.Write([]byte(`{not json`))
			case "/slow":
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{}`))
			}
		}))
		defer srv.Close()

		c := upstream.NewClient("football-data", srv.URL+"/", upstream.WithHeader("X-Auth-Token", "secret"))

		Convey("When the call succeeds", func() {
			var out struct {
				Name string `json:"name"`
			}
			err := c.GetJSON(context.Background(), "test", "/ok", url.Values{"status": {"LIVE"}}, &out)

			Convey("Then the body is decoded and the header and query are sent", func() {
				So(err, ShouldBeNil)
				So(out.Name, ShouldEqual, "Premier League")
				So(gotToken, ShouldEqual, "secret")
				So(gotQuery, ShouldEqual, "status=LIVE")
				So(c.HasHeader("X-Auth-Token"), ShouldBeTrue)
			})
		})

		Convey("When the server answers with a non-success status", func() {
			var out struct{}
			err := c.GetJSON(context.Background(), "test", "/forbidden", nil, &out)

			Convey("Then a StatusError carries the code", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, upstream.ErrFetch), ShouldBeTrue)
				So(upstream.StatusCode(err), ShouldEqual, http.StatusForbidden)
				So(err.Error(), ShouldContainSubstring, "token invalid")
			})
		})

		Convey("When the body is not JSON", func() {
			var out struct{}
			err := c.GetJSON(context.Background(), "test", "/garbage", nil, &out)

			Convey("Then a fetch error without status is returned", func() {
				So(errors.Is(err, upstream.ErrFetch), ShouldBeTrue)
				So(upstream.StatusCode(err), ShouldEqual, 0)
			})
		})

		Convey("When the request exceeds the timeout", func() {
			slow := upstream.NewClient("football-data", srv.URL, upstream.WithTimeout(20*time.Millisecond))
			var out struct{}
			err := slow.GetJSON(context.Background(), "test", "/slow", nil, &out)

			Convey("Then it fails as a fetch error", func() {
				So(errors.Is(err, upstream.ErrFetch), ShouldBeTrue)
			})
		})
	})
}

func TestPickScore(t *testing.T) {
	Convey("Given candidate score objects", t, func() {
		Convey("When the first object carries a score", func() {
			h, a := upstream.PickScore(&upstream.Score{Home: intp(2), Away: intp(1)}, &upstream.Score{Home: intp(0), Away: intp(0)})
			So(h, ShouldEqual, 2)
			So(a, ShouldEqual, 1)
		})

		Convey("When the first object is empty", func() {
			h, a := upstream.PickScore(&upstream.Score{}, nil, &upstream.Score{Home: intp(1), Away: intp(1)})
			So(h, ShouldEqual, 1)
			So(a, ShouldEqual, 1)
		})

		Convey("When only one side is reported", func() {
			h, a := upstream.PickScore(&upstream.Score{Away: intp(3)})
			So(h, ShouldEqual, 0)
			So(a, ShouldEqual, 3)
		})

		Convey("When nothing is reported", func() {
			h, a := upstream.PickScore(nil, &upstream.Score{})
			So(h, ShouldEqual, 0)
			So(a, ShouldEqual, 0)
		})
	})
}
