package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/okian/livetable/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestTTLCache(t *testing.T) {
	Convey("Given a cache with a controllable clock", t, func() {
		clock := &fakeClock{t: time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)}
		c := cache.New(cache.WithClock(clock.Now))

		Convey("When reading a key that was never set", func() {
			v, ok := c.Get("standings", time.Minute)

			Convey("Then it reports absent", func() {
				So(ok, ShouldBeFalse)
				So(v, ShouldBeNil)
			})
		})

		Convey("When a value was stored", func() {
			c.Set("standings", "table")

			Convey("Then it is returned while younger than maxAge", func() {
				clock.Advance(59 * time.Second)
				v, ok := c.Get("standings", time.Minute)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "table")
			})

			Convey("Then it is stale exactly at maxAge", func() {
				clock.Advance(time.Minute)
				_, ok := c.Get("standings", time.Minute)
				So(ok, ShouldBeFalse)
			})

			Convey("Then freshness depends on the maxAge of each read", func() {
				clock.Advance(90 * time.Second)
				_, short := c.Get("standings", time.Minute)
				_, long := c.Get("standings", 3*time.Minute)
				So(short, ShouldBeFalse)
				So(long, ShouldBeTrue)
			})

			Convey("Then Age reports the elapsed time", func() {
				clock.Advance(10 * time.Second)
				age, ok := c.Age("standings")
				So(ok, ShouldBeTrue)
				So(age, ShouldEqual, 10*time.Second)
			})
		})

		Convey("When a key is overwritten", func() {
			c.Set("live", 1)
			clock.Advance(2 * time.Minute)
			c.Set("live", 2)

			Convey("Then the new value is fresh again", func() {
				v, ok := c.Get("live", time.Minute)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 2)
			})
		})

		Convey("When reading with Lookup", func() {
			c.Set("numbers", []int{1, 2, 3})

			Convey("Then a matching type is returned", func() {
				v, ok := cache.Lookup[[]int](c, "numbers", time.Minute)
				So(ok, ShouldBeTrue)
				So(v, ShouldResemble, []int{1, 2, 3})
			})

			Convey("Then a different type is a miss", func() {
				_, ok := cache.Lookup[string](c, "numbers", time.Minute)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When several keys are stored", func() {
			c.Set("b", 1)
			c.Set("a", 1)

			Convey("Then Keys lists them in order", func() {
				So(c.Keys(), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When used from many goroutines", func() {
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					c.Set("shared", i)
					_, _ = c.Get("shared", time.Minute)
				}(i)
			}
			wg.Wait()

			Convey("Then the last writer's value is readable", func() {
				_, ok := c.Get("shared", time.Minute)
				So(ok, ShouldBeTrue)
			})
		})
	})
}
