package cache

import "time"

// Option applies a configuration option to the TTLCache.
type Option func(*TTLCache)

// WithClock replaces the time source used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		if now != nil {
			c.now = now
		}
	}
}
