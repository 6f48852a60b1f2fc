// Package natalcache memoizes natal charts by birth data. A natal chart never
// changes, so entries do not expire; the cache is only bounded in size.
package natalcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/model"
)

// DefaultSize is the number of natal charts kept by default.
const DefaultSize = 1024

// BuildFunc builds a natal chart on a cache miss.
type BuildFunc func(ctx context.Context, birth model.BirthData) (ephemeris.Build, error)

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithSize sets the maximum number of cached charts.
func WithSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithObserver registers a hook called with true on hits and false on misses.
func WithObserver(fn func(hit bool)) Option {
	return func(c *Cache) {
		c.observe = fn
	}
}

// Cache is a bounded LRU of natal chart builds.
type Cache struct {
	size    int
	build   BuildFunc
	observe func(hit bool)
	entries *lru.Cache[model.BirthData, ephemeris.Build]

	// group collapses concurrent misses for the same birth data.
	group singleflight.Group
}

// New creates a cache that fills misses with build.
func New(build BuildFunc, opts ...Option) (*Cache, error) {
	c := &Cache{
		size:    DefaultSize,
		build:   build,
		observe: func(bool) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	entries, err := lru.New[model.BirthData, ephemeris.Build](c.size)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns the natal chart for birth, building it on a miss. Builds that
// absorbed oracle failures are returned but not cached, so a later call can
// retry the oracle. A shared build outlives any single caller: cancelling ctx
// only stops this caller's wait.
func (c *Cache) Get(ctx context.Context, birth model.BirthData) (ephemeris.Build, error) {
	if b, ok := c.entries.Get(birth); ok {
		c.observe(true)
		return b, nil
	}
	c.observe(false)

	ch := c.group.DoChan(key(birth), func() (any, error) {
		if b, ok := c.entries.Get(birth); ok {
			return b, nil
		}
		b, err := c.build(context.WithoutCancel(ctx), birth)
		if err != nil {
			return ephemeris.Build{}, err
		}
		if len(b.Degraded) == 0 {
			c.entries.Add(birth, b)
		}
		return b, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return ephemeris.Build{}, res.Err
		}
		b, _ := res.Val.(ephemeris.Build)
		return b, nil
	case <-ctx.Done():
		return ephemeris.Build{}, ctx.Err()
	}
}

func key(b model.BirthData) string {
	return fmt.Sprintf("%s|%s|%t|%g|%g|%s", b.Date, b.Time, b.TimeUnknown, b.Latitude, b.Longitude, b.Location)
}

// Len returns the number of cached charts.
func (c *Cache) Len() int { return c.entries.Len() }

// Purge drops every cached chart.
func (c *Cache) Purge() { c.entries.Purge() }
