package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Cache memoizes the rendered output of every registered feed and makes sure
// only one build per feed runs at a time.
type Cache struct {
	registry  *Registry
	builder   *Builder
	generator *Generator
	now       func() time.Time

	mu      sync.Mutex
	entries map[int]cacheEntry
	group   singleflight.Group
}

type CacheOption func(*Cache)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(registry *Registry, opts ...CacheOption) *Cache {
	c := &Cache{
		registry:  registry,
		builder:   NewBuilder(),
		generator: NewGenerator(),
		now:       time.Now,
		entries:   make(map[int]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Definitions() []Definition {
	return c.registry.Definitions()
}

// Get returns the rendered feed at index, building it if there is no fresh
// entry. Callers arriving while a build is running share its result. If ctx
// ends first Get returns ctx.Err() and the build keeps running.
func (c *Cache) Get(ctx context.Context, index int) (string, error) {
	def, err := c.registry.Definition(index)
	if err != nil {
		return "", err
	}

	if value, ok := c.lookup(index); ok {
		return value, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.Itoa(index), func() (interface{}, error) {
		// A build for this index may have finished between lookup and DoChan.
		if value, ok := c.lookup(index); ok {
			return value, nil
		}
		return c.build(buildCtx, def)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Cached reports how many feeds currently hold a fresh entry.
func (c *Cache) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for _, entry := range c.entries {
		if now.Before(entry.expiresAt) {
			count++
		}
	}
	return count
}

func (c *Cache) lookup(index int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[index]
	if !ok || !c.now().Before(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// build runs inside the single-flight call. A panicking callback is turned into
// a BuildError for every waiting caller instead of crashing the process.
func (c *Cache) build(ctx context.Context, def Definition) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Feed build panicked", "feed", def.Path, "panic", r)
			value, err = "", &BuildError{Path: def.Path, Err: fmt.Errorf("build panicked: %v", r)}
		}
	}()

	start := c.now()
	slog.Debug("Building feed", "feed", def.Path, "type", string(def.Type))

	model, err := c.builder.Run(ctx, def)
	if err != nil {
		slog.Error("Feed build failed", "feed", def.Path, "error", err)
		return "", &BuildError{Path: def.Path, Err: err}
	}

	value, err = c.generator.Run(model, def.Type)
	if err != nil {
		slog.Error("Feed serialization failed", "feed", def.Path, "error", err)
		return "", &BuildError{Path: def.Path, Err: err}
	}

	c.mu.Lock()
	c.entries[def.Index] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(def.CacheTime),
	}
	c.mu.Unlock()

	slog.Debug("Feed built", "feed", def.Path, "bytes", len(value), "duration", c.now().Sub(start))

	return value, nil
}
