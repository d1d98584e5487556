package blocklist

import (
	"context"
	"sigscan/pkg/logger"
	"sync"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader produces a Store for a source path.
type Loader func(ctx context.Context, path string) (*Store, error)

// FileLoader returns a Loader reading sources from fs.
func FileLoader(fs billy.Filesystem) Loader {
	return func(_ context.Context, path string) (*Store, error) {
		return Load(fs, path)
	}
}

// CacheOptions configure a Cache.
type CacheOptions struct {
	// HexLen is the digest width of the scanning engine. When positive, loads
	// log how many entries can never match at that width.
	HexLen int
}

// Cache holds at most one Store for the lifetime of its owner.
//
// The slot is keyed by "has anything been loaded", not by path: once a load
// succeeds, GetOrLoad returns that Store for every later call, whatever path
// it is given, until Invalidate or Reload replaces it. A mismatching path is
// logged so a stale blocklist does not go unnoticed.
//
// mu only guards the slot fields. Loading happens outside the lock and is
// deduplicated with singleflight, so concurrent callers racing on an empty
// slot read the source once.
type Cache struct {
	load   Loader
	hexLen int
	group  singleflight.Group

	mu         sync.Mutex
	store      *Store
	path       string
	generation uint64
}

// NewCache creates an empty Cache that loads sources with load.
func NewCache(load Loader, opts CacheOptions) *Cache {
	return &Cache{
		load:   load,
		hexLen: opts.HexLen,
	}
}

// slotKey is the single singleflight key: there is only one slot.
const slotKey = "blocklist"

// GetOrLoad returns the cached Store, loading path first if the slot is empty.
// A failed load leaves the slot empty so the next call retries.
func (c *Cache) GetOrLoad(ctx context.Context, path string) (*Store, error) {
	if s, ok := c.cached(ctx, path); ok {
		return s, nil
	}

	v, err, _ := c.group.Do(slotKey, func() (any, error) {
		// a flight that finished while we were queued may have filled the slot
		if s, ok := c.cached(ctx, path); ok {
			return s, nil
		}

		c.mu.Lock()
		gen := c.generation
		c.mu.Unlock()

		s, err := c.fetch(ctx, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen && c.store == nil {
			c.store, c.path = s, path
		}

		return s, nil
	})
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return v.(*Store), nil //nolint: forcetypeassert
}

// Reload loads path and replaces the cached Store with it. On failure the
// previous Store, if any, stays cached.
func (c *Cache) Reload(ctx context.Context, path string) (*Store, error) {
	s, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.store, c.path = s, path
	c.generation++
	c.mu.Unlock()

	return s, nil
}

// Invalidate empties the slot; the next GetOrLoad reads its source again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.store, c.path = nil, ""
	c.generation++
	c.mu.Unlock()
}

// Path returns the source path of the cached Store, or "" when empty.
func (c *Cache) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.path
}

func (c *Cache) cached(ctx context.Context, path string) (*Store, bool) {
	c.mu.Lock()
	s, loadedFrom := c.store, c.path
	c.mu.Unlock()

	if s == nil {
		return nil, false
	}
	if loadedFrom != path {
		logger.Warn(ctx, "reusing cached blocklist loaded from a different path",
			zap.String("requested", path),
			zap.String("cached", loadedFrom))
	}

	return s, true
}

func (c *Cache) fetch(ctx context.Context, path string) (*Store, error) {
	s, err := c.load(ctx, path)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{zap.String("path", path), zap.Int("entries", s.Len())}
	logger.Info(ctx, "blocklist loaded", fields...)
	if c.hexLen > 0 {
		if n := s.Mismatched(c.hexLen); n > 0 {
			logger.Warn(ctx, "blocklist has entries that can never match",
				append(fields, zap.Int("mismatched", n), zap.Int("digestLength", c.hexLen))...)
		}
	}

	return s, nil
}
