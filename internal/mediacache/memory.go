package mediacache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelab/reel/internal/telemetry"
)

// MemoryCache is the pure fetch-to-local-object strategy: bytes are
// fetched once, materialized under a session-scoped temp directory, and
// memoized in memory only. Nothing survives a restart.
type MemoryCache struct {
	dir    string
	loader *loader
	log    zerolog.Logger

	mu   sync.Mutex
	memo map[string]Source
}

// NewMemory creates the in-memory strategy.
func NewMemory(cfg Config) *MemoryCache {
	dir, err := os.MkdirTemp("", "reel-media-*")
	if err != nil {
		dir = filepath.Join(os.TempDir(), "reel-media")
	}
	return &MemoryCache{
		dir:    dir,
		loader: newLoader(cfg.Client),
		log:    telemetry.WithComponent("mediacache"),
		memo:   make(map[string]Source),
	}
}

// Resolve implements Cache.
func (c *MemoryCache) Resolve(ctx context.Context, locator string) Source {
	key := NormalizeLocator(locator)

	c.mu.Lock()
	if src, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return src
	}
	c.mu.Unlock()

	data, err := c.loader.fetch(ctx, key, locator)
	if err != nil {
		c.log.Warn().Err(err).Str("locator", locator).Msg("fetch failed, serving remote source")
		return Source{URI: locator}
	}

	path, err := materialize(c.dir, key, data)
	if err != nil {
		c.log.Warn().Err(err).Str("locator", locator).Msg("materialize failed, serving remote source")
		return Source{URI: locator}
	}

	src := Source{URI: path, Local: true}
	c.mu.Lock()
	c.memo[key] = src
	c.mu.Unlock()
	return src
}

// Preload implements Cache.
func (c *MemoryCache) Preload(locator string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		c.Resolve(ctx, locator)
	}()
}

// InvalidateAll implements Cache.
func (c *MemoryCache) InvalidateAll() error {
	c.mu.Lock()
	c.memo = make(map[string]Source)
	c.mu.Unlock()
	return os.RemoveAll(c.dir)
}

// Close implements Cache.
func (c *MemoryCache) Close() error {
	return os.RemoveAll(c.dir)
}

var _ Cache = (*MemoryCache)(nil)
