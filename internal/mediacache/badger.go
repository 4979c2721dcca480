package mediacache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/reelab/reel/internal/telemetry"
)

// BadgerCache is the structured persistent strategy: an in-memory memo
// of materialized sources in front of a badger byte store, in front of
// the network.
type BadgerCache struct {
	db     *badger.DB
	dir    string
	loader *loader
	log    zerolog.Logger

	mu   sync.Mutex
	memo map[string]Source
}

// OpenBadger opens the persistent cache rooted at cfg.Dir.
func OpenBadger(cfg Config) (*BadgerCache, error) {
	dir := cfg.Dir
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(cacheDir, "reel")
	}
	opts := badger.DefaultOptions(filepath.Join(dir, "media")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{
		db:     db,
		dir:    filepath.Join(dir, "objects"),
		loader: newLoader(cfg.Client),
		log:    telemetry.WithComponent("mediacache"),
		memo:   make(map[string]Source),
	}, nil
}

// Resolve implements Cache.
func (c *BadgerCache) Resolve(ctx context.Context, locator string) Source {
	key := NormalizeLocator(locator)

	c.mu.Lock()
	if src, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return src
	}
	c.mu.Unlock()

	// Persistent layer next.
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err == nil {
		return c.admit(key, locator, data, false)
	}

	// Network last. One in-flight fetch per locator.
	data, err = c.loader.fetch(ctx, key, locator)
	if err != nil {
		c.log.Warn().Err(err).Str("locator", locator).Msg("fetch failed, serving remote source")
		return Source{URI: locator}
	}
	return c.admit(key, locator, data, true)
}

// admit materializes fetched bytes, optionally persisting a copy first.
// The copy happens before materialization so a partial write of the
// object file never corrupts the persistent layer.
func (c *BadgerCache) admit(key, locator string, data []byte, persist bool) Source {
	if persist {
		stored := append([]byte(nil), data...)
		if err := c.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(key), stored)
		}); err != nil {
			c.log.Warn().Err(err).Str("locator", locator).Msg("persist failed")
		}
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
func (c *BadgerCache) Preload(locator string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		c.Resolve(ctx, locator)
	}()
}

// InvalidateAll implements Cache.
func (c *BadgerCache) InvalidateAll() error {
	c.mu.Lock()
	c.memo = make(map[string]Source)
	c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return c.db.DropAll()
}

// Close implements Cache.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
