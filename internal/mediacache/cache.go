// Package mediacache resolves remote media locators to fast local
// sources, memoizing fetched bytes so repeat playback is instant.
// Two strategies sit behind one contract: a badger-backed persistent
// cache and a pure in-memory fetch cache for platforms where
// persistent media caching is unreliable.
package mediacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	reelerrors "github.com/reelab/reel/internal/errors"
	"github.com/reelab/reel/internal/telemetry"
)

// Source is the result of a resolve: possibly a materialized local
// file, possibly the original remote locator when fetching failed.
// Callers must never assume the local form.
type Source struct {
	URI   string
	Local bool
}

// Cache resolves media locators to playable sources.
type Cache interface {
	// Resolve returns a playable source for the locator. It degrades
	// to the remote locator on any failure and never errors out.
	Resolve(ctx context.Context, locator string) Source

	// Preload warms the cache for a locator, fire-and-forget.
	Preload(locator string)

	// InvalidateAll releases every materialized source and clears any
	// persistent layer. Diagnostics only.
	InvalidateAll() error

	// Close releases the cache's resources.
	Close() error
}

// Config selects and parameterizes a cache strategy.
type Config struct {
	Strategy string // "badger" or "memory"
	Dir      string // data directory for the persistent strategy
	Client   *http.Client
}

// Open creates a Cache for the configured strategy. An unusable
// persistent store degrades to the in-memory strategy rather than
// failing the player.
func Open(cfg Config) (Cache, error) {
	switch cfg.Strategy {
	case "", "badger":
		c, err := OpenBadger(cfg)
		if err != nil {
			log := telemetry.WithComponent("mediacache")
			log.Warn().Err(err).
				Msg("persistent cache unavailable, using in-memory strategy")
			return NewMemory(cfg), nil
		}
		return c, nil
	case "memory":
		return NewMemory(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", reelerrors.ErrCacheUnavailable, cfg.Strategy)
	}
}

// NormalizeLocator reduces a locator to its cache key form:
// scheme, host and path, with the query stripped.
func NormalizeLocator(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return locator
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func objectName(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:16])
	if ext := filepath.Ext(key); ext != "" && len(ext) <= 5 && !strings.ContainsAny(ext, "/\\") {
		name += ext
	}
	return name
}

// loader performs coalesced HTTP fetches shared by both strategies.
// Concurrent resolves of one locator await a single in-flight fetch.
type loader struct {
	client *http.Client
	group  singleflight.Group
}

func newLoader(client *http.Client) *loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &loader{client: client}
}

// fetch downloads the locator's bytes, coalescing concurrent callers.
func (l *loader) fetch(ctx context.Context, key, locator string) ([]byte, error) {
	v, err, _ := l.group.Do(key, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", locator, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// materialize writes bytes to a local object file and returns its path.
func materialize(dir, key string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, objectName(key))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
