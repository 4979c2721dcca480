// Package feed loads moment playlists from local files or HTTP
// endpoints.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/reelab/reel/internal/core"
)

const maxFeedSize = 8 << 20 // 8 MiB

// Loader fetches playlist documents.
type Loader struct {
	client *http.Client
}

// Option configures a Loader.
type Option func(*Loader)

// WithClient sets the HTTP client used for URL sources.
func WithClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// NewLoader creates a playlist loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a playlist from the given source. Sources beginning with
// http:// or https:// are fetched over the network; anything else is
// treated as a file path.
func (l *Loader) Load(ctx context.Context, source string) (core.Playlist, error) {
	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return core.Playlist{}, fmt.Errorf("read feed %s: %w", source, err)
	}
	return Parse(data)
}

// Parse decodes a playlist document and validates it. Unknown keys
// are tolerated; feeds from older backends carry extras.
func Parse(data []byte) (core.Playlist, error) {
	var p core.Playlist
	if err := json.Unmarshal(data, &p); err != nil {
		return core.Playlist{}, fmt.Errorf("parse feed: %w", err)
	}
	if err := p.Validate(); err != nil {
		return core.Playlist{}, fmt.Errorf("invalid feed: %w", err)
	}
	return p, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
