package media

import (
	"context"
	"fmt"
	"time"

	"github.com/reelab/reel/internal/core"
	"github.com/reelab/reel/internal/mediacache"
)

// FactoryOption configures the default handle factory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	transport  Transport
	imageDwell time.Duration
}

// WithTransport routes hosted clips through the given remote transport.
func WithTransport(t Transport) FactoryOption {
	return func(c *factoryConfig) {
		c.transport = t
	}
}

// WithImageDwell overrides the dwell for image moments without a
// duration hint.
func WithImageDwell(d time.Duration) FactoryOption {
	return func(c *factoryConfig) {
		if d > 0 {
			c.imageDwell = d
		}
	}
}

// Factory returns the default handle factory: mpv for video and ad
// media, a clock handle for still images, and the transport-backed
// handle for hosted clips. Without a transport, hosted clips degrade
// to a clock handle over their duration hint.
func Factory(opts ...FactoryOption) func(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error) {
	cfg := factoryConfig{imageDwell: DefaultImageDwell}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error) {
		switch m.Kind {
		case core.KindVideo, core.KindAd:
			return NewMPV(ctx, src.URI)
		case core.KindImage:
			d := m.DurationHint.Duration()
			if d <= 0 {
				d = cfg.imageDwell
			}
			return NewClock(d), nil
		case core.KindHostedClip:
			if cfg.transport == nil {
				d := m.DurationHint.Duration()
				if d <= 0 {
					d = 30 * time.Second
				}
				return NewClock(d), nil
			}
			return NewHosted(cfg.transport, m.HostedVideoID), nil
		default:
			return nil, fmt.Errorf("unknown moment kind %q", m.Kind)
		}
	}
}
