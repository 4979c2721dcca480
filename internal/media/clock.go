// Package media provides the concrete MediaHandle implementations:
// an mpv-backed handle for video and ad media, a clock-driven handle
// for still images, and a transport-backed handle for third-party
// hosted clips.
package media

import (
	"context"
	"sync"
	"time"

	"github.com/reelab/reel/internal/core"
)

// DefaultImageDwell is used when an image moment carries no duration hint.
const DefaultImageDwell = 5 * time.Second

// ClockHandle is a timer-driven handle for media with no intrinsic
// playback, such as still images. It "ends" after its dwell duration
// of active play time.
type ClockHandle struct {
	mu        sync.Mutex
	duration  time.Duration
	elapsed   time.Duration
	startedAt time.Time
	playing   bool
	muted     bool
	timer     *time.Timer
	ended     chan struct{}
	endOnce   sync.Once
}

// NewClock creates a handle that ends after d of play time.
func NewClock(d time.Duration) *ClockHandle {
	if d <= 0 {
		d = DefaultImageDwell
	}
	return &ClockHandle{
		duration: d,
		ended:    make(chan struct{}),
	}
}

// Play implements core.MediaHandle.
func (h *ClockHandle) Play(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.playing {
		return nil
	}
	h.playing = true
	h.startedAt = time.Now()
	h.timer = time.AfterFunc(h.duration-h.elapsed, h.fire)
	return nil
}

// Pause implements core.MediaHandle.
func (h *ClockHandle) Pause(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseLocked()
	return nil
}

func (h *ClockHandle) pauseLocked() {
	if !h.playing {
		return
	}
	h.elapsed += time.Since(h.startedAt)
	h.playing = false
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// SetMuted implements core.MediaHandle. Images have no audio; the flag
// is tracked so mute state survives handle swaps.
func (h *ClockHandle) SetMuted(ctx context.Context, muted bool) error {
	h.mu.Lock()
	h.muted = muted
	h.mu.Unlock()
	return nil
}

// Seek implements core.MediaHandle.
func (h *ClockHandle) Seek(ctx context.Context, pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > h.duration {
		pos = h.duration
	}
	h.elapsed = pos
	if h.playing {
		h.startedAt = time.Now()
		if h.timer != nil {
			h.timer.Stop()
		}
		h.timer = time.AfterFunc(h.duration-h.elapsed, h.fire)
	}
	return nil
}

// Progress implements core.MediaHandle.
func (h *ClockHandle) Progress(ctx context.Context) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	elapsed := h.elapsed
	if h.playing {
		elapsed += time.Since(h.startedAt)
	}
	f := float64(elapsed) / float64(h.duration)
	if f > 1 {
		f = 1
	}
	return f, nil
}

// Ended implements core.MediaHandle.
func (h *ClockHandle) Ended() <-chan struct{} {
	return h.ended
}

// Release implements core.MediaHandle.
func (h *ClockHandle) Release() error {
	h.mu.Lock()
	h.pauseLocked()
	h.mu.Unlock()
	return nil
}

func (h *ClockHandle) fire() {
	h.mu.Lock()
	h.playing = false
	h.elapsed = h.duration
	h.mu.Unlock()
	h.endOnce.Do(func() { close(h.ended) })
}

var _ core.MediaHandle = (*ClockHandle)(nil)
