package media

import (
	"context"
	"sync"
	"time"

	"github.com/reelab/reel/internal/core"
)

// Command is a remote instruction for a hosted-platform clip.
type Command string

const (
	CmdPlay   Command = "play"
	CmdPause  Command = "pause"
	CmdMute   Command = "mute"
	CmdUnmute Command = "unmute"
	CmdSeek   Command = "seek"
)

// RemoteEvent is an asynchronous notification from the hosting
// platform's player.
type RemoteEvent struct {
	Kind     string // "progress" or "ended"
	VideoID  string
	Fraction float64 // for progress events
}

// Transport carries commands to a hosted platform's embedded player
// and delivers its notifications. The concrete protocol (for example a
// cross-context message bridge) is the caller's concern.
type Transport interface {
	Send(ctx context.Context, videoID string, cmd Command, args map[string]any) error
	Events() <-chan RemoteEvent
}

// HostedHandle adapts a hosted clip behind the MediaHandle contract.
// The clip is a black box: only remote play/pause/mute commands and
// the asynchronous ended notification are assumed.
type HostedHandle struct {
	transport Transport
	videoID   string

	mu       sync.Mutex
	fraction float64

	ended   chan struct{}
	endOnce sync.Once
	stop    chan struct{}
}

// NewHosted creates a handle for the platform clip with the given id.
func NewHosted(transport Transport, videoID string) *HostedHandle {
	h := &HostedHandle{
		transport: transport,
		videoID:   videoID,
		ended:     make(chan struct{}),
		stop:      make(chan struct{}),
	}
	go h.consume()
	return h
}

func (h *HostedHandle) consume() {
	for {
		select {
		case <-h.stop:
			return
		case ev, ok := <-h.transport.Events():
			if !ok {
				return
			}
			if ev.VideoID != "" && ev.VideoID != h.videoID {
				continue
			}
			switch ev.Kind {
			case "progress":
				h.mu.Lock()
				h.fraction = ev.Fraction
				h.mu.Unlock()
			case "ended":
				h.endOnce.Do(func() { close(h.ended) })
			}
		}
	}
}

// Play implements core.MediaHandle.
func (h *HostedHandle) Play(ctx context.Context) error {
	return h.transport.Send(ctx, h.videoID, CmdPlay, nil)
}

// Pause implements core.MediaHandle.
func (h *HostedHandle) Pause(ctx context.Context) error {
	return h.transport.Send(ctx, h.videoID, CmdPause, nil)
}

// SetMuted implements core.MediaHandle.
func (h *HostedHandle) SetMuted(ctx context.Context, muted bool) error {
	cmd := CmdUnmute
	if muted {
		cmd = CmdMute
	}
	return h.transport.Send(ctx, h.videoID, cmd, nil)
}

// Seek implements core.MediaHandle.
func (h *HostedHandle) Seek(ctx context.Context, pos time.Duration) error {
	return h.transport.Send(ctx, h.videoID, CmdSeek, map[string]any{
		"seconds": pos.Seconds(),
	})
}

// Progress implements core.MediaHandle. The fraction is whatever the
// platform last reported.
func (h *HostedHandle) Progress(ctx context.Context) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fraction, nil
}

// Ended implements core.MediaHandle.
func (h *HostedHandle) Ended() <-chan struct{} {
	return h.ended
}

// Release implements core.MediaHandle.
func (h *HostedHandle) Release() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = h.transport.Send(ctx, h.videoID, CmdPause, nil)
	_ = h.transport.Send(ctx, h.videoID, CmdMute, nil)
	close(h.stop)
	return nil
}

var _ core.MediaHandle = (*HostedHandle)(nil)
