package core

import (
	"context"
	"time"
)

// MediaHandle abstracts one playable element. Native video, static
// images, ads, and third-party hosted clips all implement it, so the
// session controller never depends on a concrete media technology.
type MediaHandle interface {
	// Play starts or resumes playback. May be rejected by the
	// underlying platform's autoplay policy.
	Play(ctx context.Context) error

	// Pause halts playback without releasing the handle.
	Pause(ctx context.Context) error

	// SetMuted toggles audio output.
	SetMuted(ctx context.Context, muted bool) error

	// Seek jumps to the given position.
	Seek(ctx context.Context, pos time.Duration) error

	// Progress reports the fraction played so far, in [0, 1].
	Progress(ctx context.Context) (float64, error)

	// Ended delivers one value when the media reaches its natural end.
	Ended() <-chan struct{}

	// Release tears the handle down: playback is paused and audio is
	// muted first so any hardware decoder is freed promptly.
	Release() error
}
