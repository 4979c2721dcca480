package media

import (
	"context"
	"sync"
	"time"

	"github.com/reelab/reel/internal/core"
)

// Fake is a scriptable MediaHandle for tests. Play errors can be
// queued to simulate autoplay rejection, progress is set directly, and
// the end-of-media signal fires on demand.
type Fake struct {
	mu sync.Mutex

	Playing  bool
	Muted    bool
	Released bool
	Position time.Duration

	PlayCalls  int
	PauseCalls int

	playErrs []error
	fraction float64

	ended   chan struct{}
	endOnce sync.Once
}

// NewFake creates a fake handle.
func NewFake() *Fake {
	return &Fake{ended: make(chan struct{})}
}

// QueuePlayError makes the next Play call fail with err.
func (f *Fake) QueuePlayError(err error) {
	f.mu.Lock()
	f.playErrs = append(f.playErrs, err)
	f.mu.Unlock()
}

// SetFraction scripts the reported progress.
func (f *Fake) SetFraction(fraction float64) {
	f.mu.Lock()
	f.fraction = fraction
	f.mu.Unlock()
}

// FireEnded delivers the end-of-media signal.
func (f *Fake) FireEnded() {
	f.endOnce.Do(func() { close(f.ended) })
}

// Play implements core.MediaHandle.
func (f *Fake) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlayCalls++
	if len(f.playErrs) > 0 {
		err := f.playErrs[0]
		f.playErrs = f.playErrs[1:]
		return err
	}
	f.Playing = true
	return nil
}

// Pause implements core.MediaHandle.
func (f *Fake) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PauseCalls++
	f.Playing = false
	return nil
}

// SetMuted implements core.MediaHandle.
func (f *Fake) SetMuted(ctx context.Context, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Muted = muted
	return nil
}

// Seek implements core.MediaHandle.
func (f *Fake) Seek(ctx context.Context, pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Position = pos
	return nil
}

// Progress implements core.MediaHandle.
func (f *Fake) Progress(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fraction, nil
}

// Ended implements core.MediaHandle.
func (f *Fake) Ended() <-chan struct{} {
	return f.ended
}

// Release implements core.MediaHandle.
func (f *Fake) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Playing = false
	f.Muted = true
	f.Released = true
	return nil
}

var _ core.MediaHandle = (*Fake)(nil)
