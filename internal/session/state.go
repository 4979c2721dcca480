package session

import (
	"time"

	"github.com/reelab/reel/internal/core"
)

// Phase returns the controller's lifecycle state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Index returns the current index into the effective playlist.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// Len returns the effective playlist length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.eff)
}

// Current returns the active moment. Only valid after a successful
// Open.
func (c *Controller) Current() core.Moment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.eff) == 0 {
		return core.Moment{}
	}
	return c.eff[c.idx]
}

// At returns the effective-playlist moment at index i.
func (c *Controller) At(i int) (core.Moment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.eff) {
		return core.Moment{}, false
	}
	return c.eff[i], true
}

// AtFirst reports whether the current moment is the first.
func (c *Controller) AtFirst() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx == 0
}

// AtLast reports whether the current moment is the last.
func (c *Controller) AtLast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx == len(c.eff)-1
}

// Muted returns the desired mute state.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Paused returns the pause flag.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Blocked reports whether playback failed even after the muted retry,
// leaving the moment visible with a play affordance.
func (c *Controller) Blocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked
}

// Progress returns the last polled progress fraction.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// AdDwell returns how long the current ad has been active, or zero if
// the current moment is not an ad. Hosts use this to gate the skip
// affordance.
func (c *Controller) AdDwell() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive || len(c.eff) == 0 || !c.eff[c.idx].IsAd() {
		return 0
	}
	return time.Since(c.adActivatedAt)
}

// CanSkipAd reports whether the current ad's minimum dwell has passed.
func (c *Controller) CanSkipAd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive || len(c.eff) == 0 || !c.eff[c.idx].IsAd() {
		return false
	}
	return time.Since(c.adActivatedAt) >= c.opts.AdMinDwell
}

// Effective returns a copy of the effective playlist.
func (c *Controller) Effective() []core.Moment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Moment, len(c.eff))
	copy(out, c.eff)
	return out
}
