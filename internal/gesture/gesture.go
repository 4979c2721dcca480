// Package gesture turns raw vertical pointer, wheel, and key input
// into discrete navigation intents plus a continuous drag offset for
// rendering. Velocity is sampled over a short rolling window and the
// released offset settles under spring dynamics.
package gesture

import (
	"time"

	"github.com/reelab/reel/internal/core"
)

// Intent is a resolved navigation decision.
type Intent int

const (
	IntentNone Intent = iota
	IntentNext
	IntentPrev
	IntentClose
)

func (i Intent) String() string {
	switch i {
	case IntentNext:
		return "next"
	case IntentPrev:
		return "prev"
	case IntentClose:
		return "close"
	}
	return "none"
}

// Velocity window bounds: at most maxSamples instantaneous velocities,
// none older than the lookback at release time.
const (
	maxSamples       = 5
	velocityLookback = 100 * time.Millisecond
)

// Config tunes gesture detection.
type Config struct {
	VelocityThreshold float64 // px/ms
	DistanceFraction  float64 // of viewport height
	RubberBand        float64 // boundary damping factor
	WheelDebounce     time.Duration
	WheelNoiseFloor   float64
	Spring            SpringConfig
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		VelocityThreshold: 0.3,
		DistanceFraction:  0.15,
		RubberBand:        0.35,
		WheelDebounce:     300 * time.Millisecond,
		WheelNoiseFloor:   2.0,
		Spring:            SpringConfig{Tension: 180, Friction: 26},
	}
}

type velocitySample struct {
	v  float64 // px/ms, signed
	at time.Time
}

// Controller converts input into intents. It only proposes; the
// session controller owns all state changes.
type Controller struct {
	cfg       Config
	viewportH float64

	phase       core.GesturePhase
	atFirst     bool
	atLast      bool
	beganAtLast bool

	pressY  float64
	lastY   float64
	lastAt  time.Time
	offset  float64
	samples []velocitySample

	lastWheel time.Time
	settle    *spring
}

// NewController creates a Controller for the given viewport height in
// pixels.
func NewController(cfg Config, viewportHeight float64) *Controller {
	return &Controller{cfg: cfg, viewportH: viewportHeight}
}

// SetViewportHeight updates the viewport height on host resize.
func (c *Controller) SetViewportHeight(h float64) {
	if h > 0 {
		c.viewportH = h
	}
}

// SetBounds tells the controller whether the current index sits at a
// playlist boundary.
func (c *Controller) SetBounds(atFirst, atLast bool) {
	c.atFirst = atFirst
	c.atLast = atLast
}

// Phase returns the current gesture phase.
func (c *Controller) Phase() core.GesturePhase {
	return c.phase
}

// Offset returns the continuous drag offset in pixels, already damped
// near boundaries.
func (c *Controller) Offset() float64 {
	return c.offset
}

// Begin starts a drag. Any in-flight settle animation is cancelled
// immediately.
func (c *Controller) Begin(y float64, at time.Time) {
	c.settle = nil
	c.phase = core.GestureDragging
	c.pressY = y
	c.lastY = y
	c.lastAt = at
	c.offset = 0
	c.samples = c.samples[:0]
	c.beganAtLast = c.atLast
}

// Move extends the drag, recording an instantaneous velocity sample
// and updating the rendered offset.
func (c *Controller) Move(y float64, at time.Time) {
	if c.phase != core.GestureDragging {
		return
	}

	if dt := at.Sub(c.lastAt); dt > 0 {
		ms := float64(dt.Microseconds()) / 1000.0
		c.samples = append(c.samples, velocitySample{v: (y - c.lastY) / ms, at: at})
		if len(c.samples) > maxSamples {
			c.samples = c.samples[1:]
		}
	}
	c.lastY = y
	c.lastAt = at

	d := y - c.pressY
	c.offset = c.damp(d)
}

// damp applies rubber-band resistance when the drag pushes past a
// playlist boundary.
func (c *Controller) damp(d float64) float64 {
	if (d > 0 && c.atFirst) || (d < 0 && c.atLast) {
		return d * c.cfg.RubberBand
	}
	return d
}

// Release resolves the drag into an intent and starts the settle
// animation. The decision uses net displacement against the distance
// threshold and a time-decay weighted velocity against the velocity
// threshold.
func (c *Controller) Release(at time.Time) Intent {
	if c.phase != core.GestureDragging {
		return IntentNone
	}

	d := c.lastY - c.pressY
	v := c.weightedVelocity(at)
	intent := c.decide(d, v)

	target := 0.0
	switch intent {
	case IntentNext:
		target = -c.viewportH
	case IntentPrev:
		target = c.viewportH
	}
	c.phase = core.GestureSettling
	c.settle = newSpring(c.cfg.Spring, c.offset, v*1000, target)
	return intent
}

// decide applies the trigger rule and boundary resolution.
func (c *Controller) decide(d, v float64) Intent {
	distThreshold := c.cfg.DistanceFraction * c.viewportH

	next := d < 0 && (abs(v) > c.cfg.VelocityThreshold || abs(d) > distThreshold)
	prev := d > 0 && (abs(v) > c.cfg.VelocityThreshold || abs(d) > distThreshold)

	switch {
	case next && c.atLast:
		// A qualifying closing gesture must have originated at the
		// terminal position; otherwise rubber-band back to rest.
		if c.beganAtLast {
			return IntentClose
		}
		return IntentNone
	case next:
		return IntentNext
	case prev && c.atFirst:
		return IntentNone
	case prev:
		return IntentPrev
	}
	return IntentNone
}

// weightedVelocity averages the sample window with linear time decay,
// discarding samples older than the lookback.
func (c *Controller) weightedVelocity(at time.Time) float64 {
	var sum, wsum float64
	for _, s := range c.samples {
		age := at.Sub(s.at)
		if age < 0 || age > velocityLookback {
			continue
		}
		w := 1 - float64(age)/float64(velocityLookback)
		sum += w * s.v
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// StepSettle advances the settle animation by dt. It returns the
// current offset and whether the animation finished this step. On
// completion the offset snaps to rest and the controller goes idle.
func (c *Controller) StepSettle(dt time.Duration) (offset float64, done bool) {
	if c.phase != core.GestureSettling || c.settle == nil {
		return c.offset, true
	}
	done = c.settle.step(dt.Seconds())
	c.offset = c.settle.pos
	if done {
		c.settle = nil
		c.offset = 0
		c.phase = core.GestureIdle
	}
	return c.offset, done
}

// Wheel maps a discrete wheel delta to an intent, debounced so one
// physical scroll gesture fires once. Positive delta scrolls down
// (toward the next moment).
func (c *Controller) Wheel(delta float64, at time.Time) Intent {
	if abs(delta) < c.cfg.WheelNoiseFloor {
		return IntentNone
	}
	if !c.lastWheel.IsZero() && at.Sub(c.lastWheel) < c.cfg.WheelDebounce {
		return IntentNone
	}
	c.lastWheel = at

	if delta > 0 {
		if c.atLast {
			return IntentClose
		}
		return IntentNext
	}
	if c.atFirst {
		return IntentNone
	}
	return IntentPrev
}

// Key maps an arrow-key direction directly to an intent.
func (c *Controller) Key(dir core.Direction) Intent {
	switch dir {
	case core.DirNext:
		if c.atLast {
			return IntentClose
		}
		return IntentNext
	case core.DirPrev:
		if c.atFirst {
			return IntentNone
		}
		return IntentPrev
	}
	return IntentNone
}
