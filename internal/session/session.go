// Package session owns the playback state machine: the active moment,
// mute/pause flags, progress, handle lifecycle across the live window,
// ad skipping, and close. All methods are safe for use from timer
// callbacks as well as the UI loop; state changes are atomic under one
// lock so back-to-back engagement updates never lose writes.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelab/reel/internal/core"
	"github.com/reelab/reel/internal/errors"
	"github.com/reelab/reel/internal/ledger"
	"github.com/reelab/reel/internal/mediacache"
	"github.com/reelab/reel/internal/rank"
	"github.com/reelab/reel/internal/store"
	"github.com/reelab/reel/internal/telemetry"
	"github.com/reelab/reel/internal/viewport"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseTransitioning
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// HandleFactory creates a MediaHandle for a moment from its resolved
// source.
type HandleFactory func(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error)

// Options wires the controller's collaborators.
type Options struct {
	Ranker       *rank.Ranker
	Profile      *rank.Profile
	ProfileStore *store.FileStore // optional; engagement flushes best-effort
	Ledgers      *ledger.Ledgers
	Cache        mediacache.Cache
	Handles      HandleFactory
	Emitter      *telemetry.Emitter
	OnClose      func()

	AdMinDwell time.Duration
	AdMaxDwell time.Duration

	// StartUnmuted sets the desired mute state to unmuted from the
	// first moment. Playback still begins muted; sound arrives via the
	// promotion path once the user has interacted.
	StartUnmuted bool

	// AutoplayRetries is how many extra muted play attempts follow a
	// rejected autoplay before the moment is marked blocked. Zero means
	// the default of one retry.
	AutoplayRetries int
}

// unmutePromotionDelay is how soon after a successful muted play the
// controller tries to promote to unmuted.
const unmutePromotionDelay = 250 * time.Millisecond

// Controller is the playback session state machine.
type Controller struct {
	mu   sync.Mutex
	opts Options
	id   string
	log  zerolog.Logger

	eff   []core.Moment
	idx   int
	phase Phase

	muted          bool // desired mute state
	paused         bool
	blocked        bool // playback failed even after the muted retry
	userInteracted bool
	progress       float64
	quartiles      [4]bool

	handles map[int]core.MediaHandle
	stops   map[int]chan struct{}

	// activation is an attempt generation counter: any timer armed for
	// a previous activation detects staleness and no-ops.
	activation int

	adActivatedAt time.Time
	dwell         *time.Timer
}

// New creates a Controller. Open must be called before anything else.
func New(opts Options) *Controller {
	if opts.Emitter == nil {
		opts.Emitter = telemetry.NewEmitter("session")
	}
	if opts.Profile == nil {
		opts.Profile = rank.NewProfile()
	}
	if opts.Ledgers == nil {
		opts.Ledgers = ledger.New(nil)
	}
	if opts.AutoplayRetries <= 0 {
		opts.AutoplayRetries = 1
	}
	return &Controller{
		opts:    opts,
		id:      uuid.NewString(),
		log:     telemetry.WithComponent("session"),
		muted:   !opts.StartUnmuted,
		handles: make(map[int]core.MediaHandle),
		stops:   make(map[int]chan struct{}),
	}
}

// ID returns the session id attached to telemetry.
func (c *Controller) ID() string { return c.id }

// Open builds the effective playlist, activates the start moment, and
// begins muted playback.
func (c *Controller) Open(ctx context.Context, playlist core.Playlist, startIndex int) error {
	if err := playlist.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		return errors.ErrSessionClosed
	}

	c.eff = c.buildEffective(playlist)
	if len(c.eff) == 0 {
		return errors.ErrPlaylistEmpty
	}

	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > len(c.eff)-1 {
		startIndex = len(c.eff) - 1
	}
	c.idx = startIndex
	c.phase = PhaseActive

	lo, hi := viewport.Window(c.idx, len(c.eff))
	for i := lo; i <= hi; i++ {
		c.mountLocked(ctx, i)
	}
	c.activateLocked(ctx)
	return nil
}

// buildEffective ranks the playlist and applies the ledger filters.
// A filter that would empty the list is not applied: an empty player
// is never a valid state.
func (c *Controller) buildEffective(playlist core.Playlist) []core.Moment {
	moments := playlist.Moments
	if c.opts.Ranker != nil {
		moments = c.opts.Ranker.Rank(c.opts.Profile, moments)
	}

	unseen := make([]core.Moment, 0, len(moments))
	for _, m := range moments {
		if !c.opts.Ledgers.IsSeen(m.ID) {
			unseen = append(unseen, m)
		}
	}
	if len(unseen) > 0 {
		moments = unseen
	}

	unskipped := make([]core.Moment, 0, len(moments))
	for _, m := range moments {
		if !(m.IsAd() && c.opts.Ledgers.IsAdSkipped(m.ID)) {
			unskipped = append(unskipped, m)
		}
	}
	if len(unskipped) > 0 {
		moments = unskipped
	}
	return moments
}

// Advance moves to the neighboring moment. Prev at the first index is
// a no-op; next at the last index closes the session.
func (c *Controller) Advance(ctx context.Context, dir core.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceLocked(ctx, dir)
}

func (c *Controller) advanceLocked(ctx context.Context, dir core.Direction) error {
	if c.phase != PhaseActive {
		return nil
	}
	if dir == core.DirPrev && c.idx == 0 {
		return nil
	}
	if dir == core.DirNext && c.idx == len(c.eff)-1 {
		c.closeLocked(ctx)
		return nil
	}

	c.phase = PhaseTransitioning
	c.deactivateLocked(ctx)

	old := c.idx
	if dir == core.DirNext {
		c.idx++
	} else {
		c.idx--
	}

	// Teardown before creation, so decoder usage never spikes.
	teardown, create := viewport.Plan(old, c.idx, len(c.eff))
	for _, i := range teardown {
		c.unmountLocked(i)
	}
	for _, i := range create {
		c.mountLocked(ctx, i)
	}

	c.phase = PhaseActive
	c.activateLocked(ctx)
	return nil
}

// SkipCurrentAd records the ad in the session skip ledger and advances.
// Valid only when the current moment is an ad whose minimum dwell has
// passed.
func (c *Controller) SkipCurrentAd(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseActive {
		return errors.ErrSessionClosed
	}
	m := c.eff[c.idx]
	if !m.IsAd() {
		return errors.ErrNotAd
	}
	if c.opts.AdMinDwell > 0 && time.Since(c.adActivatedAt) < c.opts.AdMinDwell {
		return errors.ErrAdDwellNotMet
	}

	c.opts.Ledgers.MarkAdSkipped(m.ID)
	c.opts.Emitter.Emit(telemetry.EventAdSkip, map[string]any{
		"content_id": m.ID,
		"position":   c.idx,
		"dwell_ms":   time.Since(c.adActivatedAt).Milliseconds(),
	})
	return c.advanceLocked(ctx, core.DirNext)
}

// OnMediaEnded reacts to a handle's end-of-media signal. Stale signals
// from handles that are no longer active are ignored.
func (c *Controller) OnMediaEnded(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive || index != c.idx {
		return
	}
	c.progress = 1
	_ = c.advanceLocked(ctx, core.DirNext)
}

// ToggleMute flips the desired mute state and applies it to the active
// handle.
func (c *Controller) ToggleMute(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	if h, ok := c.handles[c.idx]; ok && c.phase == PhaseActive {
		if err := h.SetMuted(ctx, c.muted); err != nil {
			c.log.Warn().Err(err).Msg("set mute failed")
		}
	}
}

// TogglePause flips the pause flag. Only the active handle is
// affected, never neighbors.
func (c *Controller) TogglePause(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return
	}
	c.paused = !c.paused
	h, ok := c.handles[c.idx]
	if !ok {
		return
	}
	var err error
	if c.paused {
		err = h.Pause(ctx)
	} else {
		err = h.Play(ctx)
		c.blocked = false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("toggle pause failed")
	}
}

// NoteUserInteraction records the host page's first user interaction,
// unlocking unmuted playback.
func (c *Controller) NoteUserInteraction(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userInteracted {
		return
	}
	c.userInteracted = true
	if h, ok := c.handles[c.idx]; ok && c.phase == PhaseActive && !c.muted {
		if err := h.SetMuted(ctx, false); err != nil {
			c.log.Warn().Err(err).Msg("unmute after interaction failed")
		}
	}
}

// Close tears the session down. Idempotent.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(ctx)
}

func (c *Controller) closeLocked(ctx context.Context) {
	if c.phase == PhaseClosed {
		return
	}
	c.deactivateLocked(ctx)
	for i := range c.handles {
		c.unmountLocked(i)
	}
	c.phase = PhaseClosed
	c.opts.Emitter.Emit(telemetry.EventSessionClose, map[string]any{
		"session_id": c.id,
		"position":   c.idx,
	})
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}
}

// PollProgress refreshes the progress fraction from the active handle
// and emits quartile crossings. Intended to be called on the UI's
// refresh cadence.
func (c *Controller) PollProgress(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return c.progress
	}
	h, ok := c.handles[c.idx]
	if !ok {
		return c.progress
	}
	f, err := h.Progress(ctx)
	if err != nil {
		return c.progress
	}
	c.progress = f

	quartiles := []float64{0.25, 0.5, 0.75, 1.0}
	for qi, q := range quartiles {
		if f >= q && !c.quartiles[qi] {
			c.quartiles[qi] = true
			c.opts.Emitter.Emit(telemetry.EventQuartile, map[string]any{
				"content_id": c.eff[c.idx].ID,
				"quartile":   int(q * 100),
			})
		}
	}
	return f
}

// mountLocked creates the handle for index i and watches its end
// signal.
func (c *Controller) mountLocked(ctx context.Context, i int) {
	if _, ok := c.handles[i]; ok {
		return
	}
	m := c.eff[i]

	var src mediacache.Source
	switch {
	case m.Kind == core.KindHostedClip:
		src = mediacache.Source{URI: m.HostedVideoID}
	case c.opts.Cache != nil:
		src = c.opts.Cache.Resolve(ctx, m.MediaLocator)
	default:
		src = mediacache.Source{URI: m.MediaLocator}
	}

	h, err := c.opts.Handles(ctx, m, src)
	if err != nil {
		c.log.Warn().Err(err).Str("content_id", m.ID).Msg("handle creation failed")
		c.opts.Emitter.Emit(telemetry.EventMediaError, map[string]any{
			"content_id": m.ID,
			"error":      err.Error(),
		})
		return
	}
	c.handles[i] = h

	stop := make(chan struct{})
	c.stops[i] = stop
	go func(index int, ended <-chan struct{}) {
		select {
		case <-ended:
			c.OnMediaEnded(context.Background(), index)
		case <-stop:
		}
	}(i, h.Ended())
}

// unmountLocked releases the handle at index i. Release pauses and
// mutes before freeing so the decoder is reclaimable immediately.
func (c *Controller) unmountLocked(i int) {
	h, ok := c.handles[i]
	if !ok {
		return
	}
	if err := h.Release(); err != nil {
		c.log.Warn().Err(err).Int("index", i).Msg("handle release failed")
	}
	delete(c.handles, i)
	if stop, ok := c.stops[i]; ok {
		close(stop)
		delete(c.stops, i)
	}
}

// activateLocked makes the current index the playing moment.
func (c *Controller) activateLocked(ctx context.Context) {
	c.activation++
	gen := c.activation
	c.progress = 0
	c.blocked = false
	c.paused = false
	c.quartiles = [4]bool{}

	m := c.eff[c.idx]
	c.opts.Ledgers.MarkSeen(m.ID)
	c.opts.Profile.RecordWatch(m.ID)
	c.flushProfileLocked()

	c.opts.Emitter.Emit(telemetry.EventMomentStart, map[string]any{
		"content_id": m.ID,
		"position":   c.idx,
	})

	if m.IsAd() {
		c.adActivatedAt = time.Now()
		c.opts.Emitter.Emit(telemetry.EventAdImpression, map[string]any{
			"content_id": m.ID,
			"sponsor":    m.Sponsor.Name,
		})
		if c.opts.AdMaxDwell > 0 {
			c.armDwellLocked(c.opts.AdMaxDwell, gen)
		}
	}

	h, ok := c.handles[c.idx]
	if !ok {
		c.blocked = true
		return
	}
	c.startPlaybackLocked(ctx, h, gen)
}

// startPlaybackLocked applies the autoplay policy: play muted first,
// retry muted once on rejection, and promote to unmuted shortly after
// if the desired state is unmuted and the user has interacted.
func (c *Controller) startPlaybackLocked(ctx context.Context, h core.MediaHandle, gen int) {
	if err := h.SetMuted(ctx, true); err != nil {
		c.log.Warn().Err(err).Msg("initial mute failed")
	}
	err := h.Play(ctx)
	for retry := 0; err != nil && retry < c.opts.AutoplayRetries; retry++ {
		err = h.Play(ctx)
	}
	if err != nil {
		// Non-fatal: the moment stays paused and visible with a play
		// affordance.
		c.blocked = true
		c.paused = true
		c.opts.Emitter.Emit(telemetry.EventMediaError, map[string]any{
			"content_id": c.eff[c.idx].ID,
			"error":      err.Error(),
		})
		return
	}

	if !c.muted && c.userInteracted {
		time.AfterFunc(unmutePromotionDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.activation != gen || c.phase != PhaseActive {
				return
			}
			if err := h.SetMuted(context.Background(), false); err != nil {
				c.log.Warn().Err(err).Msg("unmute promotion failed")
			}
		})
	}
}

// deactivateLocked records engagement for the departing moment and
// disarms its timers.
func (c *Controller) deactivateLocked(ctx context.Context) {
	if c.phase == PhaseIdle || len(c.eff) == 0 {
		return
	}
	c.activation++
	c.disarmDwellLocked()

	m := c.eff[c.idx]
	watched := c.progress
	if h, ok := c.handles[c.idx]; ok {
		if f, err := h.Progress(ctx); err == nil {
			watched = f
		}
	}

	score := rank.EngagementScore(watched, m.IsAd())
	if c.opts.Ranker != nil {
		c.opts.Ranker.RecordEngagement(c.opts.Profile, m.Tags, score)
		c.flushProfileLocked()
	}
	c.opts.Emitter.Emit(telemetry.EventMomentEnd, map[string]any{
		"content_id": m.ID,
		"position":   c.idx,
		"watched":    watched,
		"engagement": score,
	})
}

func (c *Controller) armDwellLocked(d time.Duration, gen int) {
	c.disarmDwellLocked()
	c.dwell = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.activation != gen || c.phase != PhaseActive {
			return
		}
		_ = c.advanceLocked(context.Background(), core.DirNext)
	})
}

func (c *Controller) disarmDwellLocked() {
	if c.dwell != nil {
		c.dwell.Stop()
		c.dwell = nil
	}
}

func (c *Controller) flushProfileLocked() {
	if c.opts.ProfileStore == nil {
		return
	}
	if err := c.opts.ProfileStore.Save(c.opts.Profile); err != nil {
		c.log.Warn().Err(err).Msg("profile write failed")
	}
}
