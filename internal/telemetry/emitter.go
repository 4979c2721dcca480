package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event names emitted by the playback session controller.
const (
	EventMomentStart  = "moment_start"
	EventMomentEnd    = "moment_end"
	EventAdImpression = "ad_impression"
	EventAdSkip       = "ad_skip"
	EventQuartile     = "quartile"
	EventSessionClose = "session_close"
	EventMediaError   = "media_error"
)

// Event is one telemetry record as delivered to taps.
type Event struct {
	Name   string
	At     time.Time
	Fields map[string]any
}

// Emitter writes structured playback events. Safe for use from timer
// callbacks as well as the UI loop.
type Emitter struct {
	log  zerolog.Logger
	mu   sync.Mutex
	taps []chan Event
}

// NewEmitter creates an emitter logging under the given component name.
func NewEmitter(component string) *Emitter {
	return &Emitter{log: WithComponent(component)}
}

// Emit records one event with the given payload fields.
func (e *Emitter) Emit(name string, fields map[string]any) {
	ev := e.log.Info().Str("event", name)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(name)

	rec := Event{Name: name, At: time.Now(), Fields: fields}
	e.mu.Lock()
	for _, tap := range e.taps {
		select {
		case tap <- rec:
		default: // slow tap, drop rather than stall playback
		}
	}
	e.mu.Unlock()
}

// Tap registers a follower channel receiving every future event.
// A tap that falls behind misses events instead of blocking the emitter.
func (e *Emitter) Tap() <-chan Event {
	ch := make(chan Event, 64)
	e.mu.Lock()
	e.taps = append(e.taps, ch)
	e.mu.Unlock()
	return ch
}
