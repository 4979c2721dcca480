package tail

import (
	"context"
	"fmt"
	"io"

	"github.com/reelab/reel/internal/telemetry"
)

// Follower drains a telemetry tap and prints formatted lines.
type Follower struct {
	events    <-chan telemetry.Event
	formatter *Formatter
	out       io.Writer
	done      chan struct{}
}

// NewFollower creates a follower over the given event channel.
func NewFollower(events <-chan telemetry.Event, formatter *Formatter, out io.Writer) *Follower {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return &Follower{
		events:    events,
		formatter: formatter,
		out:       out,
		done:      make(chan struct{}),
	}
}

// Start prints events as they arrive until the context is cancelled,
// Stop is called, or the event channel closes.
func (f *Follower) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case e, ok := <-f.events:
			if !ok {
				return nil
			}
			fmt.Fprintln(f.out, f.formatter.Format(e))
		}
	}
}

// Stop stops the follower.
func (f *Follower) Stop() {
	close(f.done)
}
