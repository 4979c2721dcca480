// Package ledger tracks which moments a user has already seen (persisted
// across sessions) and which ads they skipped (this browsing session
// only). Both sets feed the effective-playlist filter on session open.
package ledger

import (
	"github.com/reelab/reel/internal/store"
	"github.com/reelab/reel/internal/telemetry"
)

// DefaultSeenCap bounds the persisted seen list; the oldest entries are
// truncated first.
const DefaultSeenCap = 5000

// Ledgers holds the seen and ad-skipped sets for one process.
type Ledgers struct {
	seenStore *store.FileStore
	seenCap   int

	seenOrder []string // oldest first
	seenSet   map[string]struct{}

	skipped map[string]struct{}
}

// Option configures Ledgers.
type Option func(*Ledgers)

// WithSeenCap overrides the persisted seen-list cap.
func WithSeenCap(n int) Option {
	return func(l *Ledgers) {
		if n > 0 {
			l.seenCap = n
		}
	}
}

// New creates Ledgers backed by the given seen store. A nil store keeps
// the seen set in memory only. Load failures degrade to an empty set.
func New(seenStore *store.FileStore, opts ...Option) *Ledgers {
	l := &Ledgers{
		seenStore: seenStore,
		seenCap:   DefaultSeenCap,
		seenSet:   make(map[string]struct{}),
		skipped:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if seenStore != nil {
		var ids []string
		if _, err := seenStore.Load(&ids); err != nil {
			log := telemetry.WithComponent("ledger")
			log.Warn().Err(err).Msg("seen ledger load failed, starting empty")
		}
		for _, id := range ids {
			if _, dup := l.seenSet[id]; dup {
				continue
			}
			l.seenOrder = append(l.seenOrder, id)
			l.seenSet[id] = struct{}{}
		}
		l.truncate()
	}
	return l
}

// IsSeen reports whether the moment id has been seen before.
func (l *Ledgers) IsSeen(id string) bool {
	_, ok := l.seenSet[id]
	return ok
}

// MarkSeen records a moment id, persisting best-effort.
func (l *Ledgers) MarkSeen(id string) {
	if _, ok := l.seenSet[id]; !ok {
		l.seenOrder = append(l.seenOrder, id)
		l.seenSet[id] = struct{}{}
		l.truncate()
	}
	l.flush()
}

// SeenCount returns the number of seen ids currently retained.
func (l *Ledgers) SeenCount() int {
	return len(l.seenOrder)
}

// IsAdSkipped reports whether the ad was skipped this session.
func (l *Ledgers) IsAdSkipped(id string) bool {
	_, ok := l.skipped[id]
	return ok
}

// MarkAdSkipped records an ad skip for the rest of the session.
func (l *Ledgers) MarkAdSkipped(id string) {
	l.skipped[id] = struct{}{}
}

func (l *Ledgers) truncate() {
	if over := len(l.seenOrder) - l.seenCap; over > 0 {
		for _, id := range l.seenOrder[:over] {
			delete(l.seenSet, id)
		}
		l.seenOrder = append([]string(nil), l.seenOrder[over:]...)
	}
}

func (l *Ledgers) flush() {
	if l.seenStore == nil {
		return
	}
	if err := l.seenStore.Save(l.seenOrder); err != nil {
		log := telemetry.WithComponent("ledger")
		log.Warn().Err(err).Msg("seen ledger write failed")
	}
}
