// Package rank reorders a playlist against a persisted user-interest
// profile. Scoring is a client-local heuristic: tag affinity blended
// with global popularity plus a little noise, with a hard demotion for
// recently watched moments.
package rank

import (
	"math/rand"
	"sort"

	"github.com/reelab/reel/internal/core"
)

const (
	tagAffinityWeight = 0.7
	popularityWeight  = 0.3

	// historyPenalty near-certainly demotes recently watched moments
	// without excluding them outright, so the list stays non-empty.
	historyPenalty = -10.0
)

// Ranker scores and reorders moments. Not safe for concurrent use;
// ranking is computed once per session open.
type Ranker struct {
	learningRate   float64
	historyWindow  int
	noiseAmplitude float64
	noise          func() float64
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLearningRate overrides the engagement learning rate.
func WithLearningRate(lr float64) Option {
	return func(r *Ranker) { r.learningRate = lr }
}

// WithHistoryWindow overrides how many recent watches are penalized.
func WithHistoryWindow(n int) Option {
	return func(r *Ranker) { r.historyWindow = n }
}

// WithNoise overrides the noise source. Pass a constant func for
// deterministic tests.
func WithNoise(f func() float64) Option {
	return func(r *Ranker) { r.noise = f }
}

// WithNoiseAmplitude overrides the symmetric noise range.
func WithNoiseAmplitude(a float64) Option {
	return func(r *Ranker) { r.noiseAmplitude = a }
}

// New creates a Ranker with default tuning.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		learningRate:   0.15,
		historyWindow:  20,
		noiseAmplitude: 0.05,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.noise == nil {
		r.noise = func() float64 {
			return (rand.Float64()*2 - 1) * r.noiseAmplitude
		}
	}
	return r
}

// Score computes the ranking score of one moment for a profile.
func (r *Ranker) Score(p *Profile, m core.Moment) float64 {
	if p.InRecentHistory(m.ID, r.historyWindow) {
		return historyPenalty
	}

	affinity := DefaultWeight
	if len(m.Tags) > 0 {
		sum := 0.0
		for _, tag := range m.Tags {
			sum += p.Weight(tag)
		}
		affinity = sum / float64(len(m.Tags))
	}

	return tagAffinityWeight*affinity + popularityWeight*m.GlobalPopularity + r.noise()
}

// Rank returns the moments stable-sorted by descending score. Ties keep
// their original order.
func (r *Ranker) Rank(p *Profile, moments []core.Moment) []core.Moment {
	type scored struct {
		m     core.Moment
		score float64
	}
	items := make([]scored, len(moments))
	for i, m := range moments {
		items[i] = scored{m: m, score: r.Score(p, m)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	out := make([]core.Moment, len(items))
	for i, s := range items {
		out[i] = s.m
	}
	return out
}

// EngagementScore maps an observed watch fraction to a feedback value.
// Ads never contribute: their score is fixed at zero.
func EngagementScore(watched float64, isAd bool) float64 {
	if isAd {
		return 0
	}
	switch {
	case watched >= 0.9:
		return 1.0
	case watched >= 0.5:
		return 0.5
	case watched >= 0.2:
		return 0.1
	case watched >= 0.05:
		return -0.2
	default:
		return -0.3
	}
}

// RecordEngagement nudges the profile's tag weights by the engagement
// score, clamped to the legal weight range. A zero score is a no-op.
func (r *Ranker) RecordEngagement(p *Profile, tags []string, score float64) {
	if score == 0 {
		return
	}
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	for _, tag := range tags {
		p.Interests[tag] = clampWeight(p.Weight(tag) + r.learningRate*score)
	}
}
