package rank

import (
	"testing"

	"github.com/reelab/reel/internal/core"
)

func noNoise() float64 { return 0 }

func TestWeightDefaultsForUnknownTag(t *testing.T) {
	p := NewProfile()
	if w := p.Weight("nba"); w != DefaultWeight {
		t.Errorf("Weight = %v, want %v", w, DefaultWeight)
	}
}

func TestRecordEngagementFullWatch(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))

	r.RecordEngagement(p, []string{"nba"}, EngagementScore(0.95, false))

	want := DefaultWeight + 0.15*1.0
	if got := p.Interests["nba"]; got != want {
		t.Errorf("interest[nba] = %v, want %v", got, want)
	}
}

func TestRecordEngagementClamping(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))

	// Drive a tag far past both bounds.
	for i := 0; i < 100; i++ {
		r.RecordEngagement(p, []string{"up"}, 1.0)
		r.RecordEngagement(p, []string{"down"}, -0.3)
	}

	if w := p.Interests["up"]; w != MaxWeight {
		t.Errorf("interest[up] = %v, want clamped to %v", w, MaxWeight)
	}
	if w := p.Interests["down"]; w != MinWeight {
		t.Errorf("interest[down] = %v, want clamped to %v", w, MinWeight)
	}
	for tag, w := range p.Interests {
		if w < MinWeight || w > MaxWeight {
			t.Errorf("interest[%s] = %v out of [%v, %v]", tag, w, MinWeight, MaxWeight)
		}
	}
}

func TestEngagementScoreMapping(t *testing.T) {
	cases := []struct {
		watched float64
		isAd    bool
		want    float64
	}{
		{0.95, false, 1.0},
		{0.9, false, 1.0},
		{0.6, false, 0.5},
		{0.3, false, 0.1},
		{0.1, false, -0.2},
		{0.0, false, -0.3},
		{0.95, true, 0},
		{0.0, true, 0},
	}
	for _, c := range cases {
		if got := EngagementScore(c.watched, c.isAd); got != c.want {
			t.Errorf("EngagementScore(%v, %v) = %v, want %v", c.watched, c.isAd, got, c.want)
		}
	}
}

func TestAdsNeverUpdateInterests(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))

	r.RecordEngagement(p, []string{"cars"}, EngagementScore(1.0, true))

	if _, ok := p.Interests["cars"]; ok {
		t.Error("ad engagement updated the interest vector")
	}
}

func TestScorePenalizesRecentHistory(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))

	watched := core.Moment{ID: "v1", Kind: core.KindVideo, Tags: []string{"a"}}
	fresh := core.Moment{ID: "v2", Kind: core.KindVideo, Tags: []string{"b"}}
	p.RecordWatch("v1")

	if s := r.Score(p, watched); s > -10 {
		t.Errorf("score of recently watched = %v, want <= -10", s)
	}
	if s := r.Score(p, fresh); s < -1 {
		t.Errorf("score of fresh moment = %v, want >= -1", s)
	}
}

func TestScoreBeyondHistoryWindow(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise), WithHistoryWindow(20))

	p.RecordWatch("old")
	for i := 0; i < 25; i++ {
		p.RecordWatch(string(rune('a' + i)))
	}

	m := core.Moment{ID: "old", Kind: core.KindVideo, Tags: []string{"a"}}
	if s := r.Score(p, m); s <= -10 {
		t.Errorf("score of watch outside the recent window = %v, want unpenalized", s)
	}
}

func TestRankStableOrderOnTies(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))

	moments := []core.Moment{
		{ID: "a", Kind: core.KindVideo, Tags: []string{"x"}},
		{ID: "b", Kind: core.KindVideo, Tags: []string{"x"}},
		{ID: "c", Kind: core.KindVideo, Tags: []string{"x"}},
	}

	ranked := r.Rank(p, moments)
	for i, id := range []string{"a", "b", "c"} {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d] = %s, want %s (stable order)", i, ranked[i].ID, id)
		}
	}
}

func TestRankPrefersHigherAffinity(t *testing.T) {
	p := NewProfile()
	r := New(WithNoise(noNoise))
	p.Interests["loved"] = 3.0

	moments := []core.Moment{
		{ID: "plain", Kind: core.KindVideo, Tags: []string{"other"}},
		{ID: "fav", Kind: core.KindVideo, Tags: []string{"loved"}},
	}

	ranked := r.Rank(p, moments)
	if ranked[0].ID != "fav" {
		t.Errorf("ranked[0] = %s, want fav", ranked[0].ID)
	}
}

func TestRecordWatchDedupAndCap(t *testing.T) {
	p := NewProfile()

	p.RecordWatch("a")
	p.RecordWatch("b")
	p.RecordWatch("a")

	if len(p.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(p.History))
	}
	if p.History[0] != "a" || p.History[1] != "b" {
		t.Errorf("history = %v, want [a b]", p.History)
	}

	for i := 0; i < HistoryCap+10; i++ {
		p.RecordWatch(string(rune(i)))
	}
	if len(p.History) != HistoryCap {
		t.Errorf("history length = %d, want %d", len(p.History), HistoryCap)
	}
}
