package session

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/reelab/reel/internal/core"
	"github.com/reelab/reel/internal/errors"
	"github.com/reelab/reel/internal/ledger"
	"github.com/reelab/reel/internal/media"
	"github.com/reelab/reel/internal/mediacache"
	"github.com/reelab/reel/internal/rank"
)

// fakeHandles hands out media fakes and remembers them by moment id.
type fakeHandles struct {
	byID map[string]*media.Fake
}

func newFakeHandles() *fakeHandles {
	return &fakeHandles{byID: make(map[string]*media.Fake)}
}

func (f *fakeHandles) factory(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error) {
	h := media.NewFake()
	f.byID[m.ID] = h
	return h, nil
}

func testPlaylist() core.Playlist {
	return core.Playlist{Moments: []core.Moment{
		{ID: "v1", Kind: core.KindVideo, MediaLocator: "https://cdn.test/v1.mp4", Tags: []string{"a"}},
		{ID: "v2", Kind: core.KindVideo, MediaLocator: "https://cdn.test/v2.mp4", Tags: []string{"b"}},
		{ID: "ad1", Kind: core.KindAd, MediaLocator: "https://cdn.test/ad1.mp4",
			Sponsor: &core.Sponsor{Name: "Acme", CTAText: "Shop", CTAURL: "https://acme.test"}},
	}}
}

func newTestController(handles *fakeHandles, opts Options) *Controller {
	opts.Handles = handles.factory
	return New(opts)
}

func TestOpenActivatesStartIndexMuted(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if c.Phase() != PhaseActive {
		t.Errorf("phase = %v, want active", c.Phase())
	}
	if c.Index() != 0 {
		t.Errorf("index = %d, want 0", c.Index())
	}
	h := handles.byID["v1"]
	if h == nil {
		t.Fatal("no handle created for v1")
	}
	if !h.Playing {
		t.Error("active handle not playing")
	}
	if !h.Muted {
		t.Error("autoplay did not start muted")
	}
}

func TestOpenMountsOnlyLiveWindow(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})

	playlist := core.Playlist{Moments: []core.Moment{
		{ID: "a", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "b", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "c", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "d", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "e", Kind: core.KindVideo, MediaLocator: "u"},
	}}
	if err := c.Open(context.Background(), playlist, 2); err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, id := range []string{"b", "c", "d"} {
		if handles.byID[id] == nil {
			t.Errorf("no handle for live slot %s", id)
		}
	}
	for _, id := range []string{"a", "e"} {
		if handles.byID[id] != nil {
			t.Errorf("handle created outside the live window for %s", id)
		}
	}
}

func TestAdvanceReleasesDepartedSlot(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	playlist := core.Playlist{Moments: []core.Moment{
		{ID: "a", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "b", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "c", Kind: core.KindVideo, MediaLocator: "u"},
		{ID: "d", Kind: core.KindVideo, MediaLocator: "u"},
	}}
	if err := c.Open(ctx, playlist, 1); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Advance(ctx, core.DirNext); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if !handles.byID["a"].Released {
		t.Error("slot leaving the live window was not released")
	}
	if handles.byID["d"] == nil {
		t.Error("slot entering the live window was not mounted")
	}
	if !handles.byID["c"].Playing {
		t.Error("new active handle not playing")
	}
}

func TestPrevAtFirstIndexIsNoop(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Advance(ctx, core.DirPrev); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if c.Index() != 0 {
		t.Errorf("index = %d, want 0", c.Index())
	}
	if c.Phase() != PhaseActive {
		t.Errorf("phase = %v, want active", c.Phase())
	}
}

func TestNextAtLastIndexCloses(t *testing.T) {
	handles := newFakeHandles()
	closed := false
	c := newTestController(handles, Options{OnClose: func() { closed = true }})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 2); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Advance(ctx, core.DirNext); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if c.Phase() != PhaseClosed {
		t.Errorf("phase = %v, want closed", c.Phase())
	}
	if !closed {
		t.Error("OnClose was not called")
	}
	for id, h := range handles.byID {
		if !h.Released {
			t.Errorf("handle %s not released on close", id)
		}
	}
}

func TestMediaEndedAdvances(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	handles.byID["v1"].FireEnded()

	deadline := time.Now().Add(time.Second)
	for c.Index() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Index() != 1 {
		t.Errorf("index = %d after media end, want 1", c.Index())
	}
}

func TestStaleMediaEndedIgnored(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 1); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// An end signal from a neighbor handle must not move the index.
	c.OnMediaEnded(ctx, 0)
	if c.Index() != 1 {
		t.Errorf("index = %d after stale end event, want 1", c.Index())
	}
}

func TestSkipCurrentAdRequiresAd(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.SkipCurrentAd(ctx); !goerrors.Is(err, errors.ErrNotAd) {
		t.Errorf("SkipCurrentAd on video = %v, want ErrNotAd", err)
	}
}

func TestSkipCurrentAdHonorsMinDwell(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{AdMinDwell: time.Hour})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 2); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.SkipCurrentAd(ctx); !goerrors.Is(err, errors.ErrAdDwellNotMet) {
		t.Errorf("SkipCurrentAd before dwell = %v, want ErrAdDwellNotMet", err)
	}
	if c.CanSkipAd() {
		t.Error("CanSkipAd = true before min dwell")
	}
}

func TestSkipLastAdClosesAndFiltersOnReopen(t *testing.T) {
	ctx := context.Background()
	ledgers := ledger.New(nil)

	handles := newFakeHandles()
	c := newTestController(handles, Options{Ledgers: ledgers})
	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Advance(ctx, core.DirNext); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := c.Advance(ctx, core.DirNext); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if c.Current().ID != "ad1" {
		t.Fatalf("current = %s, want ad1", c.Current().ID)
	}

	if err := c.SkipCurrentAd(ctx); err != nil {
		t.Fatalf("SkipCurrentAd: %v", err)
	}
	if c.Phase() != PhaseClosed {
		t.Errorf("phase = %v, want closed after skipping the last moment", c.Phase())
	}
	if !ledgers.IsAdSkipped("ad1") {
		t.Error("ad1 not recorded in the skip ledger")
	}

	// Reopening in the same session excludes the skipped ad. The seen
	// filter would empty the list, so it falls back to the full list
	// before the skip filter applies.
	reopened := newTestController(newFakeHandles(), Options{Ledgers: ledgers})
	if err := reopened.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for _, m := range reopened.Effective() {
		if m.ID == "ad1" {
			t.Error("skipped ad still present in the effective playlist")
		}
	}
	if reopened.Len() != 2 {
		t.Errorf("effective length = %d, want 2", reopened.Len())
	}
}

func TestSeenFilterFallsBackWhenAllSeen(t *testing.T) {
	ctx := context.Background()
	ledgers := ledger.New(nil)
	for _, id := range []string{"v1", "v2", "ad1"} {
		ledgers.MarkSeen(id)
	}

	c := newTestController(newFakeHandles(), Options{Ledgers: ledgers})
	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("effective length = %d, want 3 (filter not applied)", c.Len())
	}
}

func TestEngagementFeedbackOnAdvance(t *testing.T) {
	handles := newFakeHandles()
	profile := rank.NewProfile()
	ranker := rank.New(rank.WithNoise(func() float64 { return 0 }))
	c := newTestController(handles, Options{Profile: profile, Ranker: ranker})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	handles.byID["v1"].SetFraction(0.95)
	if err := c.Advance(ctx, core.DirNext); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	want := rank.DefaultWeight + 0.15*1.0
	if got := profile.Interests["a"]; got != want {
		t.Errorf("interest[a] = %v, want %v", got, want)
	}
}

func TestAdEngagementNeverUpdatesProfile(t *testing.T) {
	handles := newFakeHandles()
	profile := rank.NewProfile()
	ranker := rank.New(rank.WithNoise(func() float64 { return 0 }))
	c := newTestController(handles, Options{Profile: profile, Ranker: ranker})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 2); err != nil {
		t.Fatalf("Open: %v", err)
	}
	handles.byID["ad1"].SetFraction(0.95)
	c.Close(ctx)

	if len(profile.Interests) != 0 {
		t.Errorf("interests = %v, want empty after ad-only session", profile.Interests)
	}
}

func TestAutoplayRejectionLeavesPausedAffordance(t *testing.T) {
	handles := newFakeHandles()
	c := New(Options{Handles: func(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error) {
		h := media.NewFake()
		h.QueuePlayError(errors.ErrAutoplayBlocked)
		h.QueuePlayError(errors.ErrAutoplayBlocked)
		handles.byID[m.ID] = h
		return h, nil
	}})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !c.Blocked() {
		t.Error("Blocked = false after both play attempts failed")
	}
	if !c.Paused() {
		t.Error("Paused = false; blocked moment should show a play affordance")
	}
	if c.Phase() != PhaseActive {
		t.Errorf("phase = %v, want active (failure is non-fatal)", c.Phase())
	}
	if h := handles.byID["v1"]; h.PlayCalls != 2 {
		t.Errorf("play attempts = %d, want 2 (single muted retry)", h.PlayCalls)
	}
}

func TestAutoplayRetrySucceeds(t *testing.T) {
	handles := newFakeHandles()
	c := New(Options{Handles: func(ctx context.Context, m core.Moment, src mediacache.Source) (core.MediaHandle, error) {
		h := media.NewFake()
		if m.ID == "v1" {
			h.QueuePlayError(errors.ErrAutoplayBlocked)
		}
		handles.byID[m.ID] = h
		return h, nil
	}})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if c.Blocked() {
		t.Error("Blocked = true although the muted retry succeeded")
	}
	if !handles.byID["v1"].Playing {
		t.Error("handle not playing after retry")
	}
}

func TestPauseOnlyAffectsActiveHandle(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 1); err != nil {
		t.Fatalf("Open: %v", err)
	}

	active := handles.byID["v2"]
	neighbor := handles.byID["v1"]
	neighborPauses := neighbor.PauseCalls

	c.TogglePause(ctx)
	if active.Playing {
		t.Error("active handle still playing after pause")
	}
	if neighbor.PauseCalls != neighborPauses {
		t.Error("pause leaked to a neighbor handle")
	}

	c.TogglePause(ctx)
	if !active.Playing {
		t.Error("active handle not playing after resume")
	}
}

func TestToggleMuteAppliesToActiveHandle(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !c.Muted() {
		t.Fatal("session should start with desired mute = true")
	}

	c.ToggleMute(ctx)
	if c.Muted() {
		t.Error("Muted = true after toggle")
	}
	if handles.byID["v1"].Muted {
		t.Error("active handle still muted after toggle")
	}
}

func TestAdMaxDwellAutoAdvances(t *testing.T) {
	handles := newFakeHandles()
	playlist := core.Playlist{Moments: []core.Moment{
		{ID: "ad1", Kind: core.KindAd, MediaLocator: "u",
			Sponsor: &core.Sponsor{Name: "Acme", CTAText: "Shop", CTAURL: "https://acme.test"}},
		{ID: "v1", Kind: core.KindVideo, MediaLocator: "u"},
	}}
	c := newTestController(handles, Options{AdMaxDwell: 30 * time.Millisecond})
	ctx := context.Background()

	if err := c.Open(ctx, playlist, 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for c.Index() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Index() != 1 {
		t.Error("ad max dwell did not auto-advance")
	}
}

func TestStartUnmutedKeepsMutedPlaybackUntilInteraction(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{StartUnmuted: true})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if c.Muted() {
		t.Error("desired mute state = muted despite StartUnmuted")
	}
	// Sound only arrives after a user interaction.
	if !handles.byID["v1"].Muted {
		t.Error("handle unmuted before any user interaction")
	}

	c.NoteUserInteraction(ctx)
	if handles.byID["v1"].Muted {
		t.Error("handle still muted after user interaction")
	}
}

func TestOpenClampsStartIndex(t *testing.T) {
	c := newTestController(newFakeHandles(), Options{})
	if err := c.Open(context.Background(), testPlaylist(), 99); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Index() != 2 {
		t.Errorf("index = %d, want clamped to 2", c.Index())
	}
}

func TestQuartileEventsFireOnceEach(t *testing.T) {
	handles := newFakeHandles()
	c := newTestController(handles, Options{})
	ctx := context.Background()

	if err := c.Open(ctx, testPlaylist(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tap := c.opts.Emitter.Tap()

	h := handles.byID["v1"]
	for _, f := range []float64{0.3, 0.3, 0.6, 0.8, 1.0} {
		h.SetFraction(f)
		c.PollProgress(ctx)
	}

	counts := make(map[int]int)
	for {
		select {
		case ev := <-tap:
			if ev.Name == "quartile" {
				counts[ev.Fields["quartile"].(int)]++
			}
			continue
		default:
		}
		break
	}
	for _, q := range []int{25, 50, 75, 100} {
		if counts[q] != 1 {
			t.Errorf("quartile %d fired %d times, want 1", q, counts[q])
		}
	}
}
