package mediacache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizeLocatorStripsQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/v/clip.mp4?token=abc&e=123", "https://cdn.example.com/v/clip.mp4"},
		{"https://cdn.example.com/v/clip.mp4", "https://cdn.example.com/v/clip.mp4"},
		{"https://cdn.example.com/v/clip.mp4#t=5", "https://cdn.example.com/v/clip.mp4"},
	}
	for _, c := range cases {
		if got := NormalizeLocator(c.in); got != c.want {
			t.Errorf("NormalizeLocator(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMemoryResolveMaterializesAndMemoizes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("media-bytes"))
	}))
	defer srv.Close()

	c := NewMemory(Config{Client: srv.Client()})
	defer c.Close()

	src := c.Resolve(context.Background(), srv.URL+"/clip.mp4?sig=1")
	if !src.Local {
		t.Fatalf("Resolve returned remote source: %+v", src)
	}
	data, err := os.ReadFile(src.URI)
	if err != nil {
		t.Fatalf("reading materialized file: %v", err)
	}
	if string(data) != "media-bytes" {
		t.Errorf("materialized bytes = %q, want %q", data, "media-bytes")
	}

	// Same locator with a different query hits the memo, not the network.
	again := c.Resolve(context.Background(), srv.URL+"/clip.mp4?sig=2")
	if again != src {
		t.Errorf("second Resolve = %+v, want memoized %+v", again, src)
	}
	if hits.Load() != 1 {
		t.Errorf("fetch count = %d, want 1", hits.Load())
	}
}

func TestConcurrentResolvesCoalesce(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := NewMemory(Config{Client: srv.Client()})
	defer c.Close()

	var wg sync.WaitGroup
	resolve := func() {
		defer wg.Done()
		c.Resolve(context.Background(), srv.URL+"/same.mp4")
	}

	wg.Add(2)
	go resolve()
	// Wait until the first fetch is in flight, then start the second
	// resolver so it must join the same flight.
	for hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	go resolve()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("fetch count = %d, want 1 (coalesced)", hits.Load())
	}
}

func TestResolveDegradesToRemoteOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewMemory(Config{Client: srv.Client()})
	defer c.Close()

	locator := srv.URL + "/missing.mp4"
	src := c.Resolve(context.Background(), locator)
	if src.Local {
		t.Error("Resolve returned a local source for a failed fetch")
	}
	if src.URI != locator {
		t.Errorf("Resolve URI = %q, want original locator %q", src.URI, locator)
	}
}

func TestBadgerSurvivesReopen(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("persistent"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	locator := srv.URL + "/clip.mp4"

	first, err := OpenBadger(Config{Dir: dir, Client: srv.Client()})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if src := first.Resolve(context.Background(), locator); !src.Local {
		t.Fatalf("first Resolve returned remote source: %+v", src)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenBadger(Config{Dir: dir, Client: srv.Client()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	src := second.Resolve(context.Background(), locator)
	if !src.Local {
		t.Fatalf("Resolve after reopen returned remote source: %+v", src)
	}
	if hits.Load() != 1 {
		t.Errorf("fetch count = %d, want 1 (served from persistent layer)", hits.Load())
	}
}

func TestInvalidateAllForcesRefetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("y"))
	}))
	defer srv.Close()

	c := NewMemory(Config{Client: srv.Client()})
	defer c.Close()

	locator := srv.URL + "/clip.mp4"
	c.Resolve(context.Background(), locator)
	if err := c.InvalidateAll(); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	c.Resolve(context.Background(), locator)

	if hits.Load() != 2 {
		t.Errorf("fetch count = %d, want 2 after invalidation", hits.Load())
	}
}

func TestOpenUnknownStrategy(t *testing.T) {
	if _, err := Open(Config{Strategy: "bolt"}); err == nil {
		t.Error("Open with unknown strategy returned nil error")
	}
}
