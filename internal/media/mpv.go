package media

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reelab/reel/internal/core"
	reelerrors "github.com/reelab/reel/internal/errors"
	"github.com/reelab/reel/internal/telemetry"
)

// MPVHandle drives one mpv process over its JSON IPC socket. Each
// handle owns its own process, so releasing it frees the hardware
// decoder immediately.
type MPVHandle struct {
	cmd    *exec.Cmd
	conn   net.Conn
	socket string

	mu      sync.Mutex
	reqID   int
	pending map[int]chan mpvResponse

	ended   chan struct{}
	endOnce sync.Once
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int             `json:"request_id"`
	Event     string          `json:"event"`
}

const mpvConnectTimeout = 3 * time.Second

// NewMPV spawns mpv for the given source, initially paused and muted.
// The caller starts playback through the handle.
func NewMPV(ctx context.Context, uri string) (*MPVHandle, error) {
	socket := filepath.Join(os.TempDir(), fmt.Sprintf("reel-mpv-%s.sock", uuid.NewString()))

	cmd := exec.Command("mpv",
		"--no-terminal",
		"--really-quiet",
		"--pause",
		"--mute=yes",
		"--loop-file=no",
		"--keep-open=no",
		"--input-ipc-server="+socket,
		uri,
	)
	if err := cmd.Start(); err != nil {
		return nil, reelerrors.WithSuggestion(
			fmt.Errorf("%w: start mpv: %w", reelerrors.ErrMediaUnavailable, err),
			"Install mpv; it provides video playback for reel")
	}

	conn, err := dialWithRetry(ctx, socket, mpvConnectTimeout)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: connect mpv ipc: %w", reelerrors.ErrMediaUnavailable, err)
	}

	h := &MPVHandle{
		cmd:     cmd,
		conn:    conn,
		socket:  socket,
		pending: make(map[int]chan mpvResponse),
		ended:   make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

// dialWithRetry polls the IPC socket until mpv creates it.
func dialWithRetry(ctx context.Context, socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (h *MPVHandle) readLoop() {
	scanner := bufio.NewScanner(h.conn)
	for scanner.Scan() {
		var resp mpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		if resp.Event == "end-file" {
			h.endOnce.Do(func() { close(h.ended) })
			continue
		}
		if resp.RequestID != 0 {
			h.mu.Lock()
			ch, ok := h.pending[resp.RequestID]
			delete(h.pending, resp.RequestID)
			h.mu.Unlock()
			if ok {
				ch <- resp
			}
		}
	}
}

// request sends one IPC command and waits for its reply.
func (h *MPVHandle) request(ctx context.Context, cmd ...any) (json.RawMessage, error) {
	h.mu.Lock()
	h.reqID++
	id := h.reqID
	ch := make(chan mpvResponse, 1)
	h.pending[id] = ch
	h.mu.Unlock()

	payload, err := json.Marshal(map[string]any{"command": cmd, "request_id": id})
	if err != nil {
		return nil, err
	}
	if _, err := h.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("mpv ipc write: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	case <-h.ended:
		return nil, fmt.Errorf("mpv: media ended")
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Play implements core.MediaHandle.
func (h *MPVHandle) Play(ctx context.Context) error {
	_, err := h.request(ctx, "set_property", "pause", false)
	return err
}

// Pause implements core.MediaHandle.
func (h *MPVHandle) Pause(ctx context.Context) error {
	_, err := h.request(ctx, "set_property", "pause", true)
	return err
}

// SetMuted implements core.MediaHandle.
func (h *MPVHandle) SetMuted(ctx context.Context, muted bool) error {
	_, err := h.request(ctx, "set_property", "mute", muted)
	return err
}

// Seek implements core.MediaHandle.
func (h *MPVHandle) Seek(ctx context.Context, pos time.Duration) error {
	_, err := h.request(ctx, "seek", pos.Seconds(), "absolute")
	return err
}

// Progress implements core.MediaHandle.
func (h *MPVHandle) Progress(ctx context.Context) (float64, error) {
	data, err := h.request(ctx, "get_property", "percent-pos")
	if err != nil {
		return 0, err
	}
	var pct float64
	if err := json.Unmarshal(data, &pct); err != nil {
		return 0, err
	}
	return pct / 100, nil
}

// Ended implements core.MediaHandle.
func (h *MPVHandle) Ended() <-chan struct{} {
	return h.ended
}

// Release implements core.MediaHandle. Playback is paused and muted
// before the process goes away so the decoder is freed promptly even
// if shutdown stalls.
func (h *MPVHandle) Release() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = h.request(ctx, "set_property", "pause", true)
	_, _ = h.request(ctx, "set_property", "mute", true)
	_, _ = h.request(ctx, "quit")

	_ = h.conn.Close()
	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if err := h.cmd.Process.Kill(); err != nil {
			log := telemetry.WithComponent("media")
			log.Warn().Err(err).Msg("mpv kill failed")
		}
		<-done
	}
	_ = os.Remove(h.socket)
	return nil
}

var _ core.MediaHandle = (*MPVHandle)(nil)
