// Package tui renders the moments player in the terminal. The real
// product embeds the engine behind a host surface; this front end
// exists so the whole loop can be exercised from a shell.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reelab/reel/internal/browser"
	"github.com/reelab/reel/internal/core"
	"github.com/reelab/reel/internal/gesture"
	"github.com/reelab/reel/internal/session"
	"github.com/reelab/reel/internal/tui/styles"
)

// frameInterval drives the settle physics. ~30fps is plenty for a
// terminal.
const frameInterval = 33 * time.Millisecond

// progressInterval drives playback progress polling.
const progressInterval = 250 * time.Millisecond

// rowsPerViewport is how many terminal rows one viewport height maps
// to when translating gesture offsets into the card stack.
const rowsPerViewport = 1000.0

// App holds the player application state.
type App struct {
	Session *session.Controller
	Gesture *gesture.Controller
}

// NewApp wires a session and gesture controller into a TUI app.
func NewApp(sess *session.Controller, g *gesture.Controller) *App {
	return &App{Session: sess, Gesture: g}
}

// Model is the main TUI model.
type Model struct {
	app    *App
	width  int
	height int

	bar      progress.Model
	progress float64
	offset   float64

	showHelp bool

	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model.
func NewModel(app *App) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.ShowPercentage = false
	return Model{
		app: app,
		bar: bar,
	}
}

// Messages
type frameMsg time.Time
type progressMsg float64
type errMsg error

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) pollProgress() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressMsg(m.app.Session.PollProgress(context.Background()))
	})
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTick(), m.pollProgress())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		m.app.Gesture.SetViewportHeight(rowsPerViewport)
		return m, nil

	case frameMsg:
		if m.app.Session.Phase() == session.PhaseClosed {
			m.quitting = true
			return m, tea.Quit
		}
		if m.app.Gesture.Phase() == core.GestureSettling {
			m.offset, _ = m.app.Gesture.StepSettle(frameInterval)
		} else {
			m.offset = m.app.Gesture.Offset()
		}
		return m, frameTick()

	case progressMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.progress = float64(msg)
		return m, m.pollProgress()

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.app.Session.Close(context.Background())
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	ctx := context.Background()
	m.app.Session.NoteUserInteraction(ctx)

	switch msg.String() {
	case "q", "esc":
		m.app.Session.Close(ctx)
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "j", "down":
		return m.applyIntent(m.app.Gesture.Key(core.DirNext))

	case "k", "up":
		return m.applyIntent(m.app.Gesture.Key(core.DirPrev))

	case " ":
		m.app.Session.TogglePause(ctx)
		return m, nil

	case "m":
		m.app.Session.ToggleMute(ctx)
		return m, nil

	case "s":
		if err := m.app.Session.SkipCurrentAd(ctx); err != nil {
			return m, func() tea.Msg { return errMsg(err) }
		}
		return m.syncBounds(), nil

	case "o":
		return m, m.openSponsorLink()
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var delta float64
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		delta = 120
	case tea.MouseButtonWheelUp:
		delta = -120
	default:
		return m, nil
	}
	m.app.Session.NoteUserInteraction(context.Background())
	return m.applyIntent(m.app.Gesture.Wheel(delta, time.Now()))
}

// applyIntent translates a gesture decision into a session operation.
func (m Model) applyIntent(intent gesture.Intent) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch intent {
	case gesture.IntentNext:
		if err := m.app.Session.Advance(ctx, core.DirNext); err != nil {
			return m, func() tea.Msg { return errMsg(err) }
		}
	case gesture.IntentPrev:
		if err := m.app.Session.Advance(ctx, core.DirPrev); err != nil {
			return m, func() tea.Msg { return errMsg(err) }
		}
	case gesture.IntentClose:
		m.app.Session.Close(ctx)
		m.quitting = true
		return m, tea.Quit
	}
	return m.syncBounds(), nil
}

// syncBounds tells the gesture controller where the session sits so
// boundary damping applies at the right edges.
func (m Model) syncBounds() Model {
	m.app.Gesture.SetBounds(m.app.Session.AtFirst(), m.app.Session.AtLast())
	m.progress = 0
	return m
}

func (m Model) openSponsorLink() tea.Cmd {
	current := m.app.Session.Current()
	return func() tea.Msg {
		if current.Sponsor == nil || current.Sponsor.CTAURL == "" {
			return nil
		}
		if err := browser.Open(current.Sponsor.CTAURL); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	sess := m.app.Session

	var cards []string
	if prev, ok := sess.At(sess.Index() - 1); ok {
		cards = append(cards, m.renderNeighbor(prev, "above"))
	}
	cards = append(cards, m.renderCurrent())
	if next, ok := sess.At(sess.Index() + 1); ok {
		cards = append(cards, m.renderNeighbor(next, "below"))
	}

	stack := lipgloss.JoinVertical(lipgloss.Left, cards...)
	// Gesture offsets map to whole rows; positive offsets push the
	// stack down while it settles back.
	if shift := int(m.offset / rowsPerViewport * float64(m.height)); shift > 0 {
		stack = strings.Repeat("\n", shift) + stack
	}
	return lipgloss.JoinVertical(lipgloss.Left, stack, m.renderStatusBar())
}

func (m Model) renderCurrent() string {
	sess := m.app.Session
	cur := sess.Current()

	title := cur.Title
	if title == "" {
		title = cur.ID
	}

	header := styles.Title.Render(title)
	if cur.IsAd() && cur.Sponsor != nil {
		header = lipgloss.JoinHorizontal(lipgloss.Top,
			styles.AdBadge.Render("AD"), " ",
			styles.Title.Render(cur.Sponsor.Name), " ",
			styles.Subtitle.Render(cur.Sponsor.CTAText))
	}

	status := fmt.Sprintf("%s %s  %d/%d",
		styles.StatusIcon(!sess.Paused()),
		styles.MuteIcon(sess.Muted()),
		sess.Index()+1, sess.Len())
	if sess.Blocked() {
		status += "  " + styles.Paused.Render("tap to play")
	}
	if cur.IsAd() && sess.CanSkipAd() {
		status += "  " + styles.Highlight.Render("s: skip ad")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.bar.ViewAs(m.progress),
		styles.Muted.Render(status),
	)
	return styles.Card(true).Width(m.width - 4).Render(body)
}

func (m Model) renderNeighbor(mom core.Moment, where string) string {
	title := mom.Title
	if title == "" {
		title = mom.ID
	}
	label := styles.Dim.Render(fmt.Sprintf("%s: %s", where, title))
	return styles.Card(false).Width(m.width - 4).Render(label)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:close  j/k:next/prev  space:pause  m:mute  s:skip ad  o:sponsor link  ?:help")
	if m.lastError != nil {
		status = styles.Paused.Render("Error: " + m.lastError.Error())
	}
	return status
}

func (m Model) renderHelp() string {
	help := `
  Moments player

  j, down, wheel down   next moment
  k, up, wheel up       previous moment
  space                 pause / resume
  m                     mute / unmute
  s                     skip ad (after minimum dwell)
  o                     open sponsor link
  q, esc                close session
  ?                     toggle this help
`
	return styles.BorderStyle.Padding(1, 2).Render(help)
}

// Run starts the TUI event loop and blocks until the session closes.
func Run(app *App) error {
	p := tea.NewProgram(NewModel(app), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
