package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/reelab/reel/internal/telemetry"
)

// Formatter formats telemetry events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e telemetry.Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e telemetry.Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.At.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Name))
	}
	parts = append(parts, eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e telemetry.Event) string {
	data := templateData{
		Type:      e.Name,
		Emoji:     eventEmoji(e.Name),
		Timestamp: e.At,
		Time:      e.At.Format("15:04:05"),
		ContentID: fieldString(e, "content_id"),
		Sponsor:   fieldString(e, "sponsor"),
		Position:  fieldInt(e, "position"),
		Quartile:  fieldInt(e, "quartile"),
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	ContentID string
	Sponsor   string
	Position  int
	Quartile  int
}

// eventDescription returns a human-readable description of the event.
func eventDescription(e telemetry.Event) string {
	id := fieldString(e, "content_id")

	switch e.Name {
	case telemetry.EventMomentStart:
		return fmt.Sprintf("Now playing: %s (position %d)", id, fieldInt(e, "position"))

	case telemetry.EventMomentEnd:
		return fmt.Sprintf("Finished: %s (watched %.0f%%)", id, fieldFloat(e, "watched")*100)

	case telemetry.EventQuartile:
		return fmt.Sprintf("Quartile %d%%: %s", fieldInt(e, "quartile"), id)

	case telemetry.EventAdImpression:
		return fmt.Sprintf("Ad impression: %s by %s", id, fieldString(e, "sponsor"))

	case telemetry.EventAdSkip:
		return fmt.Sprintf("Ad skipped: %s", id)

	case telemetry.EventSessionClose:
		return "Session closed"

	case telemetry.EventMediaError:
		return fmt.Sprintf("Media error: %s (%s)", id, fieldString(e, "error"))

	default:
		return e.Name
	}
}

// eventEmoji returns an emoji for the event name.
func eventEmoji(name string) string {
	switch name {
	case telemetry.EventMomentStart:
		return "🎬"
	case telemetry.EventMomentEnd:
		return "✅"
	case telemetry.EventQuartile:
		return "⏱️"
	case telemetry.EventAdImpression:
		return "📢"
	case telemetry.EventAdSkip:
		return "⏭️"
	case telemetry.EventSessionClose:
		return "🛑"
	case telemetry.EventMediaError:
		return "⚠️"
	default:
		return "❓"
	}
}

func fieldString(e telemetry.Event, key string) string {
	if v, ok := e.Fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(e telemetry.Event, key string) int {
	switch v := e.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func fieldFloat(e telemetry.Event, key string) float64 {
	switch v := e.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
