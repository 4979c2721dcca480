package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Millis is a duration serialized as integer milliseconds in feed
// documents.
type Millis time.Duration

// Duration converts to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m)
}

// MarshalJSON encodes the duration as whole milliseconds.
func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

// UnmarshalJSON decodes whole milliseconds.
func (m *Millis) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	*m = Millis(time.Duration(ms) * time.Millisecond)
	return nil
}

// Kind discriminates the playable variants of a Moment.
type Kind string

const (
	KindVideo      Kind = "video"
	KindImage      Kind = "image"
	KindAd         Kind = "ad"
	KindHostedClip Kind = "hosted-clip"
)

// Sponsor describes the advertiser behind an ad moment.
type Sponsor struct {
	Name    string `json:"name"`
	CTAText string `json:"cta_text"`
	CTAURL  string `json:"cta_url"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Moment is one playable unit in a playlist. Immutable once loaded.
type Moment struct {
	ID               string        `json:"id"`
	Kind             Kind          `json:"kind"`
	Title            string        `json:"title"`
	MediaLocator     string        `json:"media_locator,omitempty"`
	HostedVideoID    string        `json:"hosted_video_id,omitempty"`
	PosterLocator    string        `json:"poster_locator,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	GlobalPopularity float64       `json:"global_popularity"`
	DurationHint     Millis        `json:"duration_hint_ms,omitempty"`
	Sponsor          *Sponsor      `json:"sponsor,omitempty"`
}

// IsAd reports whether the moment is a sponsored ad.
func (m Moment) IsAd() bool {
	return m.Kind == KindAd
}

// Validate checks the kind-specific field requirements.
func (m Moment) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("moment missing id")
	}
	switch m.Kind {
	case KindVideo, KindImage:
		if m.MediaLocator == "" {
			return fmt.Errorf("moment %s: %s requires a media locator", m.ID, m.Kind)
		}
	case KindAd:
		if m.MediaLocator == "" {
			return fmt.Errorf("moment %s: ad requires a media locator", m.ID)
		}
		if m.Sponsor == nil {
			return fmt.Errorf("moment %s: ad requires a sponsor", m.ID)
		}
	case KindHostedClip:
		if m.HostedVideoID == "" {
			return fmt.Errorf("moment %s: hosted clip requires a platform video id", m.ID)
		}
	default:
		return fmt.Errorf("moment %s: unknown kind %q", m.ID, m.Kind)
	}
	return nil
}
