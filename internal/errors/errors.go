package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrPlaylistEmpty    = errors.New("playlist is empty")
	ErrSessionClosed    = errors.New("session is closed")
	ErrNotAd            = errors.New("current moment is not an ad")
	ErrAdDwellNotMet    = errors.New("ad minimum dwell not reached")
	ErrAutoplayBlocked  = errors.New("autoplay blocked")
	ErrMediaUnavailable = errors.New("media unavailable")
	ErrCacheUnavailable = errors.New("media cache unavailable")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ReelError wraps an error with a user-friendly suggestion.
type ReelError struct {
	Err        error
	Suggestion string
}

func (e *ReelError) Error() string {
	return e.Err.Error()
}

func (e *ReelError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &ReelError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var reelErr *ReelError
	if errors.As(err, &reelErr) && reelErr.Suggestion != "" {
		return reelErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrPlaylistEmpty) || strings.Contains(errStr, "no moments") {
		return "Check the playlist file: it must contain at least one moment"
	}

	if errors.Is(err, ErrAutoplayBlocked) {
		return "Press space to start playback manually"
	}

	if errors.Is(err, ErrMediaUnavailable) || strings.Contains(errStr, "media unavailable") {
		return "The media could not be loaded. Swipe to the next moment"
	}

	if errors.Is(err, ErrAdDwellNotMet) {
		return "Ads can be skipped after a short minimum dwell"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'reel init' to create a configuration file"
	}

	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") {
		return "Check your internet connection and try again"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
