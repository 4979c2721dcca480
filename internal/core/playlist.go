package core

import "fmt"

// Context carries hints about where a playlist originated.
type Context struct {
	Page  string   `json:"page,omitempty"`
	Hints []string `json:"hints,omitempty"`
}

// Playlist is an ordered sequence of moments. Immutable once loaded
// into a session; ids are unique within the sequence.
type Playlist struct {
	Moments []Moment `json:"moments"`
	Context Context  `json:"context,omitempty"`
}

// Len returns the number of moments in the playlist.
func (p Playlist) Len() int {
	return len(p.Moments)
}

// IsEmpty returns true if the playlist has no moments.
func (p Playlist) IsEmpty() bool {
	return len(p.Moments) == 0
}

// At returns the moment at index i, or nil if out of range.
func (p Playlist) At(i int) *Moment {
	if i < 0 || i >= len(p.Moments) {
		return nil
	}
	return &p.Moments[i]
}

// Validate checks every moment and rejects duplicate ids.
func (p Playlist) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("playlist has no moments")
	}
	seen := make(map[string]struct{}, len(p.Moments))
	for i, m := range p.Moments {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("moment %d: %w", i, err)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate moment id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
