package rank

// Weight bounds and defaults for the interest vector.
const (
	DefaultWeight = 0.5
	MinWeight     = 0.01
	MaxWeight     = 5.0

	// HistoryCap bounds the watch history length.
	HistoryCap = 50
)

// Profile is the persisted per-user interest state. Weights are per-tag
// affinities in [MinWeight, MaxWeight]; history is most-recent-first.
type Profile struct {
	Interests map[string]float64 `json:"interest_vector"`
	History   []string           `json:"watch_history"`
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{Interests: make(map[string]float64)}
}

// Weight returns the affinity for a tag, defaulting unknown tags to the
// neutral exploration weight.
func (p *Profile) Weight(tag string) float64 {
	if w, ok := p.Interests[tag]; ok {
		return w
	}
	return DefaultWeight
}

// InRecentHistory reports whether id appears in the most recent n
// history entries.
func (p *Profile) InRecentHistory(id string, n int) bool {
	if n > len(p.History) {
		n = len(p.History)
	}
	for _, h := range p.History[:n] {
		if h == id {
			return true
		}
	}
	return false
}

// RecordWatch pushes id to the front of the watch history,
// de-duplicating and capping the list.
func (p *Profile) RecordWatch(id string) {
	out := make([]string, 0, len(p.History)+1)
	out = append(out, id)
	for _, h := range p.History {
		if h != id {
			out = append(out, h)
		}
	}
	if len(out) > HistoryCap {
		out = out[:HistoryCap]
	}
	p.History = out
}

func clampWeight(w float64) float64 {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}
