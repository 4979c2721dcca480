// Package viewport decides which playlist indices hold a live media
// handle. The live window is bounded to the current moment plus one
// neighbor each side so concurrent hardware decoder usage stays under
// the host platform's single-digit limit.
package viewport

// Radius is the half-width of the live window: |i - current| < Radius.
const Radius = 2

// Live reports whether index i should have a mounted handle when
// current is active in a playlist of length n.
func Live(i, current, n int) bool {
	if i < 0 || i >= n {
		return false
	}
	d := i - current
	if d < 0 {
		d = -d
	}
	return d < Radius
}

// Window returns the inclusive live index range [lo, hi] around
// current, clamped to playlist bounds. An empty playlist yields
// lo > hi.
func Window(current, n int) (lo, hi int) {
	lo = current - (Radius - 1)
	hi = current + (Radius - 1)
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// Plan computes the slot changes for a move from oldCurrent to
// newCurrent. Teardown always precedes creation, so the returned
// teardown list must be processed before the create list to avoid
// transient decoder over-allocation.
func Plan(oldCurrent, newCurrent, n int) (teardown, create []int) {
	oldLo, oldHi := Window(oldCurrent, n)
	newLo, newHi := Window(newCurrent, n)

	for i := oldLo; i <= oldHi; i++ {
		if i < newLo || i > newHi {
			teardown = append(teardown, i)
		}
	}
	for i := newLo; i <= newHi; i++ {
		if i < oldLo || i > oldHi {
			create = append(create, i)
		}
	}
	return teardown, create
}

// ActiveThreshold is the viewability fraction at which a slot counts
// as active in scroll-based layouts.
const ActiveThreshold = 0.55

// MostVisible returns the index whose visible fraction is highest and
// at least the activation threshold. Exactly one slot can be active;
// ties keep the lower index. ok is false when no slot qualifies.
func MostVisible(fractions []float64) (index int, ok bool) {
	best := -1
	bestFrac := 0.0
	for i, f := range fractions {
		if f >= ActiveThreshold && f > bestFrac {
			best = i
			bestFrac = f
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
