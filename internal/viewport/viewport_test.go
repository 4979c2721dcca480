package viewport

import "testing"

func TestLiveWindowBounds(t *testing.T) {
	cases := []struct {
		i, current, n int
		want          bool
	}{
		{0, 0, 5, true},
		{1, 0, 5, true},
		{2, 0, 5, false},
		{1, 2, 5, true},
		{2, 2, 5, true},
		{3, 2, 5, true},
		{4, 2, 5, false},
		{-1, 0, 5, false},
		{5, 4, 5, false},
	}
	for _, c := range cases {
		if got := Live(c.i, c.current, c.n); got != c.want {
			t.Errorf("Live(%d, %d, %d) = %v, want %v", c.i, c.current, c.n, got, c.want)
		}
	}
}

func TestWindowClampsAtEdges(t *testing.T) {
	if lo, hi := Window(0, 5); lo != 0 || hi != 1 {
		t.Errorf("Window(0, 5) = [%d, %d], want [0, 1]", lo, hi)
	}
	if lo, hi := Window(4, 5); lo != 3 || hi != 4 {
		t.Errorf("Window(4, 5) = [%d, %d], want [3, 4]", lo, hi)
	}
	if lo, hi := Window(2, 5); lo != 1 || hi != 3 {
		t.Errorf("Window(2, 5) = [%d, %d], want [1, 3]", lo, hi)
	}
	if lo, hi := Window(0, 1); lo != 0 || hi != 0 {
		t.Errorf("Window(0, 1) = [%d, %d], want [0, 0]", lo, hi)
	}
}

func TestWindowNeverExceedsThreeSlots(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for current := 0; current < n; current++ {
			lo, hi := Window(current, n)
			if size := hi - lo + 1; size > 3 {
				t.Errorf("Window(%d, %d) spans %d slots, want <= 3", current, n, size)
			}
		}
	}
}

func TestPlanAdvance(t *testing.T) {
	teardown, create := Plan(2, 3, 10)

	if len(teardown) != 1 || teardown[0] != 1 {
		t.Errorf("teardown = %v, want [1]", teardown)
	}
	if len(create) != 1 || create[0] != 4 {
		t.Errorf("create = %v, want [4]", create)
	}
}

func TestPlanNoMove(t *testing.T) {
	teardown, create := Plan(2, 2, 10)
	if len(teardown) != 0 || len(create) != 0 {
		t.Errorf("Plan(2, 2) = %v, %v, want empty", teardown, create)
	}
}

func TestPlanJumpReplacesWholeWindow(t *testing.T) {
	teardown, create := Plan(0, 8, 10)

	if len(teardown) != 2 {
		t.Errorf("teardown = %v, want both old slots", teardown)
	}
	if len(create) != 3 {
		t.Errorf("create = %v, want all three new slots", create)
	}
}

func TestMostVisible(t *testing.T) {
	if idx, ok := MostVisible([]float64{0.1, 0.7, 0.2}); !ok || idx != 1 {
		t.Errorf("MostVisible = %d, %v, want 1, true", idx, ok)
	}
	if _, ok := MostVisible([]float64{0.1, 0.3, 0.2}); ok {
		t.Error("MostVisible reported an active slot below threshold")
	}
	// Ties keep the lower index so only one slot activates.
	if idx, ok := MostVisible([]float64{0.6, 0.6}); !ok || idx != 0 {
		t.Errorf("MostVisible tie = %d, %v, want 0, true", idx, ok)
	}
}
