package gesture

// SpringConfig tunes the settle animation dynamics.
type SpringConfig struct {
	Tension  float64 // 1/s^2
	Friction float64 // 1/s
}

// Settle epsilons: once both displacement and velocity drop below
// these, the spring snaps exactly to its target.
const (
	settleEpsPos = 0.5  // px
	settleEpsVel = 10.0 // px/s
)

// spring integrates damped spring motion toward a target position.
type spring struct {
	cfg    SpringConfig
	pos    float64
	vel    float64 // px/s
	target float64
}

func newSpring(cfg SpringConfig, pos, vel, target float64) *spring {
	return &spring{cfg: cfg, pos: pos, vel: vel, target: target}
}

// step advances the simulation by dt seconds, returning true once the
// spring has come to rest at its target.
func (s *spring) step(dt float64) bool {
	accel := s.cfg.Tension*(s.target-s.pos) - s.cfg.Friction*s.vel
	s.vel += accel * dt
	s.pos += s.vel * dt

	if abs(s.target-s.pos) < settleEpsPos && abs(s.vel) < settleEpsVel {
		s.pos = s.target
		s.vel = 0
		return true
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
