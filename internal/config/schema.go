package config

// Config is the root configuration structure.
type Config struct {
	Player  PlayerConfig  `toml:"player"`
	Gesture GestureConfig `toml:"gesture"`
	Cache   CacheConfig   `toml:"cache"`
	Rank    RankConfig    `toml:"rank"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Log     LogConfig     `toml:"log"`
}

// PlayerConfig holds playback session settings.
type PlayerConfig struct {
	StartMuted      bool `toml:"start_muted"`
	AutoplayRetries int  `toml:"autoplay_retries"`
	ImageDwellMS    int  `toml:"image_dwell_ms"`
	AdMinDwellMS    int  `toml:"ad_min_dwell_ms"`
	AdMaxDwellMS    int  `toml:"ad_max_dwell_ms"`
}

// GestureConfig holds swipe detection and settle physics tuning.
type GestureConfig struct {
	VelocityThreshold float64 `toml:"velocity_threshold"` // px/ms
	DistanceFraction  float64 `toml:"distance_fraction"`  // of viewport height
	RubberBand        float64 `toml:"rubber_band"`        // boundary damping factor
	WheelDebounceMS   int     `toml:"wheel_debounce_ms"`
	WheelNoiseFloor   float64 `toml:"wheel_noise_floor"`
	SpringTension     float64 `toml:"spring_tension"`
	SpringFriction    float64 `toml:"spring_friction"`
}

// CacheConfig holds media cache settings.
type CacheConfig struct {
	Strategy string `toml:"strategy"` // "badger" or "memory"
	Dir      string `toml:"dir"`
}

// RankConfig holds recommendation ranker tuning.
type RankConfig struct {
	LearningRate   float64 `toml:"learning_rate"`
	NoiseAmplitude float64 `toml:"noise_amplitude"`
	HistoryPenalty int     `toml:"history_penalty_window"`
}

// LedgerConfig holds session ledger settings.
type LedgerConfig struct {
	SeenCap int `toml:"seen_cap"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
