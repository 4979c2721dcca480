package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			StartMuted:      true,
			AutoplayRetries: 1,
			ImageDwellMS:    5000,
			AdMinDwellMS:    2000,
			AdMaxDwellMS:    15000,
		},
		Gesture: GestureConfig{
			VelocityThreshold: 0.3,
			DistanceFraction:  0.15,
			RubberBand:        0.35,
			WheelDebounceMS:   300,
			WheelNoiseFloor:   2.0,
			SpringTension:     180,
			SpringFriction:    26,
		},
		Cache: CacheConfig{
			Strategy: "badger",
		},
		Rank: RankConfig{
			LearningRate:   0.15,
			NoiseAmplitude: 0.05,
			HistoryPenalty: 20,
		},
		Ledger: LedgerConfig{
			SeenCap: 5000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Player.AutoplayRetries == 0 {
		c.Player.AutoplayRetries = d.Player.AutoplayRetries
	}
	if c.Player.ImageDwellMS == 0 {
		c.Player.ImageDwellMS = d.Player.ImageDwellMS
	}
	if c.Player.AdMinDwellMS == 0 {
		c.Player.AdMinDwellMS = d.Player.AdMinDwellMS
	}
	if c.Player.AdMaxDwellMS == 0 {
		c.Player.AdMaxDwellMS = d.Player.AdMaxDwellMS
	}

	if c.Gesture.VelocityThreshold == 0 {
		c.Gesture.VelocityThreshold = d.Gesture.VelocityThreshold
	}
	if c.Gesture.DistanceFraction == 0 {
		c.Gesture.DistanceFraction = d.Gesture.DistanceFraction
	}
	if c.Gesture.RubberBand == 0 {
		c.Gesture.RubberBand = d.Gesture.RubberBand
	}
	if c.Gesture.WheelDebounceMS == 0 {
		c.Gesture.WheelDebounceMS = d.Gesture.WheelDebounceMS
	}
	if c.Gesture.WheelNoiseFloor == 0 {
		c.Gesture.WheelNoiseFloor = d.Gesture.WheelNoiseFloor
	}
	if c.Gesture.SpringTension == 0 {
		c.Gesture.SpringTension = d.Gesture.SpringTension
	}
	if c.Gesture.SpringFriction == 0 {
		c.Gesture.SpringFriction = d.Gesture.SpringFriction
	}

	if c.Cache.Strategy == "" {
		c.Cache.Strategy = d.Cache.Strategy
	}

	if c.Rank.LearningRate == 0 {
		c.Rank.LearningRate = d.Rank.LearningRate
	}
	if c.Rank.NoiseAmplitude == 0 {
		c.Rank.NoiseAmplitude = d.Rank.NoiseAmplitude
	}
	if c.Rank.HistoryPenalty == 0 {
		c.Rank.HistoryPenalty = d.Rank.HistoryPenalty
	}

	if c.Ledger.SeenCap == 0 {
		c.Ledger.SeenCap = d.Ledger.SeenCap
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
