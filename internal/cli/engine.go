package cli

import (
	"fmt"
	"time"

	"github.com/reelab/reel/internal/gesture"
	"github.com/reelab/reel/internal/ledger"
	"github.com/reelab/reel/internal/media"
	"github.com/reelab/reel/internal/mediacache"
	"github.com/reelab/reel/internal/rank"
	"github.com/reelab/reel/internal/session"
	"github.com/reelab/reel/internal/store"
	"github.com/reelab/reel/internal/telemetry"
)

// engine bundles the session collaborators built from config.
type engine struct {
	options session.Options
	cache   mediacache.Cache
}

// buildEngine assembles ranker, profile, ledgers, cache and the media
// handle factory from the loaded config.
func buildEngine(emitter *telemetry.Emitter) (*engine, error) {
	profileStore, err := store.NewFileStore("", store.ProfileFileName)
	if err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}
	profile := loadProfile(profileStore)

	seenStore, err := store.NewFileStore("", store.SeenFileName)
	if err != nil {
		return nil, fmt.Errorf("seen store: %w", err)
	}
	ledgers := ledger.New(seenStore, ledger.WithSeenCap(cfg.Ledger.SeenCap))

	cache, err := mediacache.Open(mediacache.Config{
		Strategy: cfg.Cache.Strategy,
		Dir:      cfg.Cache.Dir,
	})
	if err != nil {
		return nil, fmt.Errorf("media cache: %w", err)
	}

	ranker := rank.New(
		rank.WithLearningRate(cfg.Rank.LearningRate),
		rank.WithNoiseAmplitude(cfg.Rank.NoiseAmplitude),
		rank.WithHistoryWindow(cfg.Rank.HistoryPenalty),
	)

	return &engine{
		cache: cache,
		options: session.Options{
			Ranker:          ranker,
			Profile:         profile,
			ProfileStore:    profileStore,
			Ledgers:         ledgers,
			Cache:           cache,
			Handles:         media.Factory(media.WithImageDwell(millis(cfg.Player.ImageDwellMS))),
			Emitter:         emitter,
			AdMinDwell:      millis(cfg.Player.AdMinDwellMS),
			AdMaxDwell:      millis(cfg.Player.AdMaxDwellMS),
			StartUnmuted:    !cfg.Player.StartMuted,
			AutoplayRetries: cfg.Player.AutoplayRetries,
		},
	}, nil
}

// loadProfile reads the persisted interest profile, starting empty on
// any failure.
func loadProfile(s *store.FileStore) *rank.Profile {
	profile := rank.NewProfile()
	if _, err := s.Load(profile); err != nil {
		log := telemetry.WithComponent("cli")
		log.Warn().Err(err).Msg("profile load failed, starting fresh")
		return rank.NewProfile()
	}
	if profile.Interests == nil {
		profile.Interests = make(map[string]float64)
	}
	return profile
}

// gestureConfig maps the config file's gesture section onto the
// controller's tuning knobs.
func gestureConfig() gesture.Config {
	g := gesture.DefaultConfig()
	if cfg.Gesture.VelocityThreshold > 0 {
		g.VelocityThreshold = cfg.Gesture.VelocityThreshold
	}
	if cfg.Gesture.DistanceFraction > 0 {
		g.DistanceFraction = cfg.Gesture.DistanceFraction
	}
	if cfg.Gesture.RubberBand > 0 {
		g.RubberBand = cfg.Gesture.RubberBand
	}
	if cfg.Gesture.WheelDebounceMS > 0 {
		g.WheelDebounce = millis(cfg.Gesture.WheelDebounceMS)
	}
	if cfg.Gesture.WheelNoiseFloor > 0 {
		g.WheelNoiseFloor = cfg.Gesture.WheelNoiseFloor
	}
	if cfg.Gesture.SpringTension > 0 {
		g.Spring.Tension = cfg.Gesture.SpringTension
	}
	if cfg.Gesture.SpringFriction > 0 {
		g.Spring.Friction = cfg.Gesture.SpringFriction
	}
	return g
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
