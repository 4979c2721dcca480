package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelab/reel/internal/core"
	"github.com/reelab/reel/internal/feed"
	"github.com/reelab/reel/internal/mediacache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the media cache",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm <feed>",
	Short: "Prefetch a feed's media into the cache",
	Long: `Resolve every cacheable moment in the feed so playback starts from
local media. Hosted clips stay on their platform and are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheWarm,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached media",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (mediacache.Cache, error) {
	return mediacache.Open(mediacache.Config{
		Strategy: cfg.Cache.Strategy,
		Dir:      cfg.Cache.Dir,
	})
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	playlist, err := feed.NewLoader().Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	warmed := 0
	for _, m := range playlist.Moments {
		if m.Kind == core.KindHostedClip || m.MediaLocator == "" {
			continue
		}
		// Resolve synchronously so the command only returns once the
		// media is local (or known unreachable).
		src := cache.Resolve(cmd.Context(), m.MediaLocator)
		if src.Local {
			warmed++
		}
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]int{
			"total":  playlist.Len(),
			"warmed": warmed,
		})
	}
	NormalF("Warmed %d of %d moments.", warmed, playlist.Len())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if err := cache.InvalidateAll(); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "cleared"})
	}
	NormalF("Media cache cleared.")
	return nil
}
