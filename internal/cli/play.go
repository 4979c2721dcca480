package cli

import (
	"github.com/spf13/cobra"

	"github.com/reelab/reel/internal/feed"
	"github.com/reelab/reel/internal/gesture"
	"github.com/reelab/reel/internal/session"
	"github.com/reelab/reel/internal/telemetry"
	"github.com/reelab/reel/internal/tui"
)

var playIndex int

var playCmd = &cobra.Command{
	Use:   "play <feed>",
	Short: "Play a moments feed",
	Long: `Open a playlist of moments in the terminal player.

The feed argument is a path to a playlist JSON file, or an http(s) URL
serving one. The playlist is ranked against your interest profile and
filtered by your seen history before playback starts.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playIndex, "index", "i", 0, "start at this position in the feed")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	playlist, err := feed.NewLoader().Load(ctx, args[0])
	if err != nil {
		return err
	}

	eng, err := buildEngine(telemetry.NewEmitter("session"))
	if err != nil {
		return err
	}
	defer func() { _ = eng.cache.Close() }()

	sess := session.New(eng.options)
	if err := sess.Open(ctx, playlist, playIndex); err != nil {
		return err
	}
	defer sess.Close(ctx)

	g := gesture.NewController(gestureConfig(), 1000)
	g.SetBounds(sess.AtFirst(), sess.AtLast())

	return tui.Run(tui.NewApp(sess, g))
}
