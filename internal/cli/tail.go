package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelab/reel/internal/feed"
	"github.com/reelab/reel/internal/session"
	"github.com/reelab/reel/internal/tail"
	"github.com/reelab/reel/internal/telemetry"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailIndex     int
)

var tailCmd = &cobra.Command{
	Use:   "tail <feed>",
	Short: "Autoplay a feed headlessly and follow its events",
	Long: `Play a feed without the interactive surface and print playback
events as they happen.

Events tracked:
  - Moment starts and ends
  - Watch quartiles (25/50/75/100%)
  - Ad impressions and skips
  - Media errors
  - Session close`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().IntVarP(&tailIndex, "index", "i", 0, "start at this position in the feed")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	playlist, err := feed.NewLoader().Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	emitter := telemetry.NewEmitter("session")
	events := emitter.Tap()

	eng, err := buildEngine(emitter)
	if err != nil {
		return err
	}
	defer func() { _ = eng.cache.Close() }()

	closed := make(chan struct{})
	eng.options.OnClose = func() { close(closed) }

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)
	follower := tail.NewFollower(events, formatter, os.Stdout)

	// Handle Ctrl+C gracefully
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- follower.Start(ctx)
	}()

	sess := session.New(eng.options)
	if err := sess.Open(ctx, playlist, tailIndex); err != nil {
		return err
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sess.Close(context.Background())
			return nil

		case <-closed:
			// Give the follower a beat to drain the close event.
			time.Sleep(50 * time.Millisecond)
			follower.Stop()
			<-errCh
			return nil

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err

		case <-ticker.C:
			sess.PollProgress(ctx)
		}
	}
}
