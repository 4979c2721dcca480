package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelab/reel/internal/feed"
	"github.com/reelab/reel/internal/rank"
	"github.com/reelab/reel/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank <feed>",
	Short: "Show how a feed would be ordered for you",
	Long: `Rank a feed against your interest profile without playing it.

Prints the effective order with each moment's score, so ranking
changes are inspectable after profile updates.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	playlist, err := feed.NewLoader().Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	profileStore, err := store.NewFileStore("", store.ProfileFileName)
	if err != nil {
		return err
	}
	profile := loadProfile(profileStore)

	// Rank without exploration noise so the output is reproducible.
	ranker := rank.New(
		rank.WithLearningRate(cfg.Rank.LearningRate),
		rank.WithHistoryWindow(cfg.Rank.HistoryPenalty),
		rank.WithNoise(func() float64 { return 0 }),
	)
	ordered := ranker.Rank(profile, playlist.Moments)

	if JSONOutput() {
		type row struct {
			ID    string   `json:"id"`
			Kind  string   `json:"kind"`
			Score float64  `json:"score"`
			Tags  []string `json:"tags,omitempty"`
		}
		rows := make([]row, 0, len(ordered))
		for _, m := range ordered {
			rows = append(rows, row{
				ID:    m.ID,
				Kind:  string(m.Kind),
				Score: ranker.Score(profile, m),
				Tags:  m.Tags,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	table := NewTable("#", "ID", "KIND", "SCORE", "TAGS")
	for i, m := range ordered {
		table.Row(
			fmt.Sprintf("%d", i+1),
			TruncateString(m.ID, 24),
			string(m.Kind),
			fmt.Sprintf("%.3f", ranker.Score(profile, m)),
			TruncateString(strings.Join(m.Tags, ","), 32),
		)
	}
	table.Flush()
	return nil
}
