package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/reelab/reel/internal/store"
)

var profileResetSeen bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect the learned interest profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show interest weights and watch history",
	RunE:  runProfileShow,
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the learned profile",
	Long:  `Delete the interest profile. With --seen, the persisted seen history is cleared too.`,
	RunE:  runProfileReset,
}

func init() {
	profileResetCmd.Flags().BoolVar(&profileResetSeen, "seen", false, "also clear the seen history")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileResetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	profileStore, err := store.NewFileStore("", store.ProfileFileName)
	if err != nil {
		return err
	}
	profile := loadProfile(profileStore)

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(profile)
	}

	if len(profile.Interests) == 0 {
		NormalF("No interests learned yet. Play some feeds first.")
	} else {
		tags := make([]string, 0, len(profile.Interests))
		for tag := range profile.Interests {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool {
			return profile.Interests[tags[i]] > profile.Interests[tags[j]]
		})

		table := NewTable("TAG", "WEIGHT")
		for _, tag := range tags {
			table.Row(tag, fmt.Sprintf("%.3f", profile.Interests[tag]))
		}
		table.Flush()
	}

	if Verbose() && len(profile.History) > 0 {
		NormalF("\nRecent history (%d):", len(profile.History))
		for _, id := range profile.History {
			NormalF("  %s", id)
		}
	}

	return nil
}

func runProfileReset(cmd *cobra.Command, args []string) error {
	profileStore, err := store.NewFileStore("", store.ProfileFileName)
	if err != nil {
		return err
	}
	if err := profileStore.Delete(); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if profileResetSeen {
		seenStore, err := store.NewFileStore("", store.SeenFileName)
		if err != nil {
			return err
		}
		if err := seenStore.Delete(); err != nil {
			return fmt.Errorf("failed to delete seen history: %w", err)
		}
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status": "reset",
			"seen":   profileResetSeen,
		})
	}
	NormalF("Profile reset.")
	return nil
}
