package cmd

import (
	"fmt"
	"time"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var purgeDays int

var historyFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite flag of an entry",
	Long:  `Toggle the favorite flag of a history entry. Favorites are never purged.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeHistory()

		entry, err := store.Get(args[0])
		if err != nil {
			return err
		}
		entry, err = store.ToggleFavorite(cmd.Context(), entry.ID)
		if err != nil {
			return err
		}
		state := "removed from favorites"
		if entry.Favorite {
			state = "added to favorites"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shortID(entry.ID), state)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a history entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeHistory()

		entry, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), entry.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s of %s)\n", shortID(entry.ID), entry.Operation, entry.SourceName)
		return nil
	},
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove entries older than a number of days",
	Long: `Remove non-favorite entries created more than --days calendar days ago.
--days 0 keeps only today's entries. Defaults to the configured retention.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := cfg.History.RetentionDays
		if cmd.Flags().Changed("days") {
			days = purgeDays
		}
		if days < 0 {
			return &internal.ValidationError{Field: "days", Message: "must not be negative"}
		}

		// skip the load-time purge so the count below covers everything removed
		store, closeHistory, err := openHistoryWithRetention(cmd.Context(), -1)
		if err != nil {
			return err
		}
		defer closeHistory()

		removed, err := store.PurgeExpired(cmd.Context(), time.Now(), days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d entr%s older than %d day(s); %d remaining\n", removed, pluralY(removed), days, store.Len())
		return nil
	},
}

func init() {
	historyPurgeCmd.Flags().IntVar(&purgeDays, "days", internal.DefaultRetentionDays, "Retention in days")
	historyCmd.AddCommand(historyFavoriteCmd, historyDeleteCmd, historyPurgeCmd)
}
