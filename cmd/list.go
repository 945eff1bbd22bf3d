package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var (
	listOp        string
	listFavorites bool
	listLimit     int
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// historyCmd groups the history subcommands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage processed results",
	Long: `Browse and manage the history of processed results.

Entries older than the retention period are purged whenever history is
opened; favorites are kept regardless of age.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeHistory, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeHistory()

		entries := store.Entries()
		if listOp != "" {
			op, err := internal.ParseOperation(listOp)
			if err != nil {
				return &internal.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", listOp)}
			}
			entries = store.ByOperation(op)
		}
		if listFavorites {
			favorites := entries[:0:0]
			for _, e := range entries {
				if e.Favorite {
					favorites = append(favorites, e)
				}
			}
			entries = favorites
		}
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}

		displayHistory(cmd.OutOrStdout(), entries, time.Now())
		return nil
	},
}

func displayHistory(out io.Writer, entries []internal.HistoryEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No history entries"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %d history entr%s", len(entries), pluralY(len(entries)))))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Operation")+"\t"+titleStyle.Render("Source")+"\t"+titleStyle.Render("Created")+"\t"+titleStyle.Render("Preview"))

	for _, e := range entries {
		star := " "
		if e.Favorite {
			star = favoriteStyle.Render("★")
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\n",
			star,
			idStyle.Render(shortID(e.ID)),
			e.Operation,
			sourceStyle.Render(ellipsize(e.SourceName, 25)),
			dateStyle.Render(formatCreated(e.CreatedAt, now)),
			ellipsize(e.Preview, 50))
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: ")+"fliey history show "+shortID(entries[0].ID))
}

// formatCreated renders t relative to now the way a history list reads best
func formatCreated(t, now time.Time) string {
	t = t.In(now.Location())
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour && t.Day() == now.Day():
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	historyListCmd.Flags().StringVar(&listOp, "op", "", "Only show one operation (summarize, translate, rewrite)")
	historyListCmd.Flags().BoolVar(&listFavorites, "favorites", false, "Only show favorites")
	historyListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most this many entries")
	historyCmd.AddCommand(historyListCmd)
	rootCmd.AddCommand(historyCmd)
}
