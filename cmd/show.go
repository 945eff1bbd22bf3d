package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showFormat string

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	previewStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginTop(1)
)

// historyShowCmd represents the history show command
var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one history entry",
	Long:  `Show a history entry. A unique prefix of the id is enough.`,
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
		return displayEntry(cmd.OutOrStdout(), entry, showFormat)
	},
}

func displayEntry(out io.Writer, entry internal.HistoryEntry, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	case outputYAML:
		enc := yaml.NewEncoder(out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(entry)
	case outputText, "":
	default:
		return &internal.ValidationError{Field: "format", Message: fmt.Sprintf("must be text, json or yaml, got %q", format)}
	}

	title := entry.Operation.Title() + " · " + entry.SourceName
	if entry.Favorite {
		title += " " + favoriteStyle.Render("★")
	}
	fmt.Fprintln(out, headerStyle.Render(title))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("ID:"), entry.ID)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Operation:"), entry.Operation)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Source:"), entry.SourceName)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Created:"), entry.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "%s %t\n", labelStyle.Render("Favorite:"), entry.Favorite)
	if entry.Preview != "" {
		fmt.Fprintln(out, previewStyle.Render(wrap(entry.Preview, 76)))
	}
	return nil
}

func init() {
	historyShowCmd.Flags().StringVar(&showFormat, "format", outputText, "Output format: text, json or yaml")
	historyCmd.AddCommand(historyShowCmd)
}
