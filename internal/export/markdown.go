package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/fliey/internal"
)

// MarkdownExporter exports history in Markdown format, grouped by operation
type MarkdownExporter struct{}

// Export exports entries as a Markdown document
func (e *MarkdownExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# History\n\n")
	_, _ = fmt.Fprintf(w, "**Entries:** %d\n\n", len(entries))

	if len(entries) == 0 {
		_, _ = fmt.Fprintf(w, "_No history yet._\n")
		return nil
	}

	for _, op := range internal.Operations {
		var group []internal.HistoryEntry
		for _, entry := range entries {
			if entry.Operation == op {
				group = append(group, entry)
			}
		}
		if len(group) == 0 {
			continue
		}

		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## %s\n\n", op.Title())

		for _, entry := range group {
			star := ""
			if entry.Favorite {
				star = " ★"
			}
			_, _ = fmt.Fprintf(w, "### %s%s\n\n", escapeMarkdown(entry.SourceName), star)
			_, _ = fmt.Fprintf(w, "**ID:** `%s`  \n", entry.ID)
			_, _ = fmt.Fprintf(w, "**Created:** %s\n\n", entry.CreatedAt.Format("2006-01-02 15:04"))
			if entry.Preview != "" {
				_, _ = fmt.Fprintf(w, "%s\n\n", quote(escapeMarkdown(entry.Preview)))
			}
		}
	}

	return nil
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func quote(text string) string {
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
