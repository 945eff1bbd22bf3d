package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/fliey/internal"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
)

// Output formats for a single response
const (
	outputText     = "text"
	outputMarkdown = "md"
	outputJSON     = "json"
	outputYAML     = "yaml"
)

var outputFormats = []string{outputText, outputMarkdown, outputJSON, outputYAML}

func validateOutputFormat(format string) error {
	for _, f := range outputFormats {
		if f == format {
			return nil
		}
	}
	return &internal.ValidationError{
		Field:   "format",
		Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(outputFormats, ", "), format),
	}
}

// renderResponse writes resp to w in format. Text and Markdown are wrapped
// at width columns; width <= 0 disables wrapping.
func renderResponse(w io.Writer, resp *internal.Response, format string, width int) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(resp)
	case outputMarkdown:
		_, err := fmt.Fprintln(w, wrap(resp.Formatted, width))
		return err
	default:
		if internal.IsTerminal(w) {
			fmt.Fprintln(w, headerStyle.Render(resp.Operation.Title()))
		}
		if _, err := fmt.Fprintln(w, wrap(resp.Text, width)); err != nil {
			return err
		}
		if internal.IsTerminal(w) {
			fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%.2fs", resp.ElapsedSeconds)))
		}
		return nil
	}
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// shortID trims a UUID to its first block for table output
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ellipsize cuts s to n runes, marking the cut
func ellipsize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
