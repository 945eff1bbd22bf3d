package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var (
	extractFormat      string
	extractConcurrency int
)

type extractedDocument struct {
	Path  string `json:"path"`
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Print the text extracted from documents",
	Long: fmt.Sprintf(`Extract plain text from one or more documents without running an engine.

Supported extensions: %s. Files are read concurrently; output keeps the
argument order. Any failure aborts the whole batch.`, strings.Join(internal.SupportedFormats(), ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractFormat != "text" && extractFormat != "json" {
			return &internal.ValidationError{Field: "format", Message: fmt.Sprintf("must be text or json, got %q", extractFormat)}
		}

		extractor := internal.NewExtractor()
		if extractConcurrency > 0 {
			extractor.Concurrency = extractConcurrency
		}

		var texts []string
		err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Extracting %d document(s)", len(args)), func() error {
			var err error
			texts, err = extractor.ExtractAll(cmd.Context(), args)
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if extractFormat == "json" {
			docs := make([]extractedDocument, len(args))
			for i, path := range args {
				docs[i] = extractedDocument{Path: path, Text: texts[i], Chars: len([]rune(texts[i]))}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}

		for i, path := range args {
			if len(args) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "==> %s <==\n", path)
			}
			fmt.Fprintln(out, texts[i])
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFormat, "format", "text", "Output format: text or json")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "Maximum documents read at once (default 4)")
	rootCmd.AddCommand(extractCmd)
}
