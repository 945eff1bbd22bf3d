package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/fliey/internal"
	"github.com/iksnae/fliey/internal/export"
	"github.com/spf13/cobra"
)

var (
	format          string
	outputDir       string
	exportOp        string
	exportFavorites bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to a file",
	Long: `Export history entries to various formats (jsonl, md, yaml, json).

The file is written to --out as history_<timestamp>.<ext>; use --out - to
write to stdout instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, closeHistory, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeHistory()

		entries := store.Entries()
		if exportOp != "" {
			op, err := internal.ParseOperation(exportOp)
			if err != nil {
				return &internal.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", exportOp)}
			}
			entries = store.ByOperation(op)
		}
		if exportFavorites {
			kept := entries[:0:0]
			for _, e := range entries {
				if e.Favorite {
					kept = append(kept, e)
				}
			}
			entries = kept
		}

		if outputDir == "-" {
			return exporter.Export(entries, cmd.OutOrStdout())
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.StorageError{Path: outputDir, Op: "mkdir", Err: err}
		}
		filename := fmt.Sprintf("history_%s.%s", time.Now().Format("20060102-150405"), exporter.Extension())
		path := filepath.Join(outputDir, filename)

		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d entr%s to %s", len(entries), pluralY(len(entries)), path), func() error {
			file, err := os.Create(path)
			if err != nil {
				return &internal.StorageError{Path: path, Op: "create", Err: err}
			}
			if err := exporter.Export(entries, file); err != nil {
				_ = file.Close()
				return fmt.Errorf("failed to export history: %w", err)
			}
			return file.Close()
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d entr%s exported", len(entries), pluralY(len(entries))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory, or - for stdout")
	exportCmd.Flags().StringVar(&exportOp, "op", "", "Only export one operation")
	exportCmd.Flags().BoolVar(&exportFavorites, "favorites", false, "Only export favorites")
}
