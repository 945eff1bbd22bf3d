package cmd

import (
	"fmt"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var shareFlags runFlags

// shareCmd represents the share command
var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Process shared content and hand the result to the main app",
	Long: `Run the share-extension flow: process a document or text and leave the
result in the bridge. The next 'fliey process' or 'fliey sync' imports it
into history. A newer shared result replaces one that was never imported.`,
	Example: `  fliey share --file article.docx --op summarize
  pbpaste | fliey share --op rewrite --tone casual`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := validateOutputFormat(shareFlags.format); err != nil {
			return err
		}
		opts, err := shareFlags.options()
		if err != nil {
			return err
		}
		path, text, err := shareFlags.input(cmd.InOrStdin())
		if err != nil {
			return err
		}

		gateway, err := openGateway()
		if err != nil {
			return err
		}
		bridge, closeBridge, err := openBridge()
		if err != nil {
			return err
		}
		defer closeBridge()

		ext := internal.NewShareExtension(nil, gateway, bridge)
		resp, err := runWithProgress(ctx, opts.Operation, func() (*internal.Response, error) {
			if path != "" {
				return ext.ProcessFile(ctx, path, opts)
			}
			return ext.ProcessText(ctx, text, opts)
		})
		if resp == nil {
			return err
		}
		if err != nil {
			return fmt.Errorf("result could not be shared: %w", err)
		}

		if err := renderResponse(cmd.OutOrStdout(), resp, shareFlags.format, shareFlags.width); err != nil {
			return err
		}
		internal.PrintSuccess("Result shared with the main app")
		return nil
	},
}

func init() {
	shareFlags.register(shareCmd)
	rootCmd.AddCommand(shareCmd)
}
