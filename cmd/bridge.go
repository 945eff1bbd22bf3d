package cmd

import (
	"fmt"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var peekFormat string

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Inspect the shared-result bridge",
}

var bridgePeekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Show the stored shared result without consuming it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutputFormat(peekFormat); err != nil {
			return err
		}
		bridge, closeBridge, err := openBridge()
		if err != nil {
			return err
		}
		defer closeBridge()

		out := cmd.OutOrStdout()
		pending := bridge.HasResult(cmd.Context())
		resp, ok, err := bridge.Peek(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Bridge is empty")
			return nil
		}
		internal.PrintInfo(fmt.Sprintf("Pending: %t", pending))
		return renderResponse(out, resp, peekFormat, 0)
	},
}

var bridgeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the stored shared result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge, closeBridge, err := openBridge()
		if err != nil {
			return err
		}
		defer closeBridge()

		if err := bridge.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Bridge cleared")
		return nil
	},
}

func init() {
	bridgePeekCmd.Flags().StringVar(&peekFormat, "format", outputJSON, "Output format: text, md, json or yaml")
	bridgeCmd.AddCommand(bridgePeekCmd, bridgeClearCmd)
	rootCmd.AddCommand(bridgeCmd)
}
