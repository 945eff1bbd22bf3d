package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var healthcheckDetails bool

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that engines, the bridge and history are usable",
	Long: `Check the health of fliey by verifying:
  • Configuration and data paths
  • Engine availability (and whether the simulated fallback is in use)
  • Bridge store access
  • History store access

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		failures := 0

		fmt.Fprintln(out, sectionStyle.Render("🔍 fliey Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			fmt.Fprintf(out, "   Engine: %s (fallback: %t)\n", cfg.Engine.Provider, cfg.Engine.Fallback)
			fmt.Fprintf(out, "   Bridge: %s (namespace %s)\n", cfg.Bridge.Backend, cfg.Bridge.Namespace)
			fmt.Fprintf(out, "   History: %s at %s\n", cfg.History.Backend, cfg.History.Path)
		}
		fmt.Fprintln(out)

		// Step 2: Engine
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking engine availability..."))
		if !checkEngine(ctx, out) {
			failures++
		}
		fmt.Fprintln(out)

		// Step 3: Bridge
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking bridge store..."))
		if !checkBridge(ctx, out) {
			failures++
		}
		fmt.Fprintln(out)

		// Step 4: History
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking history store..."))
		if !checkHistory(ctx, out) {
			failures++
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		if failures > 0 {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d problem(s))", failures)))
			return fmt.Errorf("health check failed: %d problem(s)", failures)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func checkEngine(ctx context.Context, out io.Writer) bool {
	gateway, err := openGateway()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Engine configuration invalid:"), err)
		return false
	}
	engine, err := gateway.ActiveEngine(ctx)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ No engine available:"), err)
		return false
	}
	if engine.Name() == "simulated" && cfg.Engine.Provider != "simulated" {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s is not reachable; using the simulated engine", cfg.Engine.Provider)))
		return true
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Engine available: %s", engine.Name())))
	return true
}

func checkBridge(ctx context.Context, out io.Writer) bool {
	bridge, closeBridge, err := openBridge()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to open bridge:"), err)
		return false
	}
	defer closeBridge()

	if _, _, err := bridge.Peek(ctx); err != nil && internal.ErrorKind(err) == "StorageUnavailable" {
		fmt.Fprintln(out, errorStyle.Render("❌ Bridge store unreachable:"), err)
		return false
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Bridge store reachable (%s)", cfg.Bridge.Backend)))
	if bridge.HasResult(ctx) {
		fmt.Fprintln(out, "   A shared result is waiting; run 'fliey sync' to import it")
	}
	return true
}

func checkHistory(ctx context.Context, out io.Writer) bool {
	store, closeHistory, err := openHistory(ctx)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to open history:"), err)
		return false
	}
	defer closeHistory()

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ History available: %d entr%s", store.Len(), pluralY(store.Len()))))
	if healthcheckDetails {
		for _, op := range internal.Operations {
			fmt.Fprintf(out, "   %s: %d\n", op.Title(), len(store.ByOperation(op)))
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}
