package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/fliey/internal"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var (
	syncWatch    bool
	syncInterval time.Duration

	syncClock clockwork.Clock = clockwork.NewRealClock()
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import pending shared results into history",
	Long: `Import the result left by 'fliey share' into history.

With --watch the bridge is polled every --interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if syncInterval <= 0 {
			return &internal.ValidationError{Field: "interval", Message: "must be positive"}
		}

		history, closeHistory, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer closeHistory()

		bridge, closeBridge, err := openBridge()
		if err != nil {
			return err
		}
		defer closeBridge()

		app := internal.NewApp(nil, nil, history, bridge)
		out := cmd.OutOrStdout()

		if !syncWatch {
			_, err := syncOnce(ctx, app, out, true)
			return err
		}
		return watchBridge(ctx, app, out, syncInterval)
	},
}

func syncOnce(ctx context.Context, app *internal.App, out io.Writer, reportEmpty bool) (bool, error) {
	resp, ok, err := app.SyncShared(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		if reportEmpty {
			fmt.Fprintln(out, "No shared result pending")
		}
		return false, nil
	}
	fmt.Fprintf(out, "Imported shared %s result: %s\n", resp.Operation, ellipsize(resp.Text, 60))
	return true, nil
}

// watchBridge polls until ctx is done. Storage errors are logged and the
// next tick retries.
func watchBridge(ctx context.Context, app *internal.App, out io.Writer, interval time.Duration) error {
	internal.LogInfo("Watching for shared results every %s", interval)
	ticker := syncClock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := syncOnce(ctx, app, out, false); err != nil {
			internal.LogWarn("Sync failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "Keep polling for shared results")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 2*time.Second, "Polling interval for --watch")
	rootCmd.AddCommand(syncCmd)
}
