package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// cfg is loaded before every command runs
	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fliey",
	Short: "Summarize, translate and rewrite documents from the command line",
	Long: `fliey hands a document or a text fragment to a text engine and returns
a summary, a translation or a rewrite in a chosen tone.

Features:
  • Plain text, PDF and DOCX input
  • Ollama or OpenAI-compatible engines with a simulated fallback
  • A share flow that hands results to the main app through a bridge
  • History with favorites, deduplication and retention
  • History export (JSONL, Markdown, YAML, JSON)

Quick Start:
  fliey process --file report.pdf --op summarize --sentences 3
  fliey process --text "Bonjour" --op translate --lang en
  fliey history list
  fliey export --format md`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		internal.ConfigureLoggingTo(cmd.ErrOrStderr(), cfg.Log)
		if verbose {
			internal.SetVerbose(true)
		}
		internal.Logger().Debug("configuration loaded",
			"engine", cfg.Engine.Provider,
			"bridge", cfg.Bridge.Backend,
			"history", cfg.History.Backend)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", internal.ErrorKind(err), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $FLIEY_CONFIG or ./fliey.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
