package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iksnae/fliey/internal"
	"github.com/spf13/cobra"
)

// runFlags are the input and operation flags shared by process and share
type runFlags struct {
	file      string
	text      string
	op        string
	sentences int
	lang      string
	tone      string
	format    string
	width     int
}

func (f *runFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.file, "file", "f", "", "Document to process (.txt, .pdf, .docx)")
	c.Flags().StringVarP(&f.text, "text", "t", "", "Text to process (stdin is read when neither --file nor --text is set)")
	c.Flags().StringVarP(&f.op, "op", "o", string(internal.OperationSummarize), "Operation: summarize, translate or rewrite")
	c.Flags().IntVar(&f.sentences, "sentences", internal.DefaultSentenceLimit, "Sentence limit for summarize")
	c.Flags().StringVar(&f.lang, "lang", "", "Target language code for translate")
	c.Flags().StringVar(&f.tone, "tone", string(internal.ToneFormal), "Tone for rewrite: formal, casual, professional or concise")
	c.Flags().StringVar(&f.format, "format", outputText, "Output format: text, md, json or yaml")
	c.Flags().IntVar(&f.width, "width", 80, "Wrap text output at this many columns (0 disables)")
}

func (f *runFlags) options() (internal.ProcessOptions, error) {
	op, err := internal.ParseOperation(f.op)
	if err != nil {
		return internal.ProcessOptions{}, &internal.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", f.op)}
	}
	opts := internal.ProcessOptions{Operation: op}
	switch op {
	case internal.OperationSummarize:
		opts.SentenceLimit = f.sentences
	case internal.OperationTranslate:
		opts.TargetLanguage = f.lang
	case internal.OperationRewrite:
		tone, err := internal.ParseTone(f.tone)
		if err != nil {
			return internal.ProcessOptions{}, err
		}
		opts.Tone = tone
	}
	return opts, nil
}

// input resolves the text source. A non-empty path means the input is a file.
func (f *runFlags) input(in io.Reader) (path, text string, err error) {
	switch {
	case f.file != "" && f.text != "":
		return "", "", &internal.ValidationError{Field: "input", Message: "use either --file or --text, not both"}
	case f.file != "":
		return f.file, "", nil
	case f.text != "":
		return "", f.text, nil
	}
	if file, ok := in.(*os.File); ok && internal.IsTerminal(file) {
		return "", "", &internal.ValidationError{Field: "input", Message: "provide --file, --text or pipe text on stdin"}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return "", string(data), nil
}

var (
	processFlags     runFlags
	processNoHistory bool
	processNoSync    bool
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Summarize, translate or rewrite a document or text",
	Long: `Run one operation on a document or a text fragment and print the result.

Pending results from the share flow are imported into history first.
The result itself is recorded in history unless --no-history is set;
the same source and operation are recorded at most once per dedup window.`,
	Example: `  fliey process --file notes.pdf --op summarize --sentences 3
  fliey process --text "Guten Morgen" --op translate --lang en
  cat draft.txt | fliey process --op rewrite --tone concise --format md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := validateOutputFormat(processFlags.format); err != nil {
			return err
		}
		opts, err := processFlags.options()
		if err != nil {
			return err
		}
		path, text, err := processFlags.input(cmd.InOrStdin())
		if err != nil {
			return err
		}

		gateway, err := openGateway()
		if err != nil {
			return err
		}

		var history *internal.HistoryStore
		if !processNoHistory {
			store, closeHistory, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer closeHistory()
			history = store
		}

		var bridge *internal.ResultBridge
		if history != nil && !processNoSync {
			b, closeBridge, err := openBridge()
			if err != nil {
				internal.LogWarn("Shared results unavailable: %v", err)
			} else {
				defer closeBridge()
				bridge = b
			}
		}

		app := internal.NewApp(nil, gateway, history, bridge)
		app.OnStateChange(func(state internal.WorkflowState, err error) {
			internal.Logger().Debug("workflow state", "state", string(state), "error", err)
		})

		if _, imported, err := app.SyncShared(ctx); err != nil {
			internal.LogWarn("Failed to import shared result: %v", err)
		} else if imported {
			internal.PrintInfo("Imported a pending shared result into history")
		}

		resp, err := runWithProgress(ctx, opts.Operation, func() (*internal.Response, error) {
			if path != "" {
				return app.ImportFile(ctx, path, opts)
			}
			return app.ProcessText(ctx, text, opts)
		})
		if resp == nil {
			return err
		}
		if err != nil {
			// processed but not recorded
			internal.PrintWarning(fmt.Sprintf("Result not saved to history: %v", err))
		}
		return renderResponse(cmd.OutOrStdout(), resp, processFlags.format, processFlags.width)
	},
}

// runWithProgress shows a spinner named after op while fn runs
func runWithProgress(ctx context.Context, op internal.Operation, fn func() (*internal.Response, error)) (*internal.Response, error) {
	var (
		resp   *internal.Response
		runErr error
	)
	message := fmt.Sprintf("Running %s", op)
	err := internal.ShowProgress(ctx, message, func() error {
		resp, runErr = fn()
		if resp == nil {
			return runErr
		}
		return nil
	})
	if err != nil && resp == nil {
		return nil, err
	}
	return resp, runErr
}

func init() {
	processFlags.register(processCmd)
	processCmd.Flags().BoolVar(&processNoHistory, "no-history", false, "Do not record the result in history")
	processCmd.Flags().BoolVar(&processNoSync, "no-sync", false, "Do not import pending shared results first")
	rootCmd.AddCommand(processCmd)
}
