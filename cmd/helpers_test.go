package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var cliEnvKeys = []string{
	"FLIEY_CONFIG", "FLIEY_ENGINE", "FLIEY_FALLBACK", "OLLAMA_HOST", "OLLAMA_MODEL",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "FLIEY_ENGINE_TIMEOUT",
	"FLIEY_PROBE_TIMEOUT", "FLIEY_SIMULATED_DELAY", "FLIEY_MAX_INPUT_CHARS",
	"FLIEY_BRIDGE_BACKEND", "FLIEY_BRIDGE_NAMESPACE", "FLIEY_BRIDGE_DIR", "FLIEY_BRIDGE_DB",
	"FLIEY_REDIS_ADDR", "FLIEY_REDIS_DB", "FLIEY_HISTORY_BACKEND", "FLIEY_HISTORY_PATH",
	"FLIEY_RETENTION_DAYS", "FLIEY_DEDUP_WINDOW", "FLIEY_PREVIEW_LENGTH",
	"FLIEY_LOG_LEVEL", "FLIEY_LOG_FORMAT",
}

// setupCLI points every store at a temp dir and selects the simulated engine
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range cliEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("FLIEY_ENGINE", "simulated")
	t.Setenv("FLIEY_SIMULATED_DELAY", "1ms")
	t.Setenv("FLIEY_BRIDGE_DIR", filepath.Join(dir, "shared"))
	t.Setenv("FLIEY_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("FLIEY_LOG_LEVEL", "error")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setContext(ctx context.Context, c *cobra.Command) {
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		setContext(ctx, sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, strings.NewReader(stdin), args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	// cobra only hands the context to commands that have none yet
	setContext(ctx, rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
