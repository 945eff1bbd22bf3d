package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInspectCommand(t *testing.T) {
	dir := setupCLI(t)
	if _, err := executeCommand(t, "process", "--text", "inspect me"); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	out, err := executeCommand(t, "inspect", "--format", "json", "--sample", "1")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	var report databaseReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !strings.HasPrefix(report.Path, dir) {
		t.Errorf("report path = %q, want the history database under %s", report.Path, dir)
	}

	rows := map[string]int{}
	for _, table := range report.Tables {
		rows[table.Name] = table.Rows
		if table.Name == "history" {
			if len(table.Columns) == 0 {
				t.Error("history table should report its columns")
			}
			if len(table.Sample) != 1 {
				t.Errorf("got %d sample rows, want 1", len(table.Sample))
			}
		}
	}
	if rows["history"] != 1 {
		t.Errorf("history rows = %d, want 1 (tables %v)", rows["history"], rows)
	}

	out, err = executeCommand(t, "inspect", "--sample", "0")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"📦 Table: history", "📊 Rows: 1", "📐 Schema:"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sample Data") {
		t.Error("--sample 0 should omit sample rows")
	}
}

func TestInspectCommand_Errors(t *testing.T) {
	setupCLI(t)
	if _, err := executeCommand(t, "inspect", "--format", "xml"); err == nil {
		t.Error("invalid format should fail")
	}

	t.Setenv("FLIEY_HISTORY_BACKEND", "yaml")
	if _, err := executeCommand(t, "inspect"); err == nil {
		t.Error("inspect without a SQLite store should fail")
	}
}

func TestFormatValue(t *testing.T) {
	long := strings.Repeat("x", 300)
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "<NULL>"},
		{[]byte("abc"), "abc"},
		{int64(42), "42"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := formatValue(long); len(got) >= len(long) {
		t.Errorf("long values should be truncated, got %d chars", len(got))
	}
}
