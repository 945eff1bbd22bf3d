package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/fliey/internal"
)

func TestHistoryList_Filters(t *testing.T) {
	setupCLI(t)
	for _, args := range [][]string{
		{"process", "--text", "one", "--op", "summarize"},
		{"process", "--text", "two", "--op", "translate", "--lang", "fr"},
		{"process", "--text", "three", "--op", "rewrite"},
	} {
		if _, err := executeCommand(t, args...); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"history", "list"},
			want: []string{"3 history entries", "summarize", "translate", "rewrite"},
		},
		{
			name:    "by operation",
			args:    []string{"history", "list", "--op", "translate"},
			want:    []string{"1 history entry", "translate"},
			notWant: []string{"summarize", "rewrite"},
		},
		{
			name: "limit",
			args: []string{"history", "list", "-n", "2"},
			want: []string{"2 history entries"},
		},
		{
			name: "favorites only",
			args: []string{"history", "list", "--favorites"},
			want: []string{"No history entries"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("history list failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output should contain %q, got:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output should not contain %q, got:\n%s", notWant, out)
				}
			}
		})
	}

	if _, err := executeCommand(t, "history", "list", "--op", "paraphrase"); err == nil {
		t.Error("unknown --op should fail")
	}
}

func TestDisplayHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := internal.CreateTestHistory(2, now)
	entries[1].Favorite = true

	var buf bytes.Buffer
	displayHistory(&buf, entries, now)
	out := buf.String()

	for _, want := range []string{"2 history entries", "entry-0", "doc-1.txt", "Today 12:00", "★", "fliey history show entry-0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatCreated(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-time.Hour), "Today 11:00"},
		{now.Add(-13 * time.Hour), "Sun 23:00"},
		{now.AddDate(0, 0, -3), "Fri 12:00"},
		{now.AddDate(0, -2, 0), "Jan 10 12:00"},
		{now.AddDate(-2, 0, 0), "2023-03-10"},
	}
	for _, tt := range tests {
		if got := formatCreated(tt.at, now); got != tt.want {
			t.Errorf("formatCreated(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestEllipsize(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"a  b\n c", 10, "a b c"},
		{"abcdefghij", 8, "abcde..."},
		{"ééééé", 3, "ééé"},
	}
	for _, tt := range tests {
		if got := ellipsize(tt.in, tt.n); got != tt.want {
			t.Errorf("ellipsize(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
