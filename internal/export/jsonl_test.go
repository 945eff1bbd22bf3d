package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/fliey/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		entries   []internal.HistoryEntry
		wantLines int
	}{
		{
			name:      "one line per entry",
			entries:   internal.CreateTestHistory(5, exportNow),
			wantLines: 5,
		},
		{
			name:      "empty history",
			entries:   []internal.HistoryEntry{},
			wantLines: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}
			if err := exporter.Export(tt.entries, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			scanner := bufio.NewScanner(&buf)
			lines := 0
			for scanner.Scan() {
				var entry internal.HistoryEntry
				if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
					t.Fatalf("line %d is not a valid entry: %v", lines+1, err)
				}
				if entry.ID != tt.entries[lines].ID {
					t.Errorf("line %d id = %q, want %q", lines+1, entry.ID, tt.entries[lines].ID)
				}
				if entry.Operation != tt.entries[lines].Operation {
					t.Errorf("line %d operation = %q, want %q", lines+1, entry.Operation, tt.entries[lines].Operation)
				}
				lines++
			}
			if lines != tt.wantLines {
				t.Errorf("got %d lines, want %d", lines, tt.wantLines)
			}
		})
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
