package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/fliey/internal"
)

// JSONExporter exports history as one pretty-printed JSON array
type JSONExporter struct{}

// Export writes entries as a JSON array; an empty history is "[]"
func (e *JSONExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	if entries == nil {
		entries = []internal.HistoryEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(entries)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
