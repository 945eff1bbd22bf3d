package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/fliey/internal"
)

// Exporter defines the interface for all history export formats
type Exporter interface {
	Export(entries []internal.HistoryEntry, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format (case-insensitive)
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q (supported: jsonl, md, yaml, json)", internal.ErrInvalidParameters, format)
	}
}
