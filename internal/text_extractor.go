package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Supported document extensions
const (
	FormatText = ".txt"
	FormatPDF  = ".pdf"
	FormatDOCX = ".docx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractFunc reads the text of a single document
type extractFunc func(ctx context.Context, path string) (string, error)

// Extractor turns a document path into plain text, picking a strategy by
// file extension.
type Extractor struct {
	strategies map[string]extractFunc
	// Concurrency bounds ExtractAll; zero means one worker per path.
	Concurrency int
}

// NewExtractor creates an extractor for .txt, .pdf and .docx files
func NewExtractor() *Extractor {
	return &Extractor{
		strategies: map[string]extractFunc{
			FormatText: extractPlainText,
			FormatPDF:  extractPDF,
			FormatDOCX: extractDOCX,
		},
		Concurrency: 4,
	}
}

// SupportedFormats lists the extensions ExtractText accepts
func SupportedFormats() []string {
	return []string{FormatText, FormatPDF, FormatDOCX}
}

// ExtractText reads the text of the document at path. The strategy is chosen
// from the lower-cased extension before the file is touched.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := e.strategies[ext]
	if !ok {
		return "", &FormatError{Path: path, Format: ext}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	LogDebug("Extracting %s with %s strategy", path, ext)
	return fn(ctx, path)
}

// ExtractAll extracts every path concurrently. Results keep the input order;
// the first failure cancels the remaining work.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) ([]string, error) {
	results := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			text, err := e.ExtractText(gctx, path)
			if err != nil {
				return err
			}
			results[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extractPlainText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: readFailureReason(err), Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &ExtractionError{Path: path, Reason: "content is not valid UTF-8"}
	}
	return string(data), nil
}

func readFailureReason(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	default:
		return "cannot read file"
	}
}
