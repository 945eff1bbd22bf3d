package internal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource yields the raw text of each page, numbered from 1
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.reader.NumPage()
}

func (p pdfPages) PageText(n int) (text string, err error) {
	// the pdf package panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()
	page := p.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func extractPDF(ctx context.Context, path string) (text string, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return "", &ExtractionError{Path: path, Reason: readFailureReason(statErr), Err: statErr}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Path: path, Reason: "cannot open document", Err: fmt.Errorf("%v", r)}
		}
	}()

	file, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return "", &ExtractionError{Path: path, Reason: "cannot open document", Err: openErr}
	}
	defer file.Close()

	return joinPages(ctx, path, pdfPages{reader: reader})
}

// joinPages trims each page and joins the non-empty ones with a blank line.
// Pages that fail to decode are skipped.
func joinPages(ctx context.Context, path string, src pageSource) (string, error) {
	var pages []string
	for n := 1; n <= src.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw, err := src.PageText(n)
		if err != nil {
			LogDebug("Skipping page %d of %s: %v", n, path, err)
			continue
		}
		if page := strings.TrimSpace(raw); page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
