package internal

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"
)

const (
	docxContentTypes = "[Content_Types].xml"
	docxDocument     = "word/document.xml"
	wordMLNamespace  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

func extractDOCX(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &ExtractionError{Path: path, Reason: readFailureReason(err), Err: err}
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", &FormatError{Path: path, Format: FormatDOCX}
	}
	defer archive.Close()

	var document *zip.File
	hasContentTypes := false
	for _, f := range archive.File {
		switch f.Name {
		case docxContentTypes:
			hasContentTypes = true
		case docxDocument:
			document = f
		}
	}
	if !hasContentTypes {
		return "", &FormatError{Path: path, Format: FormatDOCX}
	}
	if document == nil {
		return "", &ExtractionError{Path: path, Reason: "missing " + docxDocument}
	}

	rc, err := document.Open()
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: "cannot open " + docxDocument, Err: err}
	}
	defer rc.Close()

	text, err := parseWordDocument(ctx, rc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &ExtractionError{Path: path, Reason: "malformed " + docxDocument, Err: err}
	}
	return text, nil
}

// parseWordDocument walks the WordprocessingML body. Text runs are
// concatenated per paragraph; tabs and breaks become \t and \n. A paragraph
// nested inside another (text box content) is emitted on its own, ahead of
// the paragraph that contains it.
func parseWordDocument(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
		sawBody    bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordMLNamespace {
				continue
			}
			switch t.Name.Local {
			case "body":
				sawBody = true
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(open) > 0 {
					open[len(open)-1].WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordMLNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if n := len(open); n > 0 {
					paragraphs = append(paragraphs, open[n-1].String())
					open = open[:n-1]
				}
			}
		case xml.CharData:
			if inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}
		}
	}

	if !sawBody {
		return "", errors.New("document has no body")
	}
	return strings.Join(paragraphs, "\n"), nil
}
