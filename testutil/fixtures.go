package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BuildPDF renders a minimal uncompressed PDF with one page per entry. Each
// page draws its text with a single Tj operator; an empty entry produces a
// page with an empty content stream. Text should be plain ASCII.
func BuildPDF(pages []string) []byte {
	var buf bytes.Buffer
	var offsets []int

	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: page tree, then a page and content stream per page
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	addObject("<< /Type /Catalog /Pages 2 0 R >>")
	addObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	for i, text := range pages {
		addObject(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R >>", 4+2*i))
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT 72 720 Td (%s) Tj ET", escapePDFString(text))
		}
		addObject(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// CreatePDFFixture writes a PDF built by BuildPDF to path
func CreatePDFFixture(t *testing.T, path string, pages ...string) string {
	t.Helper()
	WriteFile(t, path, BuildPDF(pages))
	return path
}

// WordDocumentXML wraps paragraph XML fragments in a WordprocessingML document
func WordDocumentXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// WordParagraph builds a paragraph with one run per text segment
func WordParagraph(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		fmt.Fprintf(&b, "<w:r><w:t xml:space=\"preserve\">%s</w:t></w:r>", r)
	}
	b.WriteString("</w:p>")
	return b.String()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

// DOCXOptions controls which parts CreateDOCXFixture writes
type DOCXOptions struct {
	OmitContentTypes bool
	OmitDocument     bool
}

// BuildDOCX zips documentXML into a minimal .docx package
func BuildDOCX(t *testing.T, documentXML string, opts DOCXOptions) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to docx: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("Failed to write %s to docx: %v", name, err)
		}
	}

	if !opts.OmitContentTypes {
		add("[Content_Types].xml", contentTypesXML)
	}
	if !opts.OmitDocument {
		add("word/document.xml", documentXML)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish docx: %v", err)
	}
	return buf.Bytes()
}

// CreateDOCXFixture writes a .docx package to path
func CreateDOCXFixture(t *testing.T, path, documentXML string, opts DOCXOptions) string {
	t.Helper()
	WriteFile(t, path, BuildDOCX(t, documentXML, opts))
	return path
}

// CreateTextFixture writes a text file to path
func CreateTextFixture(t *testing.T, path, content string) string {
	t.Helper()
	WriteFile(t, path, []byte(content))
	return path
}

// WriteFile writes data to path, creating parent directories
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
}
