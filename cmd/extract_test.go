package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/fliey/testutil"
)

func TestExtractCommand(t *testing.T) {
	dir := setupCLI(t)
	txt := testutil.CreateTextFixture(t, filepath.Join(dir, "notes.txt"), "plain notes")
	pdf := testutil.CreatePDFFixture(t, filepath.Join(dir, "paper.pdf"), "Alpha", "Beta")

	out, err := executeCommand(t, "extract", txt)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if out != "plain notes\n" {
		t.Errorf("single file output = %q, want the bare text", out)
	}

	out, err = executeCommand(t, "extract", txt, pdf)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	want := "==> " + txt + " <==\nplain notes\n\n==> " + pdf + " <==\nAlpha\n\nBeta\n"
	if out != want {
		t.Errorf("multi file output =\n%q\nwant\n%q", out, want)
	}
}

func TestExtractCommand_JSON(t *testing.T) {
	dir := setupCLI(t)
	txt := testutil.CreateTextFixture(t, filepath.Join(dir, "notes.txt"), "héllo")
	pdf := testutil.CreatePDFFixture(t, filepath.Join(dir, "paper.pdf"), "Alpha", "Beta")

	out, err := executeCommand(t, "extract", "--format", "json", "--concurrency", "1", pdf, txt)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	var docs []extractedDocument
	testutil.JSONUnmarshal(t, []byte(out), &docs)
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].Path != pdf || docs[0].Text != "Alpha\n\nBeta" || docs[0].Chars != 11 {
		t.Errorf("pdf document = %+v", docs[0])
	}
	if docs[1].Path != txt || docs[1].Chars != 5 {
		t.Errorf("txt document = %+v, chars should count runes", docs[1])
	}
}

func TestExtractCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		args    []string
		wantMsg string
	}{
		{"no args", nil, []string{"extract"}, "requires at least 1 arg"},
		{"unsupported format", map[string]string{"slides.pptx": "x"}, []string{"extract", "slides.pptx"}, "pptx"},
		{"missing file", nil, []string{"extract", "missing.txt"}, "missing.txt"},
		{"bad output format", map[string]string{"a.txt": "x"}, []string{"extract", "--format", "xml", "a.txt"}, "format"},
		{"one bad file fails the batch", map[string]string{"a.txt": "x"}, []string{"extract", "a.txt", "missing.txt"}, "missing.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupCLI(t)
			for name, content := range tt.files {
				testutil.CreateTextFixture(t, filepath.Join(dir, name), content)
			}
			_, err := executeCommand(t, tt.args...)
			if err == nil {
				t.Fatalf("%v should fail", tt.args)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, should mention %q", err, tt.wantMsg)
			}
		})
	}
}
