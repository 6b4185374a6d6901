package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tilbrook/vendex/internal/vendor"
)

// Fakes shared by the escalation-chain tests.

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ImageText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeRenderer struct {
	image []byte
	err   error
}

func (f *fakeRenderer) RenderPage(_ context.Context, _ string, _ int) ([]byte, error) {
	return f.image, f.err
}

type fakeVision struct {
	records []vendor.Record
	text    string
	err     error
}

func (f *fakeVision) ExtractFromImage(_ context.Context, _ []byte, _ string) ([]vendor.Record, string, error) {
	return f.records, f.text, f.err
}

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"vendors.txt", "*parser.TextParser"},
		{"vendors.md", "*parser.MarkdownParser"},
		{"vendors.csv", "*parser.DelimitedParser"},
		{"vendors.tsv", "*parser.DelimitedParser"},
		{"vendors.xlsx", "*parser.XLSXParser"},
		{"vendors.html", "*parser.HTMLParser"},
		{"VENDORS.PDF", "*parser.PDFParser"},
		{"vendors.docx", "*parser.DOCXParser"},
		{"scan.png", "*parser.ImageParser"},
		{"scan.jpeg", "*parser.ImageParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Deps{})
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.filename, err)
			continue
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.filename, got, tt.want)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("vendors.exe", Deps{})
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Ext != ".exe" {
		t.Errorf("Ext = %q", unsupported.Ext)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a/b/vendors.XLSX") {
		t.Error("xlsx should be supported, case-insensitive")
	}
	if IsSupportedExtension("vendors.exe") {
		t.Error("exe should not be supported")
	}
}

func TestTextParser(t *testing.T) {
	doc, err := (&TextParser{}).Extract(context.Background(),
		strings.NewReader("Acme Corp\r\n123 Main St\n"), "vendors.txt")
	if err != nil {
		t.Fatal(err)
	}
	if doc.FullText != "Acme Corp\n123 Main St" {
		t.Errorf("FullText = %q", doc.FullText)
	}
}

func TestDelimitedParser_CSV(t *testing.T) {
	in := "name,phone\n\"Acme, Inc\",555-867-5309\nBravo LLC,555-123-4567\n"
	doc, err := (&DelimitedParser{Comma: ','}).Extract(context.Background(), strings.NewReader(in), "v.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("got %d rows", len(doc.Rows))
	}
	if doc.Rows[1][0] != "Acme, Inc" {
		t.Errorf("quoted field = %q", doc.Rows[1][0])
	}
}

func TestDelimitedParser_TSVRaggedRows(t *testing.T) {
	in := "name\tphone\temail\nAcme\t555-867-5309\nBravo\t555-123-4567\tb@bravo.com\textra\n"
	doc, err := (&DelimitedParser{Comma: '\t'}).Extract(context.Background(), strings.NewReader(in), "v.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("ragged rows rejected: %d rows", len(doc.Rows))
	}
}

func TestNonWhitespaceLen(t *testing.T) {
	if got := nonWhitespaceLen(" a\tb\nc \r\n"); got != 3 {
		t.Errorf("got %d", got)
	}
}

func TestExtractionFailure_Error(t *testing.T) {
	err := &ExtractionFailure{
		Format: "pdf",
		Stages: []StageResult{
			{Stage: "text_layer", TextLen: 4},
			{Stage: "ocr", TextLen: 0, Detail: "tesseract: exit 1"},
		},
		Sample: "scan",
	}
	msg := err.Error()
	for _, want := range []string{"pdf extraction produced no usable text", "text_layer=4 chars", "ocr=0 chars (tesseract: exit 1)", `"scan"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}
