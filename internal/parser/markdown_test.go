package parser

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdownParser_BlocksBecomeBlankLineBoundaries(t *testing.T) {
	src := `# Approved Vendors

## Acme Supply Co

Phone: 555-867-5309
Email: sales@acme.com

## Bravo Industrial LLC

- Phone: 555-123-4567
- 456 Oak Ave, Shelbyville, IL 62565
`

	doc, err := (&MarkdownParser{}).Extract(context.Background(), strings.NewReader(src), "vendors.md")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Acme Supply Co",
		"Phone: 555-867-5309",
		"Bravo Industrial LLC",
		"456 Oak Ave, Shelbyville, IL 62565",
	} {
		if !strings.Contains(doc.FullText, want) {
			t.Errorf("FullText missing %q:\n%s", want, doc.FullText)
		}
	}

	// Headings must be separated from their content by blank lines so the
	// segmenter can find the boundaries.
	if !strings.Contains(doc.FullText, "Acme Supply Co\n\n") {
		t.Errorf("heading not blank-line separated:\n%s", doc.FullText)
	}
}

func TestMarkdownParser_CodeBlockLines(t *testing.T) {
	// Code blocks carry no child nodes; their text comes from the raw line
	// segments. Vendor lists pasted as preformatted text land here.
	src := "Contact sheet:\n\n```\nAcme Supply Co\n555-867-5309\n```\n"

	doc, err := (&MarkdownParser{}).Extract(context.Background(), strings.NewReader(src), "vendors.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.FullText, "Acme Supply Co\n555-867-5309") {
		t.Errorf("code block lines lost:\n%s", doc.FullText)
	}
}

func TestMarkdownParser_StripsFormattingMarks(t *testing.T) {
	src := "**Acme Supply Co** contact *John Smith* at `555-867-5309`"

	doc, err := (&MarkdownParser{}).Extract(context.Background(), strings.NewReader(src), "vendors.md")
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(doc.FullText, "*`") {
		t.Errorf("formatting marks survived: %q", doc.FullText)
	}
	if !strings.Contains(doc.FullText, "Acme Supply Co") {
		t.Errorf("text lost: %q", doc.FullText)
	}
}
