package parser

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/tilbrook/vendex/internal/entity"
)

// Minimum non-whitespace characters the structural DOCX extraction must
// yield before we trust it over the raw-container scan.
const docxMinChars = 50

// DOCXParser handles .docx files. It unpacks the document markup and joins
// all visible text runs in document order; when that yields almost nothing
// (malformed or minimal documents), it falls back to scanning the raw
// container bytes for lines carrying business signals. The fallback never
// fails; it returns whatever best-effort lines it finds.
type DOCXParser struct{}

func (p *DOCXParser) Extract(_ context.Context, r io.Reader, _ string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := structuralDocxText(data)
	if nonWhitespaceLen(text) < docxMinChars {
		if scavenged := scanContainerBytes(data); scavenged != "" {
			text = scavenged
		}
	}

	return &Document{FullText: text}, nil
}

// structuralDocxText parses the document body and joins paragraph runs with
// single spaces, paragraphs with newlines. Table rows become one line each,
// cells joined with single spaces. Parse errors yield "".
func structuralDocxText(data []byte) string {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch node := item.(type) {
		case *docx.Paragraph:
			if t := docxParagraphText(node); t != "" {
				lines = append(lines, t)
			}
		case *docx.Table:
			lines = append(lines, docxTableLines(node)...)
		}
	}
	return strings.Join(lines, "\n")
}

func docxParagraphText(para *docx.Paragraph) string {
	var runs []string
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok && strings.TrimSpace(t.Text) != "" {
				runs = append(runs, strings.TrimSpace(t.Text))
			}
		}
	}
	return strings.Join(runs, " ")
}

// docxTableLines flattens a table row by row: every cell's paragraphs joined
// with single spaces, cells joined with single spaces, one row per line.
// Nested tables are flattened onto extra lines after their containing row.
func docxTableLines(tbl *docx.Table) []string {
	var lines []string
	for _, row := range tbl.TableRows {
		var cells []string
		var nested []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			if len(parts) > 0 {
				cells = append(cells, strings.Join(parts, " "))
			}
			for _, inner := range cell.Tables {
				nested = append(nested, docxTableLines(inner)...)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
		lines = append(lines, nested...)
	}
	return lines
}

// scanContainerBytes walks the raw container for decodable text runs and
// keeps the lines that look like business data: email-like, phone-like,
// address-like, or carrying a business-entity suffix.
func scanContainerBytes(data []byte) string {
	var kept []string
	var run []byte

	flush := func() {
		line := strings.TrimSpace(string(run))
		run = run[:0]
		if len(line) < 6 {
			return
		}
		if entity.FindEmail(line) != "" ||
			len(entity.FindPhones(line)) > 0 ||
			entity.FindAddress(line) != "" ||
			entity.HasBusinessSuffix(line) {
			kept = append(kept, line)
		}
	}

	for _, b := range data {
		if b >= 0x20 && b < 0x7f {
			run = append(run, b)
			continue
		}
		flush()
	}
	flush()

	return strings.Join(kept, "\n")
}
