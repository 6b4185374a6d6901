package parser

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/tilbrook/vendex/internal/vendor"
)

// Document is the result of format-specific text extraction.
//
// Exactly one of three shapes is populated:
//   - FullText (+ PageTexts for paginated formats): free text that goes
//     through segmentation and entity extraction;
//   - Rows: header + data rows from delimited formats, which bypass
//     segmentation and map straight to fields;
//   - Records: vendor candidates pre-extracted by the AI vision service,
//     which short-circuit the rest of the pipeline.
type Document struct {
	FullText  string
	PageTexts []string
	Rows      [][]string
	Records   []vendor.Record
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Extract(ctx context.Context, r io.Reader, filename string) (*Document, error)
}

// OCREngine turns a raster image into best-effort text.
type OCREngine interface {
	ImageText(ctx context.Context, image []byte) (string, error)
}

// PageRenderer rasterizes one page of a PDF file on disk.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int) ([]byte, error)
}

// VisionExtractor sends an image to the AI vision service. It returns either
// pre-extracted vendor records, or raw text to be treated like any other
// extracted text.
type VisionExtractor interface {
	ExtractFromImage(ctx context.Context, image []byte, instructions string) ([]vendor.Record, string, error)
}

// Deps carries the external collaborators some parsers escalate to.
// Nil members disable the corresponding fallback stage.
type Deps struct {
	OCR      OCREngine
	Renderer PageRenderer
	Vision   VisionExtractor
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".tsv":      true,
	".xlsx":     true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".tif":      true,
	".tiff":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, deps Deps) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &DelimitedParser{Comma: ','}, nil
	case ".tsv":
		return &DelimitedParser{Comma: '\t'}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{OCR: deps.OCR, Renderer: deps.Renderer, Vision: deps.Vision}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return &ImageParser{OCR: deps.OCR, Vision: deps.Vision}, nil
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// nonWhitespaceLen counts characters remaining after stripping all whitespace.
func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			n++
		}
	}
	return n
}
