package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Below this many non-whitespace characters, a stage's output is treated as
// unusable and the next fallback stage runs.
const pdfMinChars = 20

// PDFParser handles PDF files through a linear three-stage escalation:
// embedded text layer, then page-1 raster + OCR, then AI vision. Each stage
// runs only when the previous stage's output is below the character
// threshold; there is no retry within a stage.
type PDFParser struct {
	OCR      OCREngine
	Renderer PageRenderer
	Vision   VisionExtractor
}

func (p *PDFParser) Extract(ctx context.Context, r io.Reader, _ string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so stage the bytes in a
	// temp file; the Renderer needs an on-disk path anyway.
	tmp, err := os.CreateTemp("", "vendex-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	var stages []StageResult

	// Stage 1: embedded text layer, page by page.
	fullText, pageTexts, layerErr := textLayer(tmpPath)
	if layerErr == nil && nonWhitespaceLen(fullText) >= pdfMinChars {
		return &Document{FullText: fullText, PageTexts: pageTexts}, nil
	}
	diag := StageResult{Stage: "text_layer", TextLen: nonWhitespaceLen(fullText)}
	if layerErr != nil {
		diag.Detail = layerErr.Error()
	}
	stages = append(stages, diag)

	// Stage 2: render page 1 and run OCR. Rendering needs only the renderer;
	// the image is kept for stage 3 even when no OCR engine is present.
	var image []byte
	if p.Renderer == nil {
		stages = append(stages, StageResult{Stage: "ocr", Detail: "not configured"})
	} else if img, renderErr := p.Renderer.RenderPage(ctx, tmpPath, 1); renderErr != nil {
		stages = append(stages, StageResult{Stage: "ocr", Detail: "render: " + renderErr.Error()})
	} else {
		image = img
		if p.OCR == nil {
			stages = append(stages, StageResult{Stage: "ocr", Detail: "not configured"})
		} else {
			ocrText, ocrErr := p.OCR.ImageText(ctx, image)
			if ocrErr == nil && nonWhitespaceLen(ocrText) >= pdfMinChars {
				return &Document{FullText: ocrText, PageTexts: []string{ocrText}}, nil
			}
			diag := StageResult{Stage: "ocr", TextLen: nonWhitespaceLen(ocrText)}
			if ocrErr != nil {
				diag.Detail = ocrErr.Error()
			}
			stages = append(stages, diag)
		}
	}

	// Stage 3: AI vision on the rendered page.
	switch {
	case p.Vision == nil:
		stages = append(stages, StageResult{Stage: "ai_vision", Detail: "not configured"})
	case len(image) == 0:
		stages = append(stages, StageResult{Stage: "ai_vision", Detail: "no rendered image"})
	default:
		records, text, visErr := p.Vision.ExtractFromImage(ctx, image, "")
		if visErr == nil {
			if len(records) > 0 {
				for i := range records {
					records[i].PageNumber = 1
				}
				return &Document{Records: records}, nil
			}
			if nonWhitespaceLen(text) >= pdfMinChars {
				return &Document{FullText: text, PageTexts: []string{text}}, nil
			}
		}
		diag := StageResult{Stage: "ai_vision", TextLen: nonWhitespaceLen(text)}
		if visErr != nil {
			diag.Detail = visErr.Error()
		}
		stages = append(stages, diag)
	}

	return nil, &ExtractionFailure{
		Format: "pdf",
		Stages: stages,
		Sample: sampleText(fullText),
	}
}

// textLayer extracts the embedded text content per page, in reading order.
func textLayer(path string) (string, []string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var pages []string
	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}
	return buf.String(), pages, nil
}

func sampleText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120]
	}
	return s
}
