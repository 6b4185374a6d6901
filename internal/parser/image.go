package parser

import (
	"context"
	"io"
)

// ImageParser handles scanned images (PNG/JPEG/TIFF) through the same
// OCR-then-vision escalation the image-only PDF path uses.
type ImageParser struct {
	OCR    OCREngine
	Vision VisionExtractor
}

func (p *ImageParser) Extract(ctx context.Context, r io.Reader, _ string) (*Document, error) {
	image, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var stages []StageResult
	var ocrText string

	if p.OCR != nil {
		var ocrErr error
		ocrText, ocrErr = p.OCR.ImageText(ctx, image)
		if ocrErr == nil && nonWhitespaceLen(ocrText) >= pdfMinChars {
			return &Document{FullText: ocrText}, nil
		}
		diag := StageResult{Stage: "ocr", TextLen: nonWhitespaceLen(ocrText)}
		if ocrErr != nil {
			diag.Detail = ocrErr.Error()
		}
		stages = append(stages, diag)
	} else {
		stages = append(stages, StageResult{Stage: "ocr", Detail: "not configured"})
	}

	if p.Vision != nil {
		records, text, visErr := p.Vision.ExtractFromImage(ctx, image, "")
		if visErr == nil {
			if len(records) > 0 {
				return &Document{Records: records}, nil
			}
			if nonWhitespaceLen(text) >= pdfMinChars {
				return &Document{FullText: text}, nil
			}
		}
		diag := StageResult{Stage: "ai_vision", TextLen: nonWhitespaceLen(text)}
		if visErr != nil {
			diag.Detail = visErr.Error()
		}
		stages = append(stages, diag)
	} else {
		stages = append(stages, StageResult{Stage: "ai_vision", Detail: "not configured"})
	}

	return nil, &ExtractionFailure{
		Format: "image",
		Stages: stages,
		Sample: sampleText(ocrText),
	}
}
