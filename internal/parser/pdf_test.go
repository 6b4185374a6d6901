package parser

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tilbrook/vendex/internal/vendor"
)

// The inputs here are deliberately not valid PDFs: stage 1 (embedded text
// layer) fails on them, which is exactly the scanned-document shape the
// OCR and vision fallbacks exist for.

func TestPDFParser_OCRFallback(t *testing.T) {
	p := &PDFParser{
		OCR:      &fakeOCR{text: "Acme Supply Co, 123 Main St, Springfield IL 62704"},
		Renderer: &fakeRenderer{image: []byte("rendered-page")},
		Vision:   &fakeVision{err: errors.New("should not be called")},
	}

	doc, err := p.Extract(context.Background(), bytes.NewReader([]byte("not a pdf")), "scan.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if doc.FullText != "Acme Supply Co, 123 Main St, Springfield IL 62704" {
		t.Errorf("FullText = %q", doc.FullText)
	}
	if len(doc.PageTexts) != 1 {
		t.Errorf("PageTexts = %v", doc.PageTexts)
	}
}

func TestPDFParser_VisionRecordsShortCircuit(t *testing.T) {
	p := &PDFParser{
		OCR:      &fakeOCR{text: "???"},
		Renderer: &fakeRenderer{image: []byte("rendered-page")},
		Vision: &fakeVision{records: []vendor.Record{
			{Name: "Acme Supply Co", Phone: "555-867-5309"},
			{Name: "Bravo LLC", Email: "b@bravo.com"},
		}},
	}

	doc, err := p.Extract(context.Background(), bytes.NewReader([]byte("not a pdf")), "scan.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("Records = %+v", doc.Records)
	}
	if doc.FullText != "" {
		t.Errorf("pre-extracted records should carry no full text, got %q", doc.FullText)
	}
	for i, rec := range doc.Records {
		if rec.PageNumber != 1 {
			t.Errorf("record %d page = %d, want 1 (the rendered page)", i, rec.PageNumber)
		}
	}
}

func TestPDFParser_VisionRunsWithoutOCREngine(t *testing.T) {
	// A missing tesseract install must not disable the vision stage: the
	// page is still rendered and handed to the vision service.
	p := &PDFParser{
		Renderer: &fakeRenderer{image: []byte("rendered-page")},
		Vision:   &fakeVision{text: "Acme Supply Co, 123 Main St, Springfield IL 62704"},
	}

	doc, err := p.Extract(context.Background(), bytes.NewReader([]byte("not a pdf")), "scan.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if doc.FullText != "Acme Supply Co, 123 Main St, Springfield IL 62704" {
		t.Errorf("FullText = %q", doc.FullText)
	}
}

func TestPDFParser_RenderFailureStillTriesNothing(t *testing.T) {
	// Rendering failed, so there is no image for vision either; the chain
	// must end in a failure that reports every stage.
	p := &PDFParser{
		OCR:      &fakeOCR{text: "unused"},
		Renderer: &fakeRenderer{err: errors.New("pdftoppm: exit 1")},
		Vision:   &fakeVision{text: "unused"},
	}

	_, err := p.Extract(context.Background(), bytes.NewReader([]byte("not a pdf")), "scan.pdf")

	var failure *ExtractionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ExtractionFailure, got %v", err)
	}
	if failure.Format != "pdf" {
		t.Errorf("Format = %q", failure.Format)
	}
	if len(failure.Stages) != 3 {
		t.Fatalf("expected 3 stage diagnostics, got %+v", failure.Stages)
	}
	if failure.Stages[1].Detail != "render: pdftoppm: exit 1" {
		t.Errorf("render detail = %q", failure.Stages[1].Detail)
	}
	if failure.Stages[2].Detail != "no rendered image" {
		t.Errorf("vision detail = %q", failure.Stages[2].Detail)
	}
}

func TestPDFParser_AllStagesExhausted(t *testing.T) {
	p := &PDFParser{
		OCR:      &fakeOCR{err: errors.New("tesseract: exit 1")},
		Renderer: &fakeRenderer{image: []byte("rendered-page")},
		Vision:   &fakeVision{text: "tiny"},
	}

	_, err := p.Extract(context.Background(), bytes.NewReader([]byte("not a pdf")), "scan.pdf")

	var failure *ExtractionFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected ExtractionFailure, got %v", err)
	}
	stages := make(map[string]StageResult, len(failure.Stages))
	for _, s := range failure.Stages {
		stages[s.Stage] = s
	}
	if _, ok := stages["text_layer"]; !ok {
		t.Error("missing text_layer diagnostic")
	}
	if s := stages["ocr"]; s.Detail != "tesseract: exit 1" {
		t.Errorf("ocr detail = %q", s.Detail)
	}
	if s := stages["ai_vision"]; s.TextLen != 4 {
		t.Errorf("ai_vision text_len = %d", s.TextLen)
	}
}
