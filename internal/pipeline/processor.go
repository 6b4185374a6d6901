// Package pipeline runs documents through extraction end to end and manages
// the async ingestion job machinery around it.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tilbrook/vendex/internal/entity"
	"github.com/tilbrook/vendex/internal/parser"
	"github.com/tilbrook/vendex/internal/rowmap"
	"github.com/tilbrook/vendex/internal/segment"
	"github.com/tilbrook/vendex/internal/vendor"
)

// Block confidence below this threshold attaches a low-confidence warning.
const lowConfidenceThreshold = 0.6

// TextExtractionService is the AI-assisted block parser. Implementations
// must be safe for concurrent use; the pipeline is tested against a
// deterministic fake.
type TextExtractionService interface {
	ExtractBlock(ctx context.Context, block, instructions string) (vendor.Record, error)
	ExtractText(ctx context.Context, text, instructions string) ([]vendor.Record, error)
}

// Request is one document submitted for extraction. The raw bytes are owned
// by the call and discarded after text extraction.
type Request struct {
	Data          []byte
	Filename      string
	ExpectedCount int
	Instructions  string
}

// Processor turns one document into a ProcessingReport. It holds no mutable
// state across calls; every Process call owns its own pipeline instance.
type Processor struct {
	deps parser.Deps
	ai   TextExtractionService
	log  *slog.Logger
}

func NewProcessor(deps parser.Deps, ai TextExtractionService, log *slog.Logger) *Processor {
	return &Processor{deps: deps, ai: ai, log: log}
}

// Process runs the full extraction pipeline. It returns a fatal error only
// for unsupported formats and documents whose every extraction stage failed;
// anything less degrades to warnings inside the report. A report with zero
// vendors is a valid, non-error outcome.
func (p *Processor) Process(ctx context.Context, req Request) (*vendor.Report, error) {
	prs, err := parser.ForFile(req.Filename, p.deps)
	if err != nil {
		return nil, err
	}

	doc, err := prs.Extract(ctx, bytes.NewReader(req.Data), req.Filename)
	if err != nil {
		return nil, err
	}

	switch {
	case len(doc.Records) > 0:
		return p.reportFromPrefilled(doc.Records), nil
	case doc.Rows != nil:
		return p.reportFromRows(doc.Rows), nil
	default:
		return p.reportFromText(ctx, doc, req)
	}
}

// reportFromPrefilled handles records the AI vision service pre-extracted,
// which skip segmentation and entity extraction entirely.
func (p *Processor) reportFromPrefilled(records []vendor.Record) *vendor.Report {
	report := &vendor.Report{Warnings: []string{}}
	report.Stats.BlocksFound = len(records)

	var confidences []float64
	var kept []vendor.Record
	for _, rec := range records {
		conf := entity.Score(rec.Name, rec.Phone, rec.Email, rec.Address, rec.SourceText)
		confidences = append(confidences, conf)
		if conf < lowConfidenceThreshold {
			report.Stats.LowConfidenceCount++
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low confidence (%.2f) for vision-extracted vendor %q", conf, rec.Name))
		}
		if !vendor.MeetsQualityBar(rec) {
			report.Warnings = append(report.Warnings, qualityDropWarning(rec))
			continue
		}
		kept = append(kept, vendor.Normalize(rec, p.log))
	}

	p.finish(report, kept, confidences)
	return report
}

// reportFromRows handles the delimited/tabular path: one data row is one
// vendor candidate, no segmentation.
func (p *Processor) reportFromRows(rows [][]string) *vendor.Report {
	report := &vendor.Report{Warnings: []string{}}
	report.Stats.TotalLines = len(rows)

	records, usedHeader := rowmap.MapRows(rows)
	report.Stats.BlocksFound = len(records)

	conf := rowmap.RowConfidence
	if !usedHeader {
		conf = entity.HeuristicConfidence
		report.Warnings = append(report.Warnings,
			"no recognizable header row; applied heuristic extraction per row")
	}

	var confidences []float64
	var kept []vendor.Record
	for _, rec := range records {
		confidences = append(confidences, conf)
		if conf < lowConfidenceThreshold {
			report.Stats.LowConfidenceCount++
		}
		if !vendor.MeetsQualityBar(rec) {
			report.Warnings = append(report.Warnings, qualityDropWarning(rec))
			continue
		}
		kept = append(kept, vendor.Normalize(rec, p.log))
	}

	p.finish(report, kept, confidences)
	return report
}

// reportFromText handles free-text documents: segmentation, per-block
// strategy chain, fallback enhancement, filtering and dedup.
func (p *Processor) reportFromText(ctx context.Context, doc *parser.Document, req Request) (*vendor.Report, error) {
	if strings.TrimSpace(doc.FullText) == "" {
		return nil, &parser.ExtractionFailure{
			Format: strings.TrimPrefix(filepath.Ext(req.Filename), "."),
			Stages: []parser.StageResult{{Stage: "text", TextLen: 0}},
		}
	}

	report := &vendor.Report{Warnings: []string{}}
	report.Stats.TotalLines = strings.Count(doc.FullText, "\n") + 1

	blocks, segWarnings := segment.SplitBlocks(doc.FullText, doc.PageTexts, req.ExpectedCount)
	report.Warnings = append(report.Warnings, segWarnings...)
	report.Stats.BlocksFound = len(blocks)

	aiEligible := p.ai != nil && formatWantsAI(req.Filename)

	// A single block on the AI path means segmentation found no structure
	// (OCR dumps, vision raw text). Per-block extraction would yield at most
	// one vendor from it; the chunked batch extractor can recover them all.
	if aiEligible && len(blocks) == 1 {
		if done := p.reportFromBatchAI(ctx, report, blocks[0].Content, req); done {
			return report, nil
		}
	}

	var confidences []float64
	var kept []vendor.Record
	for i, block := range blocks {
		section := block.Content
		rec, conf, strategy := p.extractSection(ctx, section, req.Instructions, aiEligible)
		confidences = append(confidences, conf)

		p.log.Debug("block extracted",
			"block", i, "kind", block.Kind, "lines", fmt.Sprintf("%d-%d", block.StartLine, block.EndLine),
			"strategy", strategy, "confidence", conf, "name", rec.Name)

		if conf < lowConfidenceThreshold {
			report.Stats.LowConfidenceCount++
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low confidence (%.2f) for block %d via %s", conf, i+1, strategy))
		}

		rec = entity.Enhance(rec, section)
		if !vendor.MeetsQualityBar(rec) {
			report.Warnings = append(report.Warnings, qualityDropWarning(rec))
			continue
		}
		kept = append(kept, vendor.Normalize(rec, p.log))
	}

	p.finish(report, kept, confidences)
	return report, nil
}

// reportFromBatchAI sends one unsegmentable text through the chunked batch
// extractor, which may return several vendors. Records from completed chunks
// are kept even when a later chunk fails; a total failure returns false and
// the caller degrades to per-block extraction.
func (p *Processor) reportFromBatchAI(ctx context.Context, report *vendor.Report, text string, req Request) bool {
	records, err := p.extractTextWithRetry(ctx, text, req.Instructions)
	if err != nil && len(records) == 0 {
		p.log.Warn("ai batch extraction failed, using per-block extraction", "error", err)
		return false
	}
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"batch extraction incomplete, keeping %d vendors from completed chunks: %s", len(records), err))
	}
	report.Stats.BlocksFound = len(records)

	var confidences []float64
	var kept []vendor.Record
	for _, rec := range records {
		source := rec.SourceText
		if source == "" {
			source = text
		}
		conf := entity.Score(rec.Name, rec.Phone, rec.Email, rec.Address, source)
		confidences = append(confidences, conf)
		if conf < lowConfidenceThreshold {
			report.Stats.LowConfidenceCount++
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low confidence (%.2f) for batch-extracted vendor %q", conf, rec.Name))
		}
		// Scavenging the whole document into one record would smear other
		// vendors' contact data across it; enhance only from per-record source.
		if rec.SourceText != "" || len(records) == 1 {
			rec = entity.Enhance(rec, source)
		}
		if !vendor.MeetsQualityBar(rec) {
			report.Warnings = append(report.Warnings, qualityDropWarning(rec))
			continue
		}
		kept = append(kept, vendor.Normalize(rec, p.log))
	}

	p.finish(report, kept, confidences)
	return true
}

// extractSection runs the ordered strategy chain for one block: labeled
// extraction is final when any label matches; otherwise the AI-assisted
// parser when eligible, degrading to the local heuristic at the fixed
// fallback confidence when the service fails; otherwise the heuristic tier.
func (p *Processor) extractSection(ctx context.Context, section, instructions string, aiEligible bool) (vendor.Record, float64, string) {
	if c, matched := entity.ExtractLabeled(section); matched {
		return vendor.FromClassification(c), entity.LabeledConfidence, "labeled"
	}

	if aiEligible {
		rec, err := p.extractWithRetry(ctx, section, instructions)
		if err == nil {
			conf := entity.Score(rec.Name, rec.Phone, rec.Email, rec.Address, section)
			return rec, conf, "ai"
		}
		p.log.Warn("ai extraction failed, using heuristic fallback", "error", err)
		c := entity.ExtractHeuristic(section)
		return vendor.FromClassification(c), entity.FallbackConfidence, "ai_fallback"
	}

	c := entity.ExtractHeuristic(section)
	return vendor.FromClassification(c), entity.HeuristicConfidence, "heuristic"
}

func (p *Processor) extractWithRetry(ctx context.Context, section, instructions string) (vendor.Record, error) {
	var rec vendor.Record
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		rec, err = p.ai.ExtractBlock(ctx, section, instructions)
		if err == nil || !IsRetryable(err) {
			return rec, err
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return vendor.Record{}, ctx.Err()
		}
	}
	return rec, err
}

// extractTextWithRetry retries transient batch failures. A failure that
// arrives with partial records is returned as-is: retrying would re-extract
// the completed chunks and duplicate their vendors.
func (p *Processor) extractTextWithRetry(ctx context.Context, text, instructions string) ([]vendor.Record, error) {
	var recs []vendor.Record
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		recs, err = p.ai.ExtractText(ctx, text, instructions)
		if err == nil || !IsRetryable(err) || len(recs) > 0 {
			return recs, err
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return recs, ctx.Err()
		}
	}
	return recs, err
}

// finish applies deduplication and closes out the report.
func (p *Processor) finish(report *vendor.Report, kept []vendor.Record, confidences []float64) {
	deduped, dropped := vendor.Dedupe(kept)
	if dropped > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("dropped %d duplicate vendor entries", dropped))
	}
	if deduped == nil {
		deduped = []vendor.Record{}
	}
	report.Vendors = deduped
	report.Stats.VendorsExtracted = len(deduped)
	report.Confidence = vendor.MeanConfidence(confidences)
}

func qualityDropWarning(rec vendor.Record) string {
	label := strings.TrimSpace(rec.Name)
	if label == "" {
		label = "(unnamed)"
	}
	return fmt.Sprintf("dropped candidate %q: needs a name of 3+ characters and at least one of phone/email/address", label)
}

// formatWantsAI reports whether a format goes through the AI-assisted block
// parser. Word-processor documents and scanned formats carry the messiest
// text, where the labeled and heuristic tiers under-extract.
func formatWantsAI(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx", ".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}
