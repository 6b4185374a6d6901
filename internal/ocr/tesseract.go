// Package ocr wraps the external tesseract and pdftoppm binaries behind
// small interfaces so the extraction pipeline can run against fakes.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Tesseract runs the tesseract CLI on raster images. OCR is CPU-bound, so a
// semaphore caps how many processes run at once regardless of how many
// documents are in flight.
type Tesseract struct {
	bin      string
	pdftoppm string
	runner   Runner
	log      *slog.Logger
	sem      chan struct{}
}

// Options configures binary paths; empty values resolve from PATH.
type Options struct {
	TesseractPath string
	PdftoppmPath  string
	MaxProcs      int
	Runner        Runner // test hook; nil uses os/exec
}

// New looks up the tesseract and pdftoppm binaries. A missing tesseract is
// an error; a missing pdftoppm only disables PDF page rendering.
func New(opts Options, log *slog.Logger) (*Tesseract, error) {
	bin := opts.TesseractPath
	if bin == "" {
		resolved, err := exec.LookPath("tesseract")
		if err != nil {
			return nil, fmt.Errorf("tesseract binary not found: %w", err)
		}
		bin = resolved
	}
	ppm := opts.PdftoppmPath
	if ppm == "" {
		ppm, _ = exec.LookPath("pdftoppm")
	}

	procs := opts.MaxProcs
	if procs <= 0 {
		procs = runtime.NumCPU()
	}
	runner := opts.Runner
	if runner == nil {
		runner = execRunner{log: log}
	}

	return &Tesseract{
		bin:      bin,
		pdftoppm: ppm,
		runner:   runner,
		log:      log,
		sem:      make(chan struct{}, procs),
	}, nil
}

// ImageText runs OCR on one raster image and returns best-effort text.
func (t *Tesseract) ImageText(ctx context.Context, image []byte) (string, error) {
	select {
	case t.sem <- struct{}{}:
		defer func() { <-t.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	tmp, err := os.CreateTemp("", "vendex-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	tmp.Close()

	out, stderr, err := t.runner.Run(ctx, t.bin, tmpPath, "stdout", "-l", "eng", "--psm", "6")
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(stderr), 512))
	}
	return strings.TrimSpace(string(out)), nil
}

// RenderPage rasterizes one page of a PDF to PNG using pdftoppm.
func (t *Tesseract) RenderPage(ctx context.Context, pdfPath string, page int) ([]byte, error) {
	if t.pdftoppm == "" {
		return nil, fmt.Errorf("pdftoppm binary not found (install poppler-utils)")
	}

	tmpDir, err := os.MkdirTemp("", "vendex-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	p := strconv.Itoa(page)
	_, stderr, err := t.runner.Run(ctx, t.pdftoppm, "-png", "-r", "200", "-f", p, "-l", p, pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, truncate(string(stderr), 512))
	}

	matches, err := filepath.Glob(prefix + "*")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	return os.ReadFile(matches[0])
}
