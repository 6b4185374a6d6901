package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.gotName = name
	f.gotArgs = args
	// RenderPage expects pdftoppm to write page images next to the prefix.
	if f.err == nil && name == "pdftoppm" && len(args) >= 8 {
		prefix := args[len(args)-1]
		if werr := os.WriteFile(prefix+"-1.png", f.stdout, 0o644); werr != nil {
			return nil, nil, werr
		}
		return nil, nil, nil
	}
	return f.stdout, f.stderr, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, runner Runner) *Tesseract {
	t.Helper()
	eng, err := New(Options{
		TesseractPath: "tesseract",
		PdftoppmPath:  "pdftoppm",
		MaxProcs:      1,
		Runner:        runner,
	}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestImageText(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("Acme Supply Co\n123 Main St\n\n")}
	eng := newTestEngine(t, runner)

	text, err := eng.ImageText(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "Acme Supply Co\n123 Main St" {
		t.Errorf("text = %q", text)
	}
	if runner.gotName != "tesseract" {
		t.Errorf("command = %q", runner.gotName)
	}
	want := []string{"stdout", "-l", "eng", "--psm", "6"}
	if len(runner.gotArgs) != 6 {
		t.Fatalf("args = %v", runner.gotArgs)
	}
	for i, w := range want {
		if runner.gotArgs[i+1] != w {
			t.Errorf("arg %d = %q, want %q", i+1, runner.gotArgs[i+1], w)
		}
	}
}

func TestImageText_CommandFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: []byte("could not read image")}
	eng := newTestEngine(t, runner)

	_, err := eng.ImageText(context.Background(), []byte("png-bytes"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "could not read image") {
		t.Errorf("stderr not surfaced: %v", err)
	}
}

func TestImageText_CancelledContext(t *testing.T) {
	eng := newTestEngine(t, &fakeRunner{})
	// Occupy the single OCR slot so the call blocks on the semaphore.
	eng.sem <- struct{}{}
	defer func() { <-eng.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.ImageText(ctx, []byte("png-bytes"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRenderPage(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("fake-png-bytes")}
	eng := newTestEngine(t, runner)

	image, err := eng.RenderPage(context.Background(), "/tmp/input.pdf", 1)
	if err != nil {
		t.Fatal(err)
	}
	if string(image) != "fake-png-bytes" {
		t.Errorf("image = %q", image)
	}
	if runner.gotName != "pdftoppm" {
		t.Errorf("command = %q", runner.gotName)
	}
	// Page selection flags must pin first and last page to the same page.
	joined := strings.Join(runner.gotArgs, " ")
	if !strings.Contains(joined, "-f 1 -l 1") {
		t.Errorf("args = %q", joined)
	}
}

func TestRenderPage_MissingPdftoppm(t *testing.T) {
	eng := newTestEngine(t, &fakeRunner{})
	eng.pdftoppm = ""

	if _, err := eng.RenderPage(context.Background(), "/tmp/input.pdf", 1); err == nil {
		t.Error("expected error without pdftoppm")
	}
}
