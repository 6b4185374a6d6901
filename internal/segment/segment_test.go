package segment

import (
	"strings"
	"testing"

	"github.com/tilbrook/vendex/internal/vendor"
)

func TestSplit_BlankLineBoundaries(t *testing.T) {
	text := "Acme Supply Co\n123 Main St\n\nBravo Industrial LLC\n456 Oak Ave\n\n\nCharlie Services Inc\n789 Pine Rd"

	sections, warnings := Split(text, nil, 0)

	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %q", len(sections), sections)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if !strings.Contains(sections[0], "Acme") {
		t.Errorf("section 0 = %q, want Acme block", sections[0])
	}
	if !strings.Contains(sections[2], "Charlie") {
		t.Errorf("section 2 = %q, want Charlie block", sections[2])
	}
}

func TestSplit_FallsBackToPageBoundaries(t *testing.T) {
	// No blank lines anywhere, but two pages of text.
	pages := []string{
		"Acme Supply Co\n123 Main St\nSpringfield IL",
		"Bravo Industrial LLC\n456 Oak Ave\nShelbyville IL",
	}
	full := pages[0] + "\n" + pages[1]

	sections, _ := Split(full, pages, 0)

	if len(sections) != 2 {
		t.Fatalf("expected 2 page sections, got %d: %q", len(sections), sections)
	}
	if !strings.Contains(sections[1], "Bravo") {
		t.Errorf("section 1 = %q, want page 2 content", sections[1])
	}
}

func TestSplit_LineGroupingWhenSinglePage(t *testing.T) {
	// One long run of short lines, no blank lines, single page. The greedy
	// grouper should flush whenever the buffer passes 300 chars.
	var lines []string
	for range 20 {
		lines = append(lines, "Vendor line with some contact details 555-123-4567")
	}
	full := strings.Join(lines, "\n")

	sections, _ := Split(full, nil, 0)

	if len(sections) < 2 {
		t.Fatalf("expected line grouping to produce multiple sections, got %d", len(sections))
	}
	for i, s := range sections[:len(sections)-1] {
		if len(s) < shortBufferLen {
			t.Errorf("section %d flushed early at %d chars", i, len(s))
		}
	}
}

func TestSplit_DropsTinySections(t *testing.T) {
	text := "Acme Supply Company\n\nok\n\nBravo Industrial LLC"

	sections, _ := Split(text, nil, 0)

	if len(sections) != 2 {
		t.Fatalf("expected tiny section dropped, got %d: %q", len(sections), sections)
	}
	for _, s := range sections {
		if strings.TrimSpace(s) == "ok" {
			t.Errorf("tiny section %q survived", s)
		}
	}
}

func TestSplit_MergesDownToExpectedCount(t *testing.T) {
	text := "Acme Supply Company contact\n\nshort one\n\nshort two\n\nBravo Industrial LLC contact"

	sections, warnings := Split(text, nil, 2)

	if len(sections) != 2 {
		t.Fatalf("expected merge down to 2, got %d: %q", len(sections), sections)
	}
	if len(warnings) != 0 {
		t.Errorf("count reached, want no warnings, got %v", warnings)
	}
}

func TestSplit_SplitsUpToExpectedCount(t *testing.T) {
	text := "Acme Supply Company is at 123 Main Street. Bravo Industrial LLC is at 456 Oak Avenue downtown."

	sections, warnings := Split(text, nil, 2)

	if len(sections) != 2 {
		t.Fatalf("expected split up to 2, got %d: %q", len(sections), sections)
	}
	if len(warnings) != 0 {
		t.Errorf("count reached, want no warnings, got %v", warnings)
	}
	if !strings.Contains(sections[0], "Acme") || !strings.Contains(sections[1], "Bravo") {
		t.Errorf("unexpected split: %q", sections)
	}
}

func TestSplit_UnreachableCountWarnsAndStops(t *testing.T) {
	// A single unsplittable blob: no sentence boundary inside the margins.
	text := "AcmeSupplyCompanyWithNoSeparatorsAnywhereInTheMiddleOfThisBlob"

	sections, warnings := Split(text, nil, 5)

	if len(sections) != 1 {
		t.Fatalf("expected hard stop at 1 section, got %d", len(sections))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", warnings)
	}
	want := "expected 5 vendor sections but segmentation produced 1"
	if warnings[0] != want {
		t.Errorf("warning = %q, want %q", warnings[0], want)
	}
}

func TestSplitSection_RespectsMargins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"too short entirely", "a. b", false},
		{"separator only inside margin", strings.Repeat("x", 19) + ". " + strings.Repeat("y", 40), false},
		{"separator in window", strings.Repeat("x", 25) + ". " + strings.Repeat("y", 25), true},
		{"newline in window", strings.Repeat("x", 25) + "\n" + strings.Repeat("y", 25), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right, ok := splitSection(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (left == "" || right == "") {
				t.Errorf("split produced empty half: %q | %q", left, right)
			}
		})
	}
}

func TestMergeSmallestAdjacent_FirstPairWinsOnTie(t *testing.T) {
	sections := []string{"aa", "bb", "cc", "dd"}

	merged := mergeSmallestAdjacent(sections)

	if len(merged) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(merged))
	}
	if merged[0] != "aa\nbb" {
		t.Errorf("merged[0] = %q, want first tied pair joined", merged[0])
	}
}

func TestSplitBlocks_SpansAndKinds(t *testing.T) {
	text := "Vendor Directory\n" +
		"\n" +
		"Acme Supply Co\nPhone: 555-123-4567\n" +
		"\n" +
		"- hammers\n- nails\n- ladders\n" +
		"\n" +
		"End of listing"

	blocks, warnings := SplitBlocks(text, nil, 0)

	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %+v", len(blocks), blocks)
	}

	tests := []struct {
		start, end int
		kind       vendor.BlockKind
	}{
		{1, 1, vendor.KindHeader},
		{3, 4, vendor.KindVendor},
		{6, 8, vendor.KindProductList},
		{10, 10, vendor.KindFooter},
	}
	for i, want := range tests {
		b := blocks[i]
		if b.StartLine != want.start || b.EndLine != want.end {
			t.Errorf("block %d lines = %d-%d, want %d-%d", i, b.StartLine, b.EndLine, want.start, want.end)
		}
		if b.Kind != want.kind {
			t.Errorf("block %d kind = %q, want %q", i, b.Kind, want.kind)
		}
	}
}

func TestSplitBlocks_ContactBlockIsNeverHeader(t *testing.T) {
	text := "Acme Supply Co 555-123-4567\n\nBravo Industrial LLC\nsales@bravo.example.com"

	blocks, _ := SplitBlocks(text, nil, 0)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.Kind != vendor.KindVendor {
			t.Errorf("block %d kind = %q, want vendor", i, b.Kind)
		}
	}
}
