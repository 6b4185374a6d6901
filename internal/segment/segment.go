// Package segment splits raw extracted text into candidate per-vendor
// sections, optionally rebalanced toward an expected vendor count.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tilbrook/vendex/internal/vendor"
)

const (
	// Sections at or below this trimmed length are discarded.
	minSectionLen = 5
	// A section must exceed this length to count as non-trivial when
	// deciding whether a split rule succeeded.
	nonTrivialLen = 10

	// Greedy line-grouping thresholds.
	shortLineLen   = 100
	shortBufferLen = 300

	// Split points must sit strictly inside this margin from both ends.
	splitMargin = 20
)

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n+`)

// Split carves fullText into candidate vendor sections. Rules are tried in
// order; the first that yields more than one non-trivial section wins:
// blank-line boundaries, then page boundaries, then greedy line grouping.
// When expectedCount > 1 the result is rebalanced toward that count; an
// unreachable count is reported as a warning, never an error.
func Split(fullText string, pageTexts []string, expectedCount int) ([]string, []string) {
	sections := splitBlankLines(fullText)

	if countNonTrivial(sections) <= 1 && len(pageTexts) > 1 {
		sections = pageTexts
	}
	if countNonTrivial(sections) <= 1 {
		sections = groupLines(fullText)
	}

	sections = dropTiny(sections)

	var warnings []string
	if expectedCount > 1 {
		var warn string
		sections, warn = rebalance(sections, expectedCount)
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}
	return sections, warnings
}

// SplitBlocks runs Split and annotates each section with its line span in
// fullText and a coarse kind guess. Line spans are best effort: sections
// produced by splitting inside a line keep the enclosing line number.
func SplitBlocks(fullText string, pageTexts []string, expectedCount int) ([]vendor.Block, []string) {
	sections, warnings := Split(fullText, pageTexts, expectedCount)

	lines := strings.Split(fullText, "\n")
	blocks := make([]vendor.Block, 0, len(sections))
	cursor := 0
	for i, section := range sections {
		count := strings.Count(section, "\n") + 1
		start := cursor
		if idx := findLine(lines, cursor, firstLine(section)); idx >= 0 {
			start = idx
			cursor = idx + count
		}
		blocks = append(blocks, vendor.Block{
			Content:   section,
			StartLine: start + 1,
			EndLine:   start + count,
			Kind:      classifyKind(section, i, len(sections)),
		})
	}
	return blocks, warnings
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func findLine(lines []string, from int, want string) int {
	for i := from; i < len(lines); i++ {
		if lines[i] == want {
			return i
		}
	}
	return -1
}

var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s`)

// classifyKind guesses what a section describes. Sections dominated by
// bullet or numbered lines are product lists; a short contact-free section
// at either end of the document is a header or footer; everything else is
// treated as a vendor candidate.
func classifyKind(section string, idx, total int) vendor.BlockKind {
	lines := nonBlankLines(section)
	if len(lines) >= 3 {
		bullets := 0
		for _, l := range lines {
			if bulletRe.MatchString(l) {
				bullets++
			}
		}
		if bullets*2 > len(lines) {
			return vendor.KindProductList
		}
	}
	if len(lines) <= 2 && !hasContactSignal(section) {
		if idx == 0 && total > 1 {
			return vendor.KindHeader
		}
		if idx == total-1 && total > 1 {
			return vendor.KindFooter
		}
	}
	return vendor.KindVendor
}

func nonBlankLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func hasContactSignal(s string) bool {
	return strings.ContainsAny(s, "@0123456789")
}

func splitBlankLines(text string) []string {
	parts := blankLineRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// groupLines greedily packs consecutive short lines into a running buffer:
// while a line is short and the buffer is still short, the line is appended;
// otherwise the buffer is flushed as a section.
func groupLines(text string) []string {
	var sections []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			sections = append(sections, buf.String())
			buf.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < shortLineLen && buf.Len() < shortBufferLen {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
		} else {
			flush()
			buf.WriteString(line)
		}
	}
	flush()
	return sections
}

func countNonTrivial(sections []string) int {
	n := 0
	for _, s := range sections {
		if len(strings.TrimSpace(s)) > nonTrivialLen {
			n++
		}
	}
	return n
}

func dropTiny(sections []string) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if len(strings.TrimSpace(s)) > minSectionLen {
			out = append(out, s)
		}
	}
	return out
}

// rebalance merges or splits sections toward the expected count. Merging
// always terminates (section count strictly decreases); splitting stops as
// soon as the longest section has no qualifying split point, which is the
// hard guard against looping on unsplittable input.
func rebalance(sections []string, expected int) ([]string, string) {
	for len(sections) > expected && len(sections) > 1 {
		sections = mergeSmallestAdjacent(sections)
	}

	for len(sections) < expected {
		longest := longestIndex(sections)
		if longest < 0 {
			break
		}
		left, right, ok := splitSection(sections[longest])
		if !ok {
			break
		}
		sections = append(sections[:longest],
			append([]string{left, right}, sections[longest+1:]...)...)
	}

	if len(sections) != expected {
		return sections, fmt.Sprintf(
			"expected %d vendor sections but segmentation produced %d",
			expected, len(sections))
	}
	return sections, ""
}

// mergeSmallestAdjacent joins the adjacent pair with the smallest combined
// length, taking the first such pair in a left-to-right scan on ties.
func mergeSmallestAdjacent(sections []string) []string {
	best := 0
	bestLen := -1
	for i := 0; i+1 < len(sections); i++ {
		l := len(sections[i]) + len(sections[i+1])
		if bestLen < 0 || l < bestLen {
			best = i
			bestLen = l
		}
	}
	merged := sections[best] + "\n" + sections[best+1]
	out := make([]string, 0, len(sections)-1)
	out = append(out, sections[:best]...)
	out = append(out, merged)
	out = append(out, sections[best+2:]...)
	return out
}

func longestIndex(sections []string) int {
	idx := -1
	max := 0
	for i, s := range sections {
		if len(s) > max {
			max = len(s)
			idx = i
		}
	}
	return idx
}

// splitSection finds the first qualifying split point, scanning left to
// right over ". ", "; ", " - " and newline, restricted to positions strictly
// between splitMargin and len-splitMargin.
func splitSection(s string) (string, string, bool) {
	if len(s) <= 2*splitMargin {
		return "", "", false
	}
	window := s[splitMargin : len(s)-splitMargin]

	bestPos := -1
	bestSep := 0
	for _, sep := range []string{". ", "; ", " - ", "\n"} {
		if i := strings.Index(window, sep); i >= 0 {
			pos := splitMargin + i
			if bestPos < 0 || pos < bestPos {
				bestPos = pos
				bestSep = len(sep)
			}
		}
	}
	if bestPos < 0 {
		return "", "", false
	}
	left := strings.TrimSpace(s[:bestPos+bestSep])
	right := strings.TrimSpace(s[bestPos+bestSep:])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}
