package extract

import "strings"

// splitBudget cuts text into chunks of at most maxChars, preferring
// paragraph boundaries, then line boundaries, then a hard cut. Chunks carry
// no overlap: each vendor entry should land wholly inside one chunk, and the
// downstream deduplicator absorbs any entry that straddles a cut.
func splitBudget(text string, maxChars int) []string {
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		if len(para) > maxChars {
			flush()
			for _, piece := range splitLines(para, maxChars) {
				chunks = append(chunks, piece)
			}
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(para)+2 > maxChars {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()

	return chunks
}

func splitLines(text string, maxChars int) []string {
	var chunks []string
	var buf strings.Builder

	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxChars {
			flush()
			chunks = append(chunks, line[:maxChars])
			line = line[maxChars:]
		}
		if buf.Len() > 0 && buf.Len()+len(line)+1 > maxChars {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
	}
	flush()

	return chunks
}
