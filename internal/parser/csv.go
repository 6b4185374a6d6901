package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// DelimitedParser handles CSV and TSV files. Each data row is one vendor
// candidate, so the result carries rows instead of free text and skips the
// segmentation step entirely.
type DelimitedParser struct {
	Comma rune
}

func (p *DelimitedParser) Extract(_ context.Context, r io.Reader, _ string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited file: %w", err)
	}

	return &Document{Rows: rows}, nil
}
