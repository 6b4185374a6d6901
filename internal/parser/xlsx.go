package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXParser handles spreadsheet workbooks. Rows come from the first sheet
// that has any content; like the delimited path, each data row is one
// vendor candidate.
type XLSXParser struct{}

func (p *XLSXParser) Extract(_ context.Context, r io.Reader, _ string) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) > 0 {
			return &Document{Rows: rows}, nil
		}
	}

	return &Document{}, nil
}
