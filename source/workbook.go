package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/servicing/ventas/ventas"
)

// Workbook reads month tabs from a local .xlsx file. The file is opened on
// every fetch so edits show up in the next build.
type Workbook struct {
	path string
}

// NewWorkbook creates a source reading the workbook at path
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// FetchMonthRows returns the rows of the month tab, cut at column AC.
// A missing tab yields no rows.
func (w *Workbook) FetchMonthRows(ctx context.Context, month string) ([]ventas.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(month)
	if err != nil {
		return nil, fmt.Errorf("looking up sheet %s: %w", month, err)
	}
	if idx < 0 {
		return nil, nil
	}

	width, err := excelize.ColumnNameToNumber(LastColumn)
	if err != nil {
		return nil, err
	}

	raw, err := f.GetRows(month, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", month, err)
	}

	rows := make([]ventas.Row, 0, len(raw))
	for _, r := range raw {
		if len(r) > width {
			r = r[:width]
		}
		rows = append(rows, ventas.TextRow(r...))
	}
	return rows, nil
}
