package ventas

import (
	"fmt"
	"math"
	"strconv"
)

// CellKind tags the value held by a Cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single spreadsheet value. The zero value is an empty cell.
type Cell struct {
	Kind CellKind
	text string
	num  float64
}

// TextCell returns a text cell, or an empty cell for ""
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, text: s}
}

// NumberCell returns a numeric cell
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, num: f}
}

// CellFromValue converts a raw value as returned by the Sheets API
// ([]interface{} rows) into a Cell.
func CellFromValue(v interface{}) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return val
	case string:
		return TextCell(val)
	case float64:
		return NumberCell(val)
	case float32:
		return NumberCell(float64(val))
	case int:
		return NumberCell(float64(val))
	case int64:
		return NumberCell(float64(val))
	case bool:
		return TextCell(strconv.FormatBool(val))
	default:
		return TextCell(fmt.Sprintf("%v", val))
	}
}

// IsEmpty reports whether the cell holds no value
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Text returns the cell as a string. Numbers are formatted without
// exponent or trailing zeros; empty cells return "".
func (c Cell) Text() string {
	switch c.Kind {
	case CellText:
		return c.text
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Number returns the numeric value of a number cell. Text and empty cells
// report false; use ParseAmount for locale-aware text parsing.
func (c Cell) Number() (float64, bool) {
	if c.Kind != CellNumber || math.IsNaN(c.num) || math.IsInf(c.num, 0) {
		return 0, false
	}
	return c.num, true
}

// Row is one record of a month sheet, indexed by column position
type Row []Cell

// NewRow converts a raw API row into a Row
func NewRow(values []interface{}) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = CellFromValue(v)
	}
	return row
}

// TextRow builds a Row from plain strings (workbook rows, test fixtures)
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = TextCell(v)
	}
	return row
}

// At returns the cell at position i, or an empty cell when i is out of range
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Texts returns every cell rendered as text
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Text()
	}
	return out
}
