package ventas

import "errors"

var (
	// ErrNoData means the source returned no header or no data rows for a month
	ErrNoData = errors.New("month has no data rows")

	// ErrMissingStatusColumn means the header row has no "estado" column
	ErrMissingStatusColumn = errors.New("status column not found")

	// ErrEmptyCell is returned by ParseAmount for blank cells
	ErrEmptyCell = errors.New("empty cell")

	// ErrUnparseableAmount is returned by ParseAmount when the cell is not a number
	ErrUnparseableAmount = errors.New("unparseable amount")

	// ErrNilSource is the only error Build reports for the whole dataset
	ErrNilSource = errors.New("ventas: source is required")
)
