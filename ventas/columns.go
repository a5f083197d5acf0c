package ventas

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// NotFound is returned by FindColumn when no header matches
const NotFound = -1

// Header search terms for the columns located by name
const (
	termStatus      = "estado"
	termCoordinator = "nombre coordinador"
	termExecutive   = "nombre ejecutivo"
)

// Default sheet letters of the columns located by position
const (
	DefaultNAPColumn      = "S"
	DefaultModalityColumn = "V"
	DefaultProductColumn  = "X"
)

// FindColumn returns the position of the first header that contains term,
// ignoring case, or NotFound.
func FindColumn(headers []string, term string) int {
	fold := cases.Fold()
	needle := fold.String(term)
	for i, h := range headers {
		if h == "" {
			continue
		}
		if strings.Contains(fold.String(h), needle) {
			return i
		}
	}
	return NotFound
}

// Layout holds the 0-based positions of the columns that are not looked up
// by header name. The sheet layout fixes them at S, V and X.
type Layout struct {
	NAP      int
	Modality int
	Product  int
}

// DefaultLayout returns the S/V/X layout of the sales sheet
func DefaultLayout() Layout {
	return Layout{NAP: 18, Modality: 21, Product: 23}
}

// LayoutFromColumns builds a Layout from sheet column letters such as "S"
func LayoutFromColumns(nap, modality, product string) (Layout, error) {
	var positions [3]int
	for i, name := range []string{nap, modality, product} {
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(name))
		if err != nil {
			return Layout{}, fmt.Errorf("invalid column %q: %w", name, err)
		}
		positions[i] = n - 1
	}
	return Layout{NAP: positions[0], Modality: positions[1], Product: positions[2]}, nil
}

// ColumnIndex maps the fields the aggregator reads to positions in a Row.
// It is built once per month from the header row.
type ColumnIndex struct {
	Status      int
	Coordinator int
	Executive   int
	NAP         int
	Modality    int
	Product     int
}

// NewColumnIndex locates the named columns in header and takes the fixed
// ones from layout.
func NewColumnIndex(header Row, layout Layout) ColumnIndex {
	headers := header.Texts()
	return ColumnIndex{
		Status:      FindColumn(headers, termStatus),
		Coordinator: FindColumn(headers, termCoordinator),
		Executive:   FindColumn(headers, termExecutive),
		NAP:         layout.NAP,
		Modality:    layout.Modality,
		Product:     layout.Product,
	}
}
