package ventas

import (
	"context"
	"sync"
)

// sheetWidth covers every column up to X
const sheetWidth = 24

// sale is one data row of a synthetic month sheet
type sale struct {
	status      string
	coordinator string
	executive   string
	nap         string
	modality    string
	product     string
}

func approved(coordinator, executive, nap, modality, product string) sale {
	return sale{
		status:      ApprovalMarker,
		coordinator: coordinator,
		executive:   executive,
		nap:         nap,
		modality:    modality,
		product:     product,
	}
}

func headerRow() Row {
	cells := make([]string, sheetWidth)
	cells[0] = "Fecha"
	cells[1] = "ESTADO SOLICITUD"
	cells[2] = "Nombre Coordinador"
	cells[3] = "Nombre Ejecutivo"
	cells[18] = "NAP"
	cells[21] = "Modalidad"
	cells[23] = "Producto"
	return TextRow(cells...)
}

func (s sale) row() Row {
	cells := make([]string, sheetWidth)
	cells[1] = s.status
	cells[2] = s.coordinator
	cells[3] = s.executive
	cells[18] = s.nap
	cells[21] = s.modality
	cells[23] = s.product
	return TextRow(cells...)
}

func sheet(sales ...sale) []Row {
	rows := []Row{headerRow()}
	for _, s := range sales {
		rows = append(rows, s.row())
	}
	return rows
}

// fakeSource serves canned rows per month name
type fakeSource struct {
	mu     sync.Mutex
	rows   map[string][]Row
	errs   map[string]error
	panics map[string]bool
	block  map[string]bool
	calls  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows:   make(map[string][]Row),
		errs:   make(map[string]error),
		panics: make(map[string]bool),
		block:  make(map[string]bool),
	}
}

func (f *fakeSource) FetchMonthRows(ctx context.Context, month string) ([]Row, error) {
	f.mu.Lock()
	f.calls = append(f.calls, month)
	rows, err := f.rows[month], f.errs[month]
	shouldPanic, shouldBlock := f.panics[month], f.block[month]
	f.mu.Unlock()

	if shouldPanic {
		panic("sheet exploded")
	}
	if shouldBlock {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return rows, err
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
