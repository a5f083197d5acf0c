// Package ventas turns monthly sales sheets into aggregated dashboard data.
//
// Rows come from a Source one month at a time. Each month is parsed and
// aggregated independently, the results are merged into a Dataset, and the
// view functions (Summary, Trend, Coordinators, Products, TopExecutives)
// reshape that Dataset without touching the raw rows again.
package ventas

// Month describes one of the fixed months the dashboard reports on.
type Month struct {
	Name  string // sheet tab name, e.g. "Enero"
	Key   string // lowercase dataset key, e.g. "enero"
	Label string // short chart label, e.g. "Ene"
}

// Months is the fixed, ordered set of months requested from the source.
// Every view emits values in this order.
var Months = []Month{
	{Name: "Enero", Key: "enero", Label: "Ene"},
	{Name: "Febrero", Key: "febrero", Label: "Feb"},
	{Name: "Marzo", Key: "marzo", Label: "Mar"},
	{Name: "Abril", Key: "abril", Label: "Abr"},
	{Name: "Mayo", Key: "mayo", Label: "May"},
	{Name: "Junio", Key: "junio", Label: "Jun"},
	{Name: "Julio", Key: "julio", Label: "Jul"},
}

// MonthLabels returns the short labels in calendar order
func MonthLabels() []string {
	labels := make([]string, len(Months))
	for i, m := range Months {
		labels[i] = m.Label
	}
	return labels
}
