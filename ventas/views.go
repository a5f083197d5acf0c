package ventas

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopExecutives is the ranking size used when no limit is given
	DefaultTopExecutives = 15

	// TopProducts is the size of the product ranking
	TopProducts = 8

	// Unassigned is reported for executives with no known coordinator
	Unassigned = "Sin Asignar"
)

// Summary aggregates the totals of every month with data
type Summary struct {
	TotalSales      int       `json:"totalVentas"`
	TotalNap        float64   `json:"totalNap"`
	AverageSales    float64   `json:"promedioMensualVentas"`
	AverageNap      float64   `json:"promedioMensualNap"`
	MonthsProcessed int       `json:"mesesProcesados"`
	LastUpdated     time.Time `json:"ultimaActualizacion"`
}

// Trend is the month by month series of sales and NAP
type Trend struct {
	Labels []string  `json:"labels"`
	Sales  []int     `json:"ventas"`
	Nap    []float64 `json:"nap"`
}

// CoordinatorBreakdown lists the monthly sales of every coordinator
type CoordinatorBreakdown struct {
	Labels       []string         `json:"labels"`
	Coordinators map[string][]int `json:"coordinadores"`
}

// ProductShare is one entry of the product ranking
type ProductShare struct {
	Name       string  `json:"nombre"`
	Sales      int     `json:"ventas"`
	Percentage float64 `json:"porcentaje"`
}

// ProductRanking holds the best selling products
type ProductRanking struct {
	Products []ProductShare `json:"productos"`
}

// ExecutiveRank is one entry of the executive ranking
type ExecutiveRank struct {
	Position    int     `json:"posicion"`
	Name        string  `json:"nombre"`
	Coordinator string  `json:"coordinador"`
	Monthly     []int   `json:"ventasPorMes"`
	Total       int     `json:"total"`
	Average     float64 `json:"promedio"`
}

// ExecutiveRanking holds the top executives by total sales
type ExecutiveRanking struct {
	Labels     []string        `json:"labels"`
	Executives []ExecutiveRank `json:"ejecutivos"`
}

// round rounds half to even
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}

// ratio returns num/den rounded, or 0 when den is zero
func ratio(num decimal.Decimal, den int, places int32) float64 {
	if den == 0 {
		return 0
	}
	return num.Div(decimal.NewFromInt(int64(den))).RoundBank(places).InexactFloat64()
}

// Totals returns the per-month totals with NAP rounded to whole units
func Totals(d *Dataset) map[string]MonthTotals {
	out := make(map[string]MonthTotals, len(d.Totals))
	for key, t := range d.Totals {
		out[key] = MonthTotals{Sales: t.Sales, Nap: round(t.Nap, 0)}
	}
	return out
}

// NewSummary sums sales and NAP over the months present in d. With no
// months every figure is zero.
func NewSummary(d *Dataset) Summary {
	months := d.MonthCount()
	sales := 0
	nap := decimal.Zero
	for _, t := range d.Totals {
		sales += t.Sales
		nap = nap.Add(decimal.NewFromFloat(t.Nap))
	}

	return Summary{
		TotalSales:      sales,
		TotalNap:        nap.RoundBank(0).InexactFloat64(),
		AverageSales:    ratio(decimal.NewFromInt(int64(sales)), months, 1),
		AverageNap:      ratio(nap, months, 0),
		MonthsProcessed: months,
		LastUpdated:     d.BuiltAt,
	}
}

// NewTrend returns sales and NAP for each month in calendar order, with
// zeros for months without data.
func NewTrend(d *Dataset) Trend {
	trend := Trend{
		Labels: MonthLabels(),
		Sales:  make([]int, len(Months)),
		Nap:    make([]float64, len(Months)),
	}
	for i, m := range Months {
		t := d.Totals[m.Key]
		trend.Sales[i] = t.Sales
		trend.Nap[i] = round(t.Nap, 0)
	}
	return trend
}

// NewCoordinatorBreakdown returns, for every coordinator seen in any month,
// its sales per month in calendar order.
func NewCoordinatorBreakdown(d *Dataset) CoordinatorBreakdown {
	out := CoordinatorBreakdown{
		Labels:       MonthLabels(),
		Coordinators: make(map[string][]int),
	}
	for _, counts := range d.Coordinators {
		for name := range counts {
			if _, seen := out.Coordinators[name]; seen {
				continue
			}
			out.Coordinators[name] = monthlyCounts(d.Coordinators, name)
		}
	}
	return out
}

// NewProductRanking sums product sales across months and returns the top
// TopProducts with their share of all product sales. Equal counts are
// ordered by name.
func NewProductRanking(d *Dataset) ProductRanking {
	totals := make(map[string]int)
	grand := 0
	for _, counts := range d.Products {
		for name, n := range counts {
			totals[name] += n
			grand += n
		}
	}

	shares := make([]ProductShare, 0, len(totals))
	for name, n := range totals {
		shares = append(shares, ProductShare{Name: name, Sales: n})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Sales != shares[j].Sales {
			return shares[i].Sales > shares[j].Sales
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > TopProducts {
		shares = shares[:TopProducts]
	}

	for i := range shares {
		pct := decimal.NewFromInt(int64(shares[i].Sales)).Mul(decimal.NewFromInt(100))
		shares[i].Percentage = ratio(pct, grand, 1)
	}
	return ProductRanking{Products: shares}
}

// NewExecutiveRanking ranks executives by total sales over the fixed months
// and returns the first limit of them; limit <= 0 means
// DefaultTopExecutives. Equal totals are ordered by name.
func NewExecutiveRanking(d *Dataset, limit int) ExecutiveRanking {
	if limit <= 0 {
		limit = DefaultTopExecutives
	}

	seen := make(map[string]bool)
	ranks := []ExecutiveRank{}
	for _, counts := range d.Executives {
		for name := range counts {
			if seen[name] {
				continue
			}
			seen[name] = true

			monthly := monthlyCounts(d.Executives, name)
			total := 0
			for _, n := range monthly {
				total += n
			}

			coordinator, ok := d.ExecutiveCoordinator[name]
			if !ok {
				coordinator = Unassigned
			}

			ranks = append(ranks, ExecutiveRank{
				Name:        name,
				Coordinator: coordinator,
				Monthly:     monthly,
				Total:       total,
				Average:     ratio(decimal.NewFromInt(int64(total)), len(Months), 1),
			})
		}
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Total != ranks[j].Total {
			return ranks[i].Total > ranks[j].Total
		}
		return ranks[i].Name < ranks[j].Name
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	for i := range ranks {
		ranks[i].Position = i + 1
	}

	return ExecutiveRanking{Labels: MonthLabels(), Executives: ranks}
}

// monthlyCounts reads name's count from every month in calendar order
func monthlyCounts(byMonth map[string]map[string]int, name string) []int {
	out := make([]int, len(Months))
	for i, m := range Months {
		out[i] = byMonth[m.Key][name]
	}
	return out
}
