package ventas

import "time"

// Outcome describes what happened to a month during a build
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeNoData        Outcome = "no_data"
	OutcomeMissingStatus Outcome = "missing_status_column"
	OutcomeFailed        Outcome = "failed"
)

// MonthReport records the outcome of one month of a build
type MonthReport struct {
	Month       string  `json:"mes"`
	Outcome     Outcome `json:"resultado"`
	Rows        int     `json:"filas"`
	Approved    int     `json:"aprobados"`
	Unparseable int     `json:"napInvalidos"`
	Error       string  `json:"error,omitempty"`
}

// Dataset merges the aggregates of every month that produced data. All
// per-month maps are keyed by the lowercase month name; a month without
// data has no key in any of them.
type Dataset struct {
	Totals               map[string]MonthTotals    `json:"totales"`
	Coordinators         map[string]map[string]int `json:"coordinadores"`
	Executives           map[string]map[string]int `json:"ejecutivos"`
	Modalities           map[string]map[string]int `json:"modalidades"`
	Products             map[string]map[string]int `json:"productos"`
	ExecutiveCoordinator map[string]string         `json:"ejecutivoCoordinador"`

	BuiltAt time.Time     `json:"-"`
	Report  []MonthReport `json:"-"`
}

// NewDataset returns an empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Totals:               make(map[string]MonthTotals),
		Coordinators:         make(map[string]map[string]int),
		Executives:           make(map[string]map[string]int),
		Modalities:           make(map[string]map[string]int),
		Products:             make(map[string]map[string]int),
		ExecutiveCoordinator: make(map[string]string),
	}
}

// Merge adds a month aggregate under key. Executive to coordinator pairs
// overwrite those of previously merged months.
func (d *Dataset) Merge(key string, agg *MonthAggregate) {
	d.Totals[key] = agg.Totals
	d.Coordinators[key] = agg.Coordinators
	d.Executives[key] = agg.Executives
	d.Modalities[key] = agg.Modalities
	d.Products[key] = agg.Products
	for executive, coordinator := range agg.ExecutiveCoordinator {
		d.ExecutiveCoordinator[executive] = coordinator
	}
}

// MonthCount returns the number of months with data
func (d *Dataset) MonthCount() int {
	return len(d.Totals)
}

// WithRoundedTotals returns a shallow copy whose totals carry NAP rounded
// to whole units, the form in which the dataset is served.
func (d *Dataset) WithRoundedTotals() *Dataset {
	out := *d
	out.Totals = Totals(d)
	return &out
}
