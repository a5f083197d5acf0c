package ventas

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// ApprovalMarker is the exact status value of a counted sale
const ApprovalMarker = "Aprobada Servicing"

// MonthTotals holds the headline numbers of a month
type MonthTotals struct {
	Sales int     `json:"ventas"`
	Nap   float64 `json:"nap"`
}

// MonthStats counts what the aggregator saw while reading a month
type MonthStats struct {
	Rows               int
	Approved           int
	UnparseableAmounts int
}

// MonthAggregate is the result of aggregating one month sheet.
// It is not modified after AggregateMonth returns.
type MonthAggregate struct {
	Month                string
	Totals               MonthTotals
	Coordinators         map[string]int
	Executives           map[string]int
	Modalities           map[string]int
	Products             map[string]int
	ExecutiveCoordinator map[string]string
	Stats                MonthStats
}

func newMonthAggregate(month string) *MonthAggregate {
	return &MonthAggregate{
		Month:                month,
		Coordinators:         make(map[string]int),
		Executives:           make(map[string]int),
		Modalities:           make(map[string]int),
		Products:             make(map[string]int),
		ExecutiveCoordinator: make(map[string]string),
	}
}

// AggregateMonth aggregates the approved rows of one month. rows[0] must be
// the header row.
//
// It returns ErrNoData when there is no header or no data row, and
// ErrMissingStatusColumn when the header has no status column. Problems in
// individual cells never fail the month.
func AggregateMonth(month string, rows []Row, layout Layout) (*MonthAggregate, error) {
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	cols := NewColumnIndex(rows[0], layout)
	if cols.Status == NotFound {
		return nil, fmt.Errorf("%s: %w", month, ErrMissingStatusColumn)
	}

	agg := newMonthAggregate(month)
	data := rows[1:]
	agg.Stats.Rows = len(data)
	napTotal := decimal.Zero

	for _, row := range data {
		if strings.TrimSpace(row.At(cols.Status).Text()) != ApprovalMarker {
			continue
		}
		agg.Stats.Approved++

		amount, err := ParseAmount(row.At(cols.NAP))
		switch {
		case err == nil:
			napTotal = napTotal.Add(amount)
		case errors.Is(err, ErrUnparseableAmount):
			agg.Stats.UnparseableAmounts++
			slog.Warn("Could not parse NAP", "month", month, "value", row.At(cols.NAP).Text())
		}

		coordinator, hasCoordinator := keyAt(row, cols.Coordinator)
		if hasCoordinator {
			agg.Coordinators[coordinator]++
		}

		if executive, ok := keyAt(row, cols.Executive); ok {
			agg.Executives[executive]++
			if hasCoordinator {
				agg.ExecutiveCoordinator[executive] = coordinator
			}
		}

		if modality, ok := keyAt(row, cols.Modality); ok {
			agg.Modalities[modality]++
		}

		if product, ok := keyAt(row, cols.Product); ok {
			if name := NormalizeProductName(product); name != "" {
				agg.Products[name]++
			}
		}
	}

	agg.Totals = MonthTotals{
		Sales: agg.Stats.Approved,
		Nap:   napTotal.RoundBank(2).InexactFloat64(),
	}

	slog.Info("Month aggregated",
		"month", month,
		"approved", agg.Stats.Approved,
		"rows", agg.Stats.Rows,
		"nap_total", agg.Totals.Nap,
	)

	return agg, nil
}
