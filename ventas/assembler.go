package ventas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMonthTimeout bounds the fetch of a single month
const DefaultMonthTimeout = 30 * time.Second

// Assembler fetches and aggregates every month in order and merges the
// results into a Dataset.
type Assembler struct {
	source       Source
	layout       Layout
	monthTimeout time.Duration
	now          func() time.Time
}

// Option configures an Assembler
type Option func(*Assembler)

// WithLayout sets the positions of the NAP, modality and product columns
func WithLayout(layout Layout) Option {
	return func(a *Assembler) {
		a.layout = layout
	}
}

// WithMonthTimeout bounds each month fetch; zero or negative keeps the default
func WithMonthTimeout(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.monthTimeout = d
		}
	}
}

// WithClock sets the clock used for Dataset.BuiltAt
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an assembler reading from source
func NewAssembler(source Source, opts ...Option) *Assembler {
	a := &Assembler{
		source:       source,
		layout:       DefaultLayout(),
		monthTimeout: DefaultMonthTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build fetches and aggregates the months one at a time in calendar order.
// A month that fails is logged, recorded in Dataset.Report and left out of
// the dataset; the remaining months are still processed. Build only returns
// an error when the assembler itself is misconfigured or ctx is done.
func (a *Assembler) Build(ctx context.Context) (*Dataset, error) {
	if a.source == nil {
		return nil, ErrNilSource
	}

	ds := NewDataset()
	for _, m := range Months {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building dataset: %w", err)
		}

		agg, err := a.processMonth(ctx, m)
		report := MonthReport{Month: m.Key, Outcome: OutcomeOK}

		switch {
		case err == nil:
			ds.Merge(m.Key, agg)
			report.Rows = agg.Stats.Rows
			report.Approved = agg.Stats.Approved
			report.Unparseable = agg.Stats.UnparseableAmounts
		case errors.Is(err, ErrNoData):
			report.Outcome = OutcomeNoData
			slog.Info("Month has no data", "month", m.Name)
		case errors.Is(err, ErrMissingStatusColumn):
			report.Outcome = OutcomeMissingStatus
			report.Error = err.Error()
			slog.Warn("Status column not found, skipping month", "month", m.Name)
		default:
			report.Outcome = OutcomeFailed
			report.Error = err.Error()
			slog.Error("Error processing month", "month", m.Name, "error", err)
		}

		ds.Report = append(ds.Report, report)
	}

	ds.BuiltAt = a.now()
	return ds, nil
}

type fetchResult struct {
	rows []Row
	err  error
}

// processMonth fetches and aggregates a single month. Panics from the
// source or the aggregator are turned into errors for that month.
func (a *Assembler) processMonth(ctx context.Context, m Month) (agg *MonthAggregate, err error) {
	defer func() {
		if r := recover(); r != nil {
			agg = nil
			err = fmt.Errorf("panic aggregating %s: %v", m.Name, r)
		}
	}()

	rows, err := a.fetch(ctx, m)
	if err != nil {
		return nil, err
	}
	return AggregateMonth(m.Name, rows, a.layout)
}

// fetch runs the source call under the month timeout. The result is
// abandoned if the source ignores ctx and outlives the deadline.
func (a *Assembler) fetch(ctx context.Context, m Month) ([]Row, error) {
	monthCtx, cancel := context.WithTimeout(ctx, a.monthTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("panic fetching %s: %v", m.Name, r)}
			}
		}()
		rows, err := a.source.FetchMonthRows(monthCtx, m.Name)
		done <- fetchResult{rows: rows, err: err}
	}()

	select {
	case <-monthCtx.Done():
		return nil, fmt.Errorf("fetching %s: %w", m.Name, monthCtx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("fetching %s: %w", m.Name, res.err)
		}
		return res.rows, nil
	}
}
