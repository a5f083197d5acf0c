// Package source implements ventas.Source over a Google spreadsheet and over
// a local .xlsx workbook with the same month tabs.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/servicing/ventas/logging"
	"github.com/servicing/ventas/ratelimit"
	"github.com/servicing/ventas/ventas"
)

// LastColumn is the rightmost column read from each month tab
const LastColumn = "AC"

// MonthRange returns the A1 range read for a month tab
func MonthRange(month string) string {
	return month + "!A:" + LastColumn
}

// ValuesGetter reads a range of cell values from a spreadsheet
type ValuesGetter interface {
	GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// valuesAPI reads values through the Sheets API
type valuesAPI struct {
	srv *sheets.Service
}

func (a valuesAPI) GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	// Unformatted values keep numbers as numbers instead of locale strings
	resp, err := a.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Sheets reads month tabs from a Google spreadsheet
type Sheets struct {
	values        ValuesGetter
	spreadsheetID string
	limiter       *ratelimit.RateLimiter
}

// NewSheets creates a source backed by the Sheets API
func NewSheets(srv *sheets.Service, spreadsheetID string, limiter *ratelimit.RateLimiter) *Sheets {
	return NewSheetsWithGetter(valuesAPI{srv: srv}, spreadsheetID, limiter)
}

// NewSheetsWithGetter creates a source over any ValuesGetter; nil limiter uses the default pacing
func NewSheetsWithGetter(values ValuesGetter, spreadsheetID string, limiter *ratelimit.RateLimiter) *Sheets {
	if limiter == nil {
		limiter = ratelimit.NewRateLimiter(nil)
	}
	return &Sheets{
		values:        values,
		spreadsheetID: spreadsheetID,
		limiter:       limiter,
	}
}

// FetchMonthRows reads the month tab. A tab that does not exist is an API
// error and is returned as is.
func (s *Sheets) FetchMonthRows(ctx context.Context, month string) ([]ventas.Row, error) {
	readRange := MonthRange(month)
	start := time.Now()

	var values [][]interface{}
	err := s.limiter.ExecuteWithRetry(ctx, func() error {
		var err error
		values, err = s.values.GetValues(ctx, s.spreadsheetID, readRange)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", readRange, err)
	}

	rows := make([]ventas.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, ventas.NewRow(v))
	}

	slog.Debug("Fetched month tab", "range", readRange, "rows", len(rows), logging.Since(start))
	return rows, nil
}
