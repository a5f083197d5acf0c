package ventas

import "context"

// Source fetches the raw rows of one month sheet. Row 0 is the header row.
// An empty or header-only result means the month has no data; it is not an
// error.
type Source interface {
	FetchMonthRows(ctx context.Context, month string) ([]Row, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, month string) ([]Row, error)

// FetchMonthRows calls f
func (f SourceFunc) FetchMonthRows(ctx context.Context, month string) ([]Row, error) {
	return f(ctx, month)
}
