package ventas

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// planPrefix matches labels like "PLAN 3: " in front of a product name
var planPrefix = regexp.MustCompile(`(?i)^PLAN\s+\d+:\s*`)

// ParseAmount reads a NAP amount. Text cells may use a comma as decimal
// separator. Blank cells return ErrEmptyCell; anything that is still not a
// number after the comma substitution returns ErrUnparseableAmount.
func ParseAmount(c Cell) (decimal.Decimal, error) {
	switch c.Kind {
	case CellEmpty:
		return decimal.Zero, ErrEmptyCell
	case CellNumber:
		f, ok := c.Number()
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrUnparseableAmount, c.num)
		}
		return decimal.NewFromFloat(f), nil
	}

	raw := strings.TrimSpace(c.Text())
	if raw == "" {
		return decimal.Zero, ErrEmptyCell
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableAmount, c.Text())
	}
	return amount, nil
}

// NormalizeProductName trims raw and drops a leading "PLAN <n>:" label so
// the plan variants of a product count under one name.
func NormalizeProductName(raw string) string {
	name := strings.TrimSpace(raw)
	name = planPrefix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// keyAt returns the trimmed text at position i, reporting false when the
// column is missing, out of range or blank.
func keyAt(row Row, i int) (string, bool) {
	if i == NotFound {
		return "", false
	}
	key := strings.TrimSpace(row.At(i).Text())
	return key, key != ""
}
