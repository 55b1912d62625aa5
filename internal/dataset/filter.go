package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"cleanstage/internal/failures"
)

// RangeStats summarizes a FilterRange pass.
type RangeStats struct {
	Kept       int
	Missing    int
	NonNumeric int
	OutOfRange int
}

// FilterRange keeps rows whose value in column lies within [lo, hi], inclusive
// on both ends. Cells are compared as the nearest float64 to their decimal
// text. Rows with a missing or non-numeric value never satisfy the predicate.
// lo > hi yields an empty dataset rather than an error.
func (d *Dataset) FilterRange(column string, lo, hi float64) (*Dataset, RangeStats, error) {
	var stats RangeStats
	col, ok := d.Column(column)
	if !ok {
		return nil, stats, failures.Wrap(failures.ErrFormat, "dataset", "filter",
			fmt.Sprintf("column %q not found", column), nil)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil, stats, failures.Wrap(failures.ErrConfiguration, "dataset", "filter", "bounds must be numbers", nil)
	}

	kept := make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		cell := row[col]
		if cell.IsMissing() {
			stats.Missing++
			continue
		}
		value, ok := parseNumber(cell.Raw)
		if !ok {
			stats.NonNumeric++
			continue
		}
		if value < lo || value > hi {
			stats.OutOfRange++
			continue
		}
		kept = append(kept, row)
	}
	stats.Kept = len(kept)
	return d.withRows(kept), stats, nil
}

// parseNumber reads a numeric cell through decimal so NaN and infinity
// spellings are rejected, then rounds it to the nearest float64.
func parseNumber(raw string) (float64, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return value.InexactFloat64(), true
}
