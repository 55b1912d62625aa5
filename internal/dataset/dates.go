package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"cleanstage/internal/failures"
)

// MalformedPolicy decides what happens to a non-missing value that is not a date.
type MalformedPolicy string

const (
	MalformedFail MalformedPolicy = "fail"
	MalformedDrop MalformedPolicy = "drop"
	MalformedNull MalformedPolicy = "null"
)

// DefaultDateLayouts are tried in order before any caller-supplied layouts.
// Values none of them accept fall through to dateparse.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"20060102",
}

// DateOptions configures NormalizeDates.
type DateOptions struct {
	Layouts []string
	Policy  MalformedPolicy
}

// DateStats summarizes a NormalizeDates pass.
type DateStats struct {
	Parsed  int
	Missing int
	Dropped int
	Nulled  int
}

// NormalizeDates reinterprets every value in column as a calendar date. Missing
// values stay missing. Values carrying a zone offset are converted to UTC.
func (d *Dataset) NormalizeDates(column string, opts DateOptions) (*Dataset, DateStats, error) {
	var stats DateStats
	col, ok := d.Column(column)
	if !ok {
		return nil, stats, failures.Wrap(failures.ErrFormat, "dataset", "normalize dates",
			fmt.Sprintf("column %q not found", column), nil)
	}
	policy := opts.Policy
	if policy == "" {
		policy = MalformedFail
	}
	layouts := append(append([]string{}, DefaultDateLayouts...), opts.Layouts...)

	out := make([]Row, 0, len(d.Rows))
	for i, row := range d.Rows {
		cell := row[col]
		if cell.IsMissing() {
			stats.Missing++
			out = append(out, row)
			continue
		}
		parsed, ok := ParseDate(cell.Raw, layouts)
		if !ok {
			switch policy {
			case MalformedDrop:
				stats.Dropped++
				continue
			case MalformedNull:
				stats.Nulled++
				out = append(out, replaceCell(row, col, Cell{Raw: cell.Raw, Kind: KindMissing}))
				continue
			default:
				return nil, stats, failures.Wrap(failures.ErrFormat, "dataset", "normalize dates",
					fmt.Sprintf("row %d: %q in column %q is not a date", i+1, cell.Raw, column), nil)
			}
		}
		stats.Parsed++
		out = append(out, replaceCell(row, col, Cell{Raw: cell.Raw, Kind: KindDate, Date: parsed}))
	}
	return d.withRows(out), stats, nil
}

// ParseDate tries each layout in turn, then the general dateparse formats
// (month first when ambiguous), and returns the result in UTC. Values without
// any digit are never dates.
func ParseDate(raw string, layouts []string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if !strings.ContainsAny(value, "0123456789") {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

// replaceCell copies row so the source dataset is left untouched.
func replaceCell(row Row, col int, cell Cell) Row {
	next := make(Row, len(row))
	copy(next, row)
	next[col] = cell
	return next
}
