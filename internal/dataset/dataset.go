package dataset

import "time"

// Kind tags how a cell's value should be interpreted.
type Kind int

const (
	KindText Kind = iota
	KindMissing
	KindDate
)

// Cell is one value of a row.
type Cell struct {
	Raw  string
	Kind Kind
	Date time.Time
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool {
	return c.Kind == KindMissing
}

// Row is an ordered list of cells aligned with the dataset header.
type Row []Cell

// Dataset is an ordered sequence of rows sharing one header.
type Dataset struct {
	Header []string
	Rows   []Row

	index map[string]int
}

// New builds a dataset from a header and rows. Rows are not copied.
func New(header []string, rows []Row) *Dataset {
	d := &Dataset{Header: header, Rows: rows}
	d.reindex()
	return d
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Header))
	for i, name := range d.Header {
		if _, exists := d.index[name]; !exists {
			d.index[name] = i
		}
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Column returns the position of the named column.
func (d *Dataset) Column(name string) (int, bool) {
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[name]
	return i, ok
}

// Value returns the cell at row i in the named column.
func (d *Dataset) Value(i int, column string) (Cell, bool) {
	col, ok := d.Column(column)
	if !ok || i < 0 || i >= len(d.Rows) {
		return Cell{}, false
	}
	return d.Rows[i][col], true
}

// Record returns row i as a column name to cell mapping.
func (d *Dataset) Record(i int) map[string]Cell {
	if i < 0 || i >= len(d.Rows) {
		return nil
	}
	out := make(map[string]Cell, len(d.Header))
	for col, name := range d.Header {
		out[name] = d.Rows[i][col]
	}
	return out
}

// withRows returns a dataset sharing the header with a new row slice.
func (d *Dataset) withRows(rows []Row) *Dataset {
	return &Dataset{Header: d.Header, Rows: rows, index: d.index}
}

// naTokens mirrors the default na_values of pandas.read_csv.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingText reports whether raw cell text denotes a missing value.
func IsMissingText(raw string) bool {
	_, ok := naTokens[raw]
	return ok
}

func newCell(raw string) Cell {
	if IsMissingText(raw) {
		return Cell{Raw: raw, Kind: KindMissing}
	}
	return Cell{Raw: raw, Kind: KindText}
}
