package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cleanstage/internal/failures"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
	microLayout    = "2006-01-02 15:04:05.000000"
	nanoLayout     = "2006-01-02 15:04:05.000000000"
)

// Decode parses CSV text with a header row into a Dataset. A leading byte
// order mark is honoured. Rows shorter than the header are padded with missing
// values; rows longer than the header are rejected.
func Decode(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, failures.Wrap(failures.ErrFormat, "dataset", "decode", "no columns to parse from file", nil)
	}
	if err != nil {
		return nil, failures.Wrap(failures.ErrFormat, "dataset", "decode header", "", err)
	}
	header = dedupeHeader(header)

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failures.Wrap(failures.ErrFormat, "dataset", "decode row", "", err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, failures.Wrap(failures.ErrFormat, "dataset", "decode row",
				fmt.Sprintf("expected %d fields in line %d, saw %d", len(header), line, len(record)), nil)
		}
		row := make(Row, len(header))
		for i := range row {
			if i < len(record) {
				row[i] = newCell(record[i])
			} else {
				row[i] = Cell{Kind: KindMissing}
			}
		}
		rows = append(rows, row)
	}

	return New(header, rows), nil
}

// dedupeHeader renames repeated column names the way pandas does: the second
// "a" becomes "a.1", the third "a.2".
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	counts := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for i, name := range header {
		taken[name] = struct{}{}
		out[i] = name
	}
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			continue
		}
		for {
			counts[name]++
			candidate := name + "." + strconv.Itoa(counts[name])
			if _, exists := taken[candidate]; !exists {
				taken[candidate] = struct{}{}
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// ReadFile decodes the CSV file at path.
func ReadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrIO, "dataset", "open", path, err)
	}
	defer file.Close()
	return Decode(file)
}

// Encode writes the dataset as CSV with a header row and no index column.
// Missing cells are written empty. Date columns are written as YYYY-MM-DD
// when every value sits at midnight, otherwise with a time component whose
// fractional width is the finest one any value in the column needs.
func (d *Dataset) Encode(w io.Writer) error {
	layouts := d.dateLayouts()

	writer := csv.NewWriter(w)
	if err := writer.Write(d.Header); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "encode header", "", err)
	}
	record := make([]string, len(d.Header))
	for _, row := range d.Rows {
		for i, cell := range row {
			switch cell.Kind {
			case KindMissing:
				record[i] = ""
			case KindDate:
				record[i] = cell.Date.Format(layouts[i])
			default:
				record[i] = cell.Raw
			}
		}
		if err := writer.Write(record); err != nil {
			return failures.Wrap(failures.ErrIO, "dataset", "encode row", "", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "flush", "", err)
	}
	return nil
}

func (d *Dataset) dateLayouts() []string {
	precision := make([]int, len(d.Header))
	for _, row := range d.Rows {
		for i, cell := range row {
			if cell.Kind == KindDate {
				precision[i] = max(precision[i], datePrecision(cell.Date))
			}
		}
	}
	layouts := make([]string, len(d.Header))
	for i, p := range precision {
		layouts[i] = []string{dateLayout, datetimeLayout, microLayout, nanoLayout}[p]
	}
	return layouts
}

// datePrecision ranks how much of t must be written: 0 date only, 1 seconds,
// 2 microseconds, 3 nanoseconds.
func datePrecision(t time.Time) int {
	switch {
	case t.Nanosecond()%int(time.Microsecond) != 0:
		return 3
	case t.Nanosecond() != 0:
		return 2
	case !isMidnight(t):
		return 1
	default:
		return 0
	}
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// WriteFile encodes the dataset to path, replacing any existing file. The
// content is staged in a temporary file in the same directory and renamed
// into place so a failed write never leaves a truncated file behind.
func (d *Dataset) WriteFile(path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "create", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = d.Encode(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "sync", path, err)
	}
	if err = tmp.Close(); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "close", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "chmod", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return failures.Wrap(failures.ErrIO, "dataset", "rename", path, err)
	}
	return nil
}
