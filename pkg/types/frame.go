package types

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"
)

// TimeLayout is how frame timestamps are rendered. The wall time is already
// localized, so the layout deliberately carries no offset.
const TimeLayout = "2006-01-02T15:04:05"

// csvTimeLayout matches TimeLayout but is friendlier to spreadsheets.
const csvTimeLayout = "2006-01-02 15:04:05"

// Frame is a row-per-timestamp, column-per-series table. It is the only
// artifact this module hands to callers: column names and the timestamp index
// are a stable contract. A Frame owns no connection to the response it was
// built from.
type Frame struct {
	Columns []string
	Rows    []Row
}

// Row is a single timestamped entry. Cells are positionally aligned with the
// frame's Columns and hold the raw decoded JSON values (float64, string or nil).
type Row struct {
	Time  time.Time
	Cells []any
}

// Column returns the index of the named column, or -1 if it doesn't exist.
func (f *Frame) Column(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Float returns the cell at (row, col) coerced to a float64. Strings holding a
// parseable number coerce too; anything else (including nil) reports false.
func (f *Frame) Float(row, col int) (float64, bool) {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row].Cells) {
		return 0, false
	}
	switch v := f.Rows[row].Cells[col].(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Equal reports whether two frames have identical columns, timestamps and cells.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || len(f.Columns) != len(other.Columns) || len(f.Rows) != len(other.Rows) {
		return false
	}
	for i, c := range f.Columns {
		if c != other.Columns[i] {
			return false
		}
	}
	for i, r := range f.Rows {
		o := other.Rows[i]
		if !r.Time.Equal(o.Time) || !reflect.DeepEqual(r.Cells, o.Cells) {
			return false
		}
	}
	return true
}

type frameJSON struct {
	Columns []string       `json:"columns"`
	Rows    []frameRowJSON `json:"rows"`
}

type frameRowJSON struct {
	Time   string `json:"time"`
	Values []any  `json:"values"`
}

// MarshalJSON renders the frame as {columns, rows:[{time, values}]} with
// offset-free timestamps.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{
		Columns: f.Columns,
		Rows:    make([]frameRowJSON, 0, len(f.Rows)),
	}
	for _, r := range f.Rows {
		out.Rows = append(out.Rows, frameRowJSON{
			Time:   r.Time.Format(TimeLayout),
			Values: r.Cells,
		})
	}
	return json.Marshal(out)
}

// WriteCSV writes the frame with a "time" column first. Nil cells are written
// as empty fields.
func (f *Frame) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)

	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, "time")
	header = append(header, f.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, len(f.Columns)+1)
	for _, r := range f.Rows {
		record[0] = r.Time.Format(csvTimeLayout)
		for i := range f.Columns {
			var cell any
			if i < len(r.Cells) {
				cell = r.Cells[i]
			}
			record[i+1] = formatCell(cell)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
