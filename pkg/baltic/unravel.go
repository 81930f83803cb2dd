package baltic

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sarunasign/btd/pkg/types"
)

// The dashboard publishes Baltic-wide data; all timestamps are reported in
// Lithuanian civil time (EET/EEST).
var vilnius = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Vilnius")
	if err != nil {
		panic(fmt.Errorf("failed to load vilnius location: %w", err))
	}
	return loc
}()

// columnDescriptor describes one data column of an export response. The index
// positions it within each timeseries entry's values array.
type columnDescriptor struct {
	Index       int    `json:"index"`
	GroupLevel0 string `json:"group_level_0"`
	GroupLevel1 string `json:"group_level_1"`
	Label       string `json:"label"`
}

// displayName concatenates the column's hierarchical labels down to the given
// grouping depth.
func (c columnDescriptor) displayName(depth int) string {
	switch depth {
	case 3:
		return fmt.Sprintf("%s %s %s", c.GroupLevel0, c.GroupLevel1, c.Label)
	case 2:
		return fmt.Sprintf("%s %s", c.GroupLevel0, c.Label)
	default:
		return c.GroupLevel0
	}
}

type timeseriesEntry struct {
	From   string `json:"from"`
	Values []any  `json:"values"`
}

type exportData struct {
	Columns    []columnDescriptor `json:"columns"`
	Timeseries []timeseriesEntry  `json:"timeseries"`
}

type exportResponse struct {
	Data *exportData `json:"data"`
}

// Unravel parses a raw export body into a Frame. Column display names are
// derived from the column descriptors at the given grouping depth (1-3).
// Values at indices with no matching descriptor are silently dropped; rows
// keep whatever order the API returned. Timestamps are parsed as absolute
// instants and carried as Europe/Vilnius wall time, which tracks the EET/EEST
// summer-time switch.
func Unravel(raw []byte, depth int) (*types.Frame, error) {
	if depth < 1 || depth > 3 {
		return nil, fmt.Errorf("grouping depth must be 1, 2 or 3, got %d", depth)
	}

	var body exportResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode export response: %w", err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("export response is missing data")
	}
	if body.Data.Columns == nil {
		return nil, fmt.Errorf("export response is missing data.columns")
	}
	if body.Data.Timeseries == nil {
		return nil, fmt.Errorf("export response is missing data.timeseries")
	}

	// column order follows the descriptor indices, not array order
	descriptors := make([]columnDescriptor, len(body.Data.Columns))
	copy(descriptors, body.Data.Columns)
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Index < descriptors[j].Index
	})

	columns := make([]string, 0, len(descriptors))
	positions := make(map[int]int, len(descriptors))
	for _, d := range descriptors {
		positions[d.Index] = len(columns)
		columns = append(columns, d.displayName(depth))
	}

	rows := make([]types.Row, 0, len(body.Data.Timeseries))
	for _, entry := range body.Data.Timeseries {
		ts, err := time.Parse(time.RFC3339, entry.From)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", entry.From, err)
		}

		cells := make([]any, len(columns))
		for i, v := range entry.Values {
			if pos, ok := positions[i]; ok {
				cells[pos] = v
			}
			// values beyond the known columns are dropped, not errored
		}
		rows = append(rows, types.Row{
			Time:  ts.In(vilnius),
			Cells: cells,
		})
	}

	return &types.Frame{Columns: columns, Rows: rows}, nil
}
