package baltic

import (
	"strconv"
	"strings"

	"github.com/sarunasign/btd/pkg/types"
)

// normalizeDemand rewrites a satisfied-demand frame in place: columns whose
// name contains "Downward" are negated, rows with any cell that doesn't
// coerce to a number are dropped, a Baltics_net row-sum column is appended,
// and every cell is multiplied by 4 to turn 15-minute energies into an MW
// rate.
func normalizeDemand(f *types.Frame) {
	downward := make([]bool, len(f.Columns))
	for i, name := range f.Columns {
		downward[i] = strings.Contains(name, "Downward")
	}

	kept := f.Rows[:0]
	for _, r := range f.Rows {
		vals := make([]float64, len(f.Columns))
		complete := true
		for i := range f.Columns {
			var cell any
			if i < len(r.Cells) {
				cell = r.Cells[i]
			}
			v, ok := coerceFloat(cell)
			if !ok {
				complete = false
				break
			}
			if downward[i] {
				v = -v
			}
			vals[i] = v
		}
		if !complete {
			continue
		}

		var sum float64
		cells := make([]any, 0, len(vals)+1)
		for _, v := range vals {
			sum += v
			cells = append(cells, v*4)
		}
		cells = append(cells, sum*4)
		kept = append(kept, types.Row{Time: r.Time, Cells: cells})
	}

	f.Rows = kept
	f.Columns = append(f.Columns, "Baltics_net")
}

// coerceFloat mirrors Frame.Float for a bare cell value.
func coerceFloat(cell any) (float64, bool) {
	switch v := cell.(type) {
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
