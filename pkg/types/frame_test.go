package types

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() *Frame {
	return &Frame{
		Columns: []string{"Estonia", "Latvia", "Lithuania"},
		Rows: []Row{
			{
				Time:  time.Date(2024, 3, 31, 1, 0, 0, 0, time.UTC),
				Cells: []any{10.5, nil, "n/a"},
			},
			{
				Time:  time.Date(2024, 3, 31, 2, 0, 0, 0, time.UTC),
				Cells: []any{-2.0, 3.0, "7.25"},
			},
		},
	}
}

func TestFrame(t *testing.T) {
	t.Run("Column", func(t *testing.T) {
		f := testFrame()
		assert.Equal(t, 1, f.Column("Latvia"))
		assert.Equal(t, -1, f.Column("Poland"))
	})

	t.Run("Float", func(t *testing.T) {
		f := testFrame()

		v, ok := f.Float(0, 0)
		require.True(t, ok)
		assert.Equal(t, 10.5, v)

		// nil cells don't coerce
		_, ok = f.Float(0, 1)
		assert.False(t, ok)

		// non-numeric strings don't coerce
		_, ok = f.Float(0, 2)
		assert.False(t, ok)

		// numeric strings do
		v, ok = f.Float(1, 2)
		require.True(t, ok)
		assert.Equal(t, 7.25, v)

		// out of bounds
		_, ok = f.Float(5, 0)
		assert.False(t, ok)
	})

	t.Run("Equal", func(t *testing.T) {
		a := testFrame()
		b := testFrame()
		assert.True(t, a.Equal(b))

		b.Rows[1].Cells[0] = -2.5
		assert.False(t, a.Equal(b))

		c := testFrame()
		c.Columns[0] = "Finland"
		assert.False(t, a.Equal(c))

		assert.False(t, a.Equal(nil))
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		f := testFrame()
		raw, err := json.Marshal(f)
		require.NoError(t, err)

		var decoded struct {
			Columns []string `json:"columns"`
			Rows    []struct {
				Time   string `json:"time"`
				Values []any  `json:"values"`
			} `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, []string{"Estonia", "Latvia", "Lithuania"}, decoded.Columns)
		require.Len(t, decoded.Rows, 2)
		// no offset on the rendered timestamp
		assert.Equal(t, "2024-03-31T01:00:00", decoded.Rows[0].Time)
		assert.Equal(t, []any{10.5, nil, "n/a"}, decoded.Rows[0].Values)
	})

	t.Run("WriteCSV", func(t *testing.T) {
		f := testFrame()
		var buf bytes.Buffer
		require.NoError(t, f.WriteCSV(&buf))

		expected := "time,Estonia,Latvia,Lithuania\n" +
			"2024-03-31 01:00:00,10.5,,n/a\n" +
			"2024-03-31 02:00:00,-2,3,7.25\n"
		assert.Equal(t, expected, buf.String())
	})
}
