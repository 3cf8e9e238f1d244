package ingest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocturna/domain/core"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVBasic(t *testing.T) {
	path := writeTempCSV(t, "date,usage_hours,ahi\n"+
		"2024-01-01,7:32:05,4.1\n"+
		"2024-01-02,,5.0\n"+
		"2024-01-05,6.25,bad\n")

	bundle, err := NewDataReader(path).Read(context.Background())
	require.NoError(t, err)

	usage := bundle.Get(core.SeriesKey("usage_hours"))
	require.Len(t, usage, 3)
	assert.InDelta(t, 7+32.0/60+5.0/3600, usage[0].Value, 1e-9)
	assert.True(t, math.IsNaN(usage[1].Value), "empty cell should be NaN, not dropped")
	assert.Equal(t, 6.25, usage[2].Value)
	// the 3-day gap is preserved as absent days, not zero-filled
	assert.Equal(t, 3, core.DaysBetween(usage[1].Date, usage[2].Date))

	ahi := bundle.Get(core.SeriesKey("ahi"))
	require.Len(t, ahi, 3)
	assert.True(t, math.IsNaN(ahi[2].Value), "unparseable cell should be NaN")
}

func TestDataReader_CustomDateColumnAndCase(t *testing.T) {
	path := writeTempCSV(t, "Night,score\n2024-02-01,3\n")
	bundle, err := NewDataReader(path, WithDateColumn("night")).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, bundle.Get("score"), 1)
}

func TestDataReader_SkipsUnparseableDates(t *testing.T) {
	path := writeTempCSV(t, "date,v\nnot-a-date,1\n2024-01-01,2\n")
	bundle, err := NewDataReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, bundle.Get("v"), 1)
	assert.Equal(t, 2.0, bundle.Get("v")[0].Value)
}

func TestDataReader_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).Read(context.Background())
	assert.Error(t, err)

	headerOnly := writeTempCSV(t, "date,v\n")
	_, err = NewDataReader(headerOnly).Read(context.Background())
	assert.Error(t, err)

	noDate := writeTempCSV(t, "timestamp,v\n2024-01-01,2\n")
	_, err = NewDataReader(noDate).Read(context.Background())
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	cases := map[string]float64{
		"3.5":     3.5,
		"7:30":    7.5,
		"0:45:00": 0.75,
		"":        math.NaN(),
		"n/a":     math.NaN(),
		"7:99":    math.NaN(), // invalid minutes
	}
	for cell, want := range cases {
		got := parseValue(cell)
		if math.IsNaN(want) {
			assert.True(t, math.IsNaN(got), "parseValue(%q) should be NaN, got %v", cell, got)
		} else {
			assert.InDelta(t, want, got, 1e-9, "parseValue(%q)", cell)
		}
	}
}
