package engine

import (
	"math"
	"testing"
	"time"

	"nocturna/domain/series"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func consecutiveSeries(values []float64) series.Series {
	s := make(series.Series, len(values))
	for i, v := range values {
		s[i] = series.TimePoint{Date: day(i), Value: v}
	}
	return s
}

// Windows span calendar days, not sample counts: a 3-day gap pushes older
// observations out of the window even though they are adjacent in the slice.
func TestComputeRolling_CalendarWindowRespectsGaps(t *testing.T) {
	s := series.Series{
		{Date: day(0), Value: 2}, // Jan 1
		{Date: day(1), Value: 4}, // Jan 2
		{Date: day(4), Value: 6}, // Jan 5
	}
	results := ComputeRolling(s, RollingConfig{Windows: []int{3}, Threshold: 0, Alpha: DefaultAlpha})
	if len(results) != 1 {
		t.Fatalf("expected 1 window result, got %d", len(results))
	}
	r := results[0]
	if r.Window != 3 {
		t.Fatalf("window = %d, want 3", r.Window)
	}

	// Jan 2 covers Dec 31..Jan 2: both early points are in.
	if !almostEqual(r.Avg[1], 3, 1e-12) {
		t.Errorf("avg at Jan 2 = %v, want 3", r.Avg[1])
	}
	// Jan 5 covers Jan 3..Jan 5: only the Jan 5 point remains.
	if !almostEqual(r.Avg[2], 6, 1e-12) {
		t.Errorf("avg at Jan 5 = %v, want 6 (gap should evict Jan 1-2)", r.Avg[2])
	}
	if !almostEqual(r.Median[2], 6, 1e-12) {
		t.Errorf("median at Jan 5 = %v, want 6", r.Median[2])
	}
}

func TestComputeRolling_OutputLengthsMatchInput(t *testing.T) {
	s := consecutiveSeries([]float64{1, 2, math.NaN(), 4, 5, 6, 7})
	results := ComputeRolling(s, RollingConfig{Windows: []int{7, 30}, Threshold: 4, Alpha: DefaultAlpha})
	if len(results) != 2 {
		t.Fatalf("expected 2 window results, got %d", len(results))
	}
	for _, r := range results {
		for name, col := range map[string][]float64{
			"avg": r.Avg, "avg_ci_low": r.AvgCILow, "avg_ci_high": r.AvgCIHigh,
			"median": r.Median, "median_ci_low": r.MedianCILow, "median_ci_high": r.MedianCIHi,
			"compliance": r.Compliance,
		} {
			if len(col) != len(s) {
				t.Errorf("window %d: %s has length %d, want %d", r.Window, name, len(col), len(s))
			}
		}
		if len(r.Dates) != len(s) {
			t.Errorf("window %d: dates length %d, want %d", r.Window, len(r.Dates), len(s))
		}
	}
}

func TestComputeRolling_UnsortedInputMatchesSorted(t *testing.T) {
	sorted := consecutiveSeries([]float64{1, 3, 5, 7, 9})
	shuffled := series.Series{sorted[3], sorted[0], sorted[4], sorted[1], sorted[2]}

	cfg := RollingConfig{Windows: []int{3}, Threshold: 0, Alpha: DefaultAlpha}
	a := ComputeRolling(sorted, cfg)[0]
	b := ComputeRolling(shuffled, cfg)[0]
	for i := range a.Avg {
		if !almostEqual(a.Avg[i], b.Avg[i], 1e-12) {
			t.Fatalf("avg differs at %d: %v vs %v", i, a.Avg[i], b.Avg[i])
		}
	}
}

func TestComputeRolling_Compliance(t *testing.T) {
	s := consecutiveSeries([]float64{2, 6, 6, 2})
	r := ComputeRolling(s, RollingConfig{Windows: []int{2}, Threshold: 4, Alpha: DefaultAlpha})[0]

	want := []float64{0, 50, 100, 50}
	for i := range want {
		if !almostEqual(r.Compliance[i], want[i], 1e-12) {
			t.Errorf("compliance[%d] = %v, want %v", i, r.Compliance[i], want[i])
		}
	}
}

func TestComputeRolling_NaNValuesDoNotPoisonWindow(t *testing.T) {
	s := consecutiveSeries([]float64{3, math.NaN(), 5})
	r := ComputeRolling(s, RollingConfig{Windows: []int{3}, Threshold: 0, Alpha: DefaultAlpha})[0]
	if !almostEqual(r.Avg[2], 4, 1e-12) {
		t.Errorf("avg over {3, NaN, 5} = %v, want 4", r.Avg[2])
	}
	// Window holding only the NaN observation has no usable data.
	one := ComputeRolling(s, RollingConfig{Windows: []int{1}, Threshold: 0, Alpha: DefaultAlpha})[0]
	if !math.IsNaN(one.Avg[1]) {
		t.Errorf("1-day window over a NaN value should be NaN, got %v", one.Avg[1])
	}
}

func TestComputeRolling_MeanCIBracketsMean(t *testing.T) {
	s := consecutiveSeries([]float64{4, 6, 5, 7, 3, 8, 5, 6, 4, 7})
	r := ComputeRolling(s, RollingConfig{Windows: []int{7}, Threshold: 0, Alpha: DefaultAlpha})[0]
	for i := range r.Avg {
		lo, hi := r.AvgCILow[i], r.AvgCIHigh[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			continue // single-sample windows have no interval
		}
		if lo > r.Avg[i] || hi < r.Avg[i] {
			t.Errorf("CI [%v, %v] does not bracket mean %v at %d", lo, hi, r.Avg[i], i)
		}
	}
}

func TestComputeRolling_EmptySeries(t *testing.T) {
	results := ComputeRolling(nil, RollingConfig{Windows: []int{7}, Threshold: 0, Alpha: DefaultAlpha})
	if len(results) != 1 || len(results[0].Avg) != 0 {
		t.Fatalf("empty series should yield empty columns, got %+v", results)
	}
}
