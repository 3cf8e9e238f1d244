package engine

import (
	"math"
	"testing"

	"nocturna/domain/core"
	"nocturna/domain/series"
)

func TestSummarize_BasicProfile(t *testing.T) {
	s := series.Series{
		{Date: day(0), Value: 2},
		{Date: day(1), Value: 4},
		{Date: day(4), Value: 6}, // 3-day gap widens the span, not the count
	}
	sum := Summarize(core.SeriesKey("subject-1/usage_hours"), s)

	if sum.N != 3 || sum.Finite != 3 {
		t.Errorf("counts: n=%d finite=%d, want 3/3", sum.N, sum.Finite)
	}
	if !almostEqual(sum.Mean, 4, 1e-12) {
		t.Errorf("mean = %v, want 4", sum.Mean)
	}
	if !almostEqual(sum.Median, 4, 1e-12) {
		t.Errorf("median = %v, want 4", sum.Median)
	}
	if sum.Min != 2 || sum.Max != 6 {
		t.Errorf("range [%v, %v], want [2, 6]", sum.Min, sum.Max)
	}
	if sum.DaySpan != 5 {
		t.Errorf("day span = %d, want 5 (Jan 1 through Jan 5)", sum.DaySpan)
	}
	if !sum.First.Equal(day(0)) || !sum.Last.Equal(day(4)) {
		t.Errorf("date range [%v, %v] wrong", sum.First, sum.Last)
	}
}

func TestSummarize_QuartilesMatchEngineQuantile(t *testing.T) {
	vals := []float64{9, 1, 7, 3, 5, 8, 2, 6, 4}
	sum := Summarize("", consecutiveSeries(vals))
	for _, tc := range []struct {
		got, q float64
	}{{sum.Q25, 0.25}, {sum.Median, 0.5}, {sum.Q75, 0.75}} {
		if want := Quantile(vals, tc.q); !almostEqual(tc.got, want, 1e-12) {
			t.Errorf("q=%v: summary %v, engine quantile %v", tc.q, tc.got, want)
		}
	}
}

func TestSummarize_AllNaNKeepsCountsAndSpan(t *testing.T) {
	s := series.Series{
		{Date: day(0), Value: math.NaN()},
		{Date: day(2), Value: math.NaN()},
	}
	sum := Summarize("", s)
	if sum.N != 2 || sum.Finite != 0 {
		t.Errorf("counts: n=%d finite=%d, want 2/0", sum.N, sum.Finite)
	}
	if !math.IsNaN(sum.Mean) || !math.IsNaN(sum.Median) {
		t.Errorf("all-NaN series should have NaN statistics, got mean=%v median=%v", sum.Mean, sum.Median)
	}
	if sum.DaySpan != 3 {
		t.Errorf("day span = %d, want 3", sum.DaySpan)
	}
}

func TestSummarize_EmptySeries(t *testing.T) {
	sum := Summarize("", nil)
	if sum.N != 0 || sum.Finite != 0 {
		t.Errorf("empty series counts: %+v", sum)
	}
	if !math.IsNaN(sum.Mean) {
		t.Errorf("empty series mean should be NaN, got %v", sum.Mean)
	}
	if sum.DaySpan != 0 {
		t.Errorf("empty series span = %d, want 0", sum.DaySpan)
	}
}
