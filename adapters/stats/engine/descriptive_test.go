package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}

func TestQuantile_MedianMatchesTextbook(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd_count", []float64{5, 1, 3}, 3},
		{"even_count", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"with_nan", []float64{1, math.NaN(), 3}, 2},
	}
	for _, tc := range cases {
		got := Quantile(tc.values, 0.5)
		if !almostEqual(got, tc.want, 1e-12) {
			t.Errorf("%s: Quantile(%v, 0.5) = %v, want %v", tc.name, tc.values, got, tc.want)
		}
	}
}

func TestQuantile_EmptyAndExtremes(t *testing.T) {
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Error("empty input should yield NaN")
	}
	if !math.IsNaN(Quantile([]float64{math.NaN(), math.Inf(1)}, 0.5)) {
		t.Error("all-non-finite input should yield NaN")
	}
	vals := []float64{3, 1, 4, 1, 5}
	if got := Quantile(vals, 0); got != 1 {
		t.Errorf("q=0 should be min, got %v", got)
	}
	if got := Quantile(vals, 1); got != 5 {
		t.Errorf("q=1 should be max, got %v", got)
	}
}

func TestPearson_SelfCorrelationIsOne(t *testing.T) {
	x := []float64{1.5, 2.2, 3.7, 4.1, 5.9, 6.3}
	if got := Pearson(x, x); !almostEqual(got, 1, 1e-12) {
		t.Errorf("Pearson(x, x) = %v, want 1", got)
	}
}

func TestPearson_PairwiseDeletion(t *testing.T) {
	x := []float64{1, 2, math.NaN(), 4, 5}
	y := []float64{2, 4, 100, 8, math.NaN()}
	// Only indices 0, 1, 3 survive; they are perfectly linear.
	got, pairs := PearsonPairs(x, y)
	if pairs != 3 {
		t.Fatalf("expected 3 valid pairs, got %d", pairs)
	}
	if !almostEqual(got, 1, 1e-12) {
		t.Errorf("Pearson on linear pairs = %v, want 1", got)
	}
}

func TestPearson_DegenerateInputs(t *testing.T) {
	if !math.IsNaN(Pearson([]float64{1}, []float64{2})) {
		t.Error("fewer than 2 pairs should yield NaN")
	}
	if !math.IsNaN(Pearson([]float64{3, 3, 3}, []float64{1, 2, 3})) {
		t.Error("zero variance should yield NaN")
	}
}

func TestRanks_AverageTies(t *testing.T) {
	got := Ranks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("Ranks = %v, want %v", got, want)
		}
	}
}

func TestSpearman_MonotoneNonlinearIsOne(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125} // x³: nonlinear but strictly monotone
	if got := Spearman(x, y); !almostEqual(got, 1, 1e-12) {
		t.Errorf("Spearman on monotone data = %v, want 1", got)
	}
}

func TestPartialCorrelation_RemovesConfounder(t *testing.T) {
	// x and y are both driven entirely by c; controlling for c should
	// collapse the correlation toward zero.
	n := 50
	c := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = float64(i)
		x[i] = 2*c[i] + math.Sin(float64(i)*0.7)*0.01
		y[i] = -3*c[i] + math.Cos(float64(i)*1.3)*0.01
	}
	raw := Pearson(x, y)
	if math.Abs(raw) < 0.99 {
		t.Fatalf("setup broken: raw correlation %v should be near -1", raw)
	}
	partial := PartialCorrelation(x, y, [][]float64{c})
	if math.Abs(partial) > 0.5 {
		t.Errorf("partial correlation after controlling for confounder = %v, want near 0", partial)
	}
}
