package engine

import (
	"math"
	"testing"
)

func seasonalSeries(n, period int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 10 + 0.1*float64(i) + 3*math.Sin(2*math.Pi*float64(i%period)/float64(period))
	}
	return vals
}

func TestDecompose_ReconstructionIsExact(t *testing.T) {
	vals := seasonalSeries(56, 7)
	vals[13] = math.NaN()
	d := Decompose(consecutiveSeries(vals), 7)

	for i, v := range vals {
		if !isFinite(v) {
			if !math.IsNaN(d.Residual[i]) {
				t.Errorf("residual[%d] should be NaN where value is NaN, got %v", i, d.Residual[i])
			}
			continue
		}
		recon := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		if !almostEqual(recon, v, 1e-9) {
			t.Errorf("reconstruction at %d: %v, want %v", i, recon, v)
		}
	}
}

func TestDecompose_SeasonalIsPeriodicAndCentered(t *testing.T) {
	d := Decompose(consecutiveSeries(seasonalSeries(70, 7)), 7)

	for i := 7; i < len(d.Seasonal); i++ {
		if !almostEqual(d.Seasonal[i], d.Seasonal[i-7], 1e-9) {
			t.Fatalf("seasonal component must tile with period 7: s[%d]=%v s[%d]=%v",
				i, d.Seasonal[i], i-7, d.Seasonal[i-7])
		}
	}

	sum := 0.0
	for p := 0; p < 7; p++ {
		sum += d.Seasonal[p]
	}
	if !almostEqual(sum, 0, 1e-9) {
		t.Errorf("seasonal pattern should be zero-centered, sums to %v", sum)
	}
}

func TestDecompose_TrendTracksDriftNotSeason(t *testing.T) {
	// Strong weekly cycle on a slow drift: the trend should rise steadily
	// and carry far less of the cycle's amplitude than the raw values.
	vals := seasonalSeries(70, 7)
	d := Decompose(consecutiveSeries(vals), 7)

	interior := d.Trend[7 : len(d.Trend)-7]
	for i := 1; i < len(interior); i++ {
		if interior[i]-interior[i-1] < -1 {
			t.Fatalf("trend dips by %v at interior index %d; smoothing failed",
				interior[i]-interior[i-1], i)
		}
	}
}

func TestDecompose_DegenerateInputs(t *testing.T) {
	short := consecutiveSeries([]float64{1, 2, 3})
	d := Decompose(short, 7) // series shorter than one season
	for i, p := range short {
		if d.Trend[i] != p.Value {
			t.Errorf("degenerate trend[%d] = %v, want copy of input %v", i, d.Trend[i], p.Value)
		}
		if d.Seasonal[i] != 0 || d.Residual[i] != 0 {
			t.Errorf("degenerate seasonal/residual at %d should be zero", i)
		}
	}

	if d := Decompose(nil, 7); len(d.Trend) != 0 {
		t.Errorf("empty series should yield empty components, got %+v", d)
	}
	if d := Decompose(short, 1); d.Seasonal[0] != 0 {
		t.Errorf("season length < 2 should be degenerate, got %+v", d)
	}
}
