package engine

import (
	"math"
	"math/rand"
	"testing"
)

func TestACF_LagZeroIsOne(t *testing.T) {
	s := consecutiveSeries([]float64{1, 4, 2, 8, 5, 7, 3, 6})
	cg := ACF(s, 3, DefaultAlpha)
	if len(cg.Entries) != 4 {
		t.Fatalf("expected lags 0..3, got %d entries", len(cg.Entries))
	}
	if cg.Entries[0].Lag != 0 || !almostEqual(cg.Entries[0].R, 1, 1e-12) {
		t.Errorf("ACF at lag 0 = %+v, want r=1", cg.Entries[0])
	}
}

func TestACF_PeriodicSeriesPeaksAtSeasonLag(t *testing.T) {
	pattern := []float64{0, 2, 5, 7, 5, 2, 0}
	vals := make([]float64, 70)
	for i := range vals {
		vals[i] = pattern[i%7]
	}
	cg := ACF(consecutiveSeries(vals), 10, DefaultAlpha)
	at := func(lag int) float64 {
		for _, e := range cg.Entries {
			if e.Lag == lag {
				return e.R
			}
		}
		t.Fatalf("missing lag %d", lag)
		return math.NaN()
	}
	if r := at(7); !almostEqual(r, 1, 1e-9) {
		t.Errorf("ACF at the season lag = %v, want 1", r)
	}
	if r := at(3); r > 0.5 {
		t.Errorf("off-season lag 3 should not dominate, got %v", r)
	}
}

func TestACF_PairCountsReflectMissingValues(t *testing.T) {
	vals := []float64{1, 2, 3, math.NaN(), 5, 6, 7, 8}
	cg := ACF(consecutiveSeries(vals), 1, DefaultAlpha)
	lag1 := cg.Entries[1]
	// 7 aligned positions at lag 1; the NaN knocks out two of them.
	if lag1.Pairs != 5 {
		t.Errorf("lag-1 pair count = %d, want 5", lag1.Pairs)
	}
}

func TestACF_ConfBoundShrinksWithSampleSize(t *testing.T) {
	small := ACF(consecutiveSeries(seasonalSeries(20, 7)), 3, DefaultAlpha)
	large := ACF(consecutiveSeries(seasonalSeries(200, 7)), 3, DefaultAlpha)
	if !(large.ConfBound < small.ConfBound) {
		t.Errorf("band should shrink with n: n=20 → %v, n=200 → %v", small.ConfBound, large.ConfBound)
	}
	want := criticalZ(DefaultAlpha) / math.Sqrt(200)
	if !almostEqual(large.ConfBound, want, 1e-12) {
		t.Errorf("ConfBound = %v, want z/√n = %v", large.ConfBound, want)
	}
}

func TestPACF_StartsAtLagOneMatchingACF(t *testing.T) {
	s := consecutiveSeries(seasonalSeries(80, 7))
	acf := ACF(s, 5, DefaultAlpha)
	pacf := PACF(s, 5, DefaultAlpha)

	if len(pacf.Entries) == 0 || pacf.Entries[0].Lag != 1 {
		t.Fatalf("PACF should start at lag 1, got %+v", pacf.Entries)
	}
	// Lag 1 has no intermediate lags to regress out.
	if !almostEqual(pacf.Entries[0].R, acf.Entries[1].R, 1e-9) {
		t.Errorf("PACF lag 1 = %v, want ACF lag 1 = %v", pacf.Entries[0].R, acf.Entries[1].R)
	}
}

func TestPACF_AR1ProcessCutsOffAfterLagOne(t *testing.T) {
	// Seeded AR(1): x[t] = 0.8·x[t−1] + noise. Fixed seed keeps the test
	// deterministic.
	rng := rand.New(rand.NewSource(7))
	n := 300
	vals := make([]float64, n)
	for i := 1; i < n; i++ {
		vals[i] = 0.8*vals[i-1] + rng.NormFloat64()
	}
	pacf := PACF(consecutiveSeries(vals), 5, DefaultAlpha)

	if math.Abs(pacf.Entries[0].R) < 0.5 {
		t.Errorf("AR(1) PACF lag 1 = %v, want strong", pacf.Entries[0].R)
	}
	for _, e := range pacf.Entries[1:] {
		if math.Abs(e.R) > 0.3 {
			t.Errorf("AR(1) PACF should cut off after lag 1; lag %d = %v", e.Lag, e.R)
		}
	}
}

func TestCorrelogram_MaxLagClampedToSeries(t *testing.T) {
	s := consecutiveSeries([]float64{1, 2, 3})
	cg := ACF(s, 50, DefaultAlpha)
	if got := cg.Entries[len(cg.Entries)-1].Lag; got != 2 {
		t.Errorf("max lag should clamp to n−1 = 2, got %d", got)
	}
}
