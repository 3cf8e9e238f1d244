package engine

import (
	"math"
	"testing"
)

func TestDetectChangePoints_SingleStep(t *testing.T) {
	vals := make([]float64, 60)
	for i := range vals {
		if i < 30 {
			vals[i] = 1
		} else {
			vals[i] = 5
		}
	}
	cps := DetectChangePoints(consecutiveSeries(vals), 8)
	if len(cps) != 1 {
		t.Fatalf("expected exactly 1 change point, got %d: %+v", len(cps), cps)
	}
	if cps[0].Index != 30 {
		t.Errorf("change point at index %d, want 30", cps[0].Index)
	}
	if !cps[0].Date.Equal(day(30)) {
		t.Errorf("change point date %v, want %v", cps[0].Date, day(30))
	}
}

func TestDetectChangePoints_ConstantSeriesHasNone(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 3.5
	}
	cps := DetectChangePoints(consecutiveSeries(vals), 8)
	if len(cps) != 0 {
		t.Errorf("constant series should have no change points, got %+v", cps)
	}
}

func TestDetectChangePoints_PenaltyControlsSensitivity(t *testing.T) {
	// Two mild steps; a harsh penalty should suppress them.
	vals := make([]float64, 30)
	for i := range vals {
		switch {
		case i < 10:
			vals[i] = 1
		case i < 20:
			vals[i] = 2
		default:
			vals[i] = 3
		}
	}
	s := consecutiveSeries(vals)
	lenient := DetectChangePoints(s, 0.5)
	harsh := DetectChangePoints(s, 1e6)
	if len(lenient) < 2 {
		t.Errorf("lenient penalty should find both steps, got %d", len(lenient))
	}
	if len(harsh) != 0 {
		t.Errorf("harsh penalty should suppress all change points, got %d", len(harsh))
	}
}

func TestDetectChangePoints_IgnoresNaNGaps(t *testing.T) {
	vals := make([]float64, 60)
	for i := range vals {
		if i < 30 {
			vals[i] = 1
		} else {
			vals[i] = 5
		}
	}
	vals[10] = math.NaN()
	vals[45] = math.NaN()
	cps := DetectChangePoints(consecutiveSeries(vals), 8)
	if len(cps) != 1 || cps[0].Index != 30 {
		t.Errorf("NaN holes should not move the detected step, got %+v", cps)
	}
}

func TestDetectChangePoints_DegenerateInput(t *testing.T) {
	if cps := DetectChangePoints(nil, 8); cps == nil || len(cps) != 0 {
		t.Errorf("nil series should yield empty non-nil slice, got %#v", cps)
	}
	one := consecutiveSeries([]float64{4})
	if cps := DetectChangePoints(one, 8); len(cps) != 0 {
		t.Errorf("single point should yield no change points, got %+v", cps)
	}
}
