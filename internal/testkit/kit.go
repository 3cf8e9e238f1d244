// Package testkit generates seeded synthetic daily series with known,
// recoverable structure: a drift, a level step, a weekly cycle, noise and
// missing days. Tests assert that the analysis layer finds exactly the
// structure that was baked in.
package testkit

import (
	"math"
	"math/rand"
	"time"

	"nocturna/domain/series"
)

type Config struct {
	Days      int
	Seed      int64
	StartDate time.Time

	Baseline    float64
	TrendPerDay float64

	// Step parameters: a level shift of StepSize starting at day StepDay.
	// StepDay < 0 disables the step.
	StepDay  int
	StepSize float64

	// Season parameters: a sine cycle of the given length and amplitude.
	// SeasonLength < 2 disables the cycle.
	SeasonLength    int
	SeasonAmplitude float64

	NoiseSigma float64

	// MissingRate is the probability a day is recorded with a NaN value;
	// GapRate is the probability a day is absent from the series entirely.
	MissingRate float64
	GapRate     float64
}

func DefaultConfig() Config {
	return Config{
		Days:            365,
		Seed:            42,
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Baseline:        6,
		TrendPerDay:     0,
		StepDay:         -1,
		SeasonLength:    0,
		SeasonAmplitude: 0,
		NoiseSigma:      0.5,
	}
}

// Generate builds the synthetic series. The same config always produces the
// same series.
func Generate(cfg Config) series.Series {
	rng := rand.New(rand.NewSource(cfg.Seed))

	out := make(series.Series, 0, cfg.Days)
	for i := 0; i < cfg.Days; i++ {
		if cfg.GapRate > 0 && rng.Float64() < cfg.GapRate {
			continue
		}
		date := cfg.StartDate.AddDate(0, 0, i)

		if cfg.MissingRate > 0 && rng.Float64() < cfg.MissingRate {
			out = append(out, series.TimePoint{Date: date, Value: math.NaN()})
			continue
		}

		v := cfg.Baseline + cfg.TrendPerDay*float64(i)
		if cfg.StepDay >= 0 && i >= cfg.StepDay {
			v += cfg.StepSize
		}
		if cfg.SeasonLength >= 2 {
			v += cfg.SeasonAmplitude * math.Sin(2*math.Pi*float64(i%cfg.SeasonLength)/float64(cfg.SeasonLength))
		}
		v += rng.NormFloat64() * cfg.NoiseSigma

		out = append(out, series.TimePoint{Date: date, Value: v})
	}
	return out
}

// TwoGroups splits a generated series' finite values at a day boundary,
// for group-difference tests with a known shift between the halves.
func TwoGroups(s series.Series, splitDay time.Time) (before, after []float64) {
	for _, p := range s {
		if math.IsNaN(p.Value) {
			continue
		}
		if p.Date.Before(splitDay) {
			before = append(before, p.Value)
		} else {
			after = append(after, p.Value)
		}
	}
	return before, after
}
