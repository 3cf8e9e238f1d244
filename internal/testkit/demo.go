package testkit

import (
	"context"

	"nocturna/domain/core"
	"nocturna/domain/series"
	"nocturna/ports"
)

// DemoReader serves a synthetic bundle so the server runs without an input
// file: a year of nightly usage with a weekly cycle, an adherence step and
// realistic gaps, plus a noisy severity series.
type DemoReader struct{}

func NewDemoReader() *DemoReader { return &DemoReader{} }

var _ ports.SeriesReader = (*DemoReader)(nil)

func (r *DemoReader) Read(ctx context.Context) (*ports.SeriesBundle, error) {
	usage := DefaultConfig()
	usage.SeasonLength = 7
	usage.SeasonAmplitude = 0.8
	usage.StepDay = 180
	usage.StepSize = 1.2
	usage.MissingRate = 0.05
	usage.GapRate = 0.03

	severity := DefaultConfig()
	severity.Seed = 7
	severity.Baseline = 9
	severity.TrendPerDay = -0.01
	severity.NoiseSigma = 2

	return &ports.SeriesBundle{
		Source: "synthetic demo data",
		Series: map[core.SeriesKey]series.Series{
			"usage_hours": Generate(usage),
			"ahi":         Generate(severity),
		},
	}, nil
}
