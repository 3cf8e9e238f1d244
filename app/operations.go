package app

import (
	"context"

	"nocturna/adapters/stats/engine"
	"nocturna/domain/core"
	"nocturna/domain/series"
)

// Single-chart operations. Each resolves the series, applies parameter
// defaults and runs one engine computation; the full Report fans these out
// together.

func (s *AnalysisService) Summary(ctx context.Context, key core.SeriesKey) (*series.SeriesSummary, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	sum := engine.Summarize(key, data)
	return &sum, nil
}

func (s *AnalysisService) Rolling(ctx context.Context, key core.SeriesKey, p Params) ([]series.RollingResult, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	return engine.ComputeRolling(data, engine.RollingConfig{
		Windows:   p.RollingWindows,
		Threshold: *p.ComplianceThreshold,
		Alpha:     p.Alpha,
	}), nil
}

// Breakpoints crosses the first two configured rolling averages (short vs
// long). With fewer than two windows there is nothing to cross.
func (s *AnalysisService) Breakpoints(ctx context.Context, key core.SeriesKey, p Params) ([]series.Breakpoint, error) {
	rolling, err := s.Rolling(ctx, key, p)
	if err != nil {
		return nil, err
	}
	if len(rolling) < 2 {
		return nil, nil
	}
	p = s.resolveParams(p)
	short, long := rolling[0], rolling[1]
	return engine.DetectBreakpoints(short.Dates, short.Avg, long.Avg, p.BreakpointMinDelta), nil
}

func (s *AnalysisService) ChangePoints(ctx context.Context, key core.SeriesKey, p Params) ([]series.ChangePoint, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	return engine.DetectChangePoints(data, p.ChangePenalty), nil
}

func (s *AnalysisService) Decompose(ctx context.Context, key core.SeriesKey, p Params) (*series.Decomposition, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	d := engine.Decompose(data, p.SeasonLength)
	return &d, nil
}

func (s *AnalysisService) Correlogram(ctx context.Context, key core.SeriesKey, p Params, partial bool) (*series.Correlogram, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	var cg series.Correlogram
	if partial {
		cg = engine.PACF(data, p.MaxLag, p.Alpha)
	} else {
		cg = engine.ACF(data, p.MaxLag, p.Alpha)
	}
	return &cg, nil
}

// Smooth returns the LOESS trend plus the 25/75 running-quantile band.
func (s *AnalysisService) Smooth(ctx context.Context, key core.SeriesKey, p Params) (trend, bandLow, bandHigh series.Curve, err error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return trend, bandLow, bandHigh, err
	}
	p = s.resolveParams(p)
	x, y := dayScatter(data.Sorted())
	trend = engine.Loess(x, y, p.LoessAlpha)
	bandLow = engine.RunningQuantile(x, y, p.QuantileNeighbors, 0.25)
	bandHigh = engine.RunningQuantile(x, y, p.QuantileNeighbors, 0.75)
	return trend, bandLow, bandHigh, nil
}

func (s *AnalysisService) Survival(ctx context.Context, key core.SeriesKey, p Params) (*series.SurvivalCurve, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	curve := engine.KaplanMeier(data.Values(), p.Alpha)
	return &curve, nil
}
