// Package app orchestrates the statistical engine over loaded series data:
// it resolves which series a request refers to, fans the independent
// computations out concurrently, and assembles the full report.
package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nocturna/adapters/stats/engine"
	"nocturna/domain/core"
	"nocturna/domain/series"
	"nocturna/internal"
	"nocturna/internal/config"
	"nocturna/internal/errors"
	"nocturna/ports"
)

// AnalysisService runs engine computations against a loaded series bundle.
// It is safe for concurrent use: the HTTP layer shares one instance across
// request goroutines, so the bundle cache is guarded by a mutex. Bundles are
// immutable once loaded, so handlers may keep using a pointer obtained
// before a concurrent Reload swapped the cache.
type AnalysisService struct {
	reader   ports.SeriesReader
	defaults config.EngineConfig
	logger   *internal.Logger

	mu     sync.Mutex
	bundle *ports.SeriesBundle
}

// NewAnalysisService creates the service. The bundle is loaded lazily on
// first use and cached; Reload forces a fresh read.
func NewAnalysisService(reader ports.SeriesReader, defaults config.EngineConfig, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{reader: reader, defaults: defaults, logger: logger}
}

// Params are the per-request engine parameters. Zero values fall back to the
// configured defaults, so API callers only send what they want to override.
// ComplianceThreshold is a pointer because zero is a meaningful threshold
// (every finite value compliant), not an absent one.
type Params struct {
	Alpha               float64
	RollingWindows      []int
	ComplianceThreshold *float64
	BreakpointMinDelta  float64
	ChangePenalty       float64
	SeasonLength        int
	MaxLag              int
	LoessAlpha          float64
	QuantileNeighbors   int
}

func (s *AnalysisService) resolveParams(p Params) Params {
	d := s.defaults
	if !(p.Alpha > 0 && p.Alpha < 1) {
		p.Alpha = d.Alpha
	}
	if len(p.RollingWindows) == 0 {
		p.RollingWindows = d.RollingWindows
	}
	if p.ComplianceThreshold == nil {
		p.ComplianceThreshold = &d.ComplianceThreshold
	}
	if p.BreakpointMinDelta <= 0 {
		p.BreakpointMinDelta = d.BreakpointMinDelta
	}
	if p.ChangePenalty <= 0 {
		p.ChangePenalty = d.ChangePenalty
	}
	if p.SeasonLength < 2 {
		p.SeasonLength = d.SeasonLength
	}
	if p.MaxLag < 1 {
		p.MaxLag = d.MaxLag
	}
	if !(p.LoessAlpha > 0 && p.LoessAlpha <= 1) {
		p.LoessAlpha = d.LoessAlpha
	}
	if p.QuantileNeighbors < 1 {
		p.QuantileNeighbors = d.QuantileNeighbors
	}
	return p
}

// AnalysisReport is the complete analysis of one series.
type AnalysisReport struct {
	ID          core.ReportID          `json:"id"`
	Key         core.SeriesKey         `json:"key"`
	GeneratedAt core.Timestamp         `json:"generated_at"`
	RuntimeMs   int64                  `json:"runtime_ms"`
	Summary     series.SeriesSummary   `json:"summary"`
	Rolling     []series.RollingResult `json:"rolling"`
	Breakpoints []series.Breakpoint    `json:"breakpoints"`
	Changes     []series.ChangePoint   `json:"change_points"`
	Decomp      series.Decomposition   `json:"decomposition"`
	ACF         series.Correlogram     `json:"acf"`
	PACF        series.Correlogram     `json:"pacf"`
	Trend       series.Curve           `json:"trend"`
	BandLow     series.Curve           `json:"band_low"`
	BandHigh    series.Curve           `json:"band_high"`
	Survival    series.SurvivalCurve   `json:"survival"`
}

// Series resolves a key against the loaded bundle.
func (s *AnalysisService) Series(ctx context.Context, key core.SeriesKey) (series.Series, error) {
	bundle, err := s.loadBundle(ctx)
	if err != nil {
		return nil, err
	}
	data := bundle.Get(key)
	if data == nil {
		return nil, errors.NotFound("series " + key.String())
	}
	return data, nil
}

// Keys lists the available series keys.
func (s *AnalysisService) Keys(ctx context.Context) ([]core.SeriesKey, error) {
	bundle, err := s.loadBundle(ctx)
	if err != nil {
		return nil, err
	}
	return bundle.Keys(), nil
}

// Reload discards the cached bundle and reads the source again. The read
// happens outside the lock so concurrent requests keep serving the old
// bundle until the new one is ready.
func (s *AnalysisService) Reload(ctx context.Context) error {
	bundle, err := s.reader.Read(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reload series data")
	}
	s.mu.Lock()
	s.bundle = bundle
	s.mu.Unlock()
	return nil
}

func (s *AnalysisService) loadBundle(ctx context.Context) (*ports.SeriesBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle != nil {
		return s.bundle, nil
	}
	if s.reader == nil {
		return nil, errors.InternalError("no series reader configured")
	}
	bundle, err := s.reader.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load series data")
	}
	s.bundle = bundle
	return s.bundle, nil
}

// Report runs every analysis over one series and assembles the full report.
// The computations are independent, so they fan out concurrently; the engine
// never returns errors, so the group only propagates context cancellation.
func (s *AnalysisService) Report(ctx context.Context, key core.SeriesKey, p Params) (*AnalysisReport, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	start := time.Now()

	report := &AnalysisReport{
		ID:          core.ReportID(core.NewID()),
		Key:         key,
		GeneratedAt: core.Now(),
	}
	sorted := data.Sorted()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Summary = engine.Summarize(key, sorted)
		return ctx.Err()
	})
	g.Go(func() error {
		report.Rolling = engine.ComputeRolling(sorted, engine.RollingConfig{
			Windows:   p.RollingWindows,
			Threshold: *p.ComplianceThreshold,
			Alpha:     p.Alpha,
		})
		if len(report.Rolling) >= 2 {
			short, long := report.Rolling[0], report.Rolling[1]
			report.Breakpoints = engine.DetectBreakpoints(short.Dates, short.Avg, long.Avg, p.BreakpointMinDelta)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		report.Changes = engine.DetectChangePoints(sorted, p.ChangePenalty)
		return ctx.Err()
	})
	g.Go(func() error {
		report.Decomp = engine.Decompose(sorted, p.SeasonLength)
		return ctx.Err()
	})
	g.Go(func() error {
		report.ACF = engine.ACF(sorted, p.MaxLag, p.Alpha)
		report.PACF = engine.PACF(sorted, p.MaxLag, p.Alpha)
		return ctx.Err()
	})
	g.Go(func() error {
		x, y := dayScatter(sorted)
		report.Trend = engine.Loess(x, y, p.LoessAlpha)
		report.BandLow = engine.RunningQuantile(x, y, p.QuantileNeighbors, 0.25)
		report.BandHigh = engine.RunningQuantile(x, y, p.QuantileNeighbors, 0.75)
		return ctx.Err()
	})
	g.Go(func() error {
		report.Survival = engine.KaplanMeier(sorted.Values(), p.Alpha)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.RuntimeMs = time.Since(start).Milliseconds()
	s.logger.Info("report %s for %s computed in %dms (n=%d)",
		report.ID, key, report.RuntimeMs, len(sorted))
	return report, nil
}

// Compare runs the Mann–Whitney U test between two series' finite values.
func (s *AnalysisService) Compare(ctx context.Context, keyA, keyB core.SeriesKey, p Params) (*series.MannWhitneyResult, error) {
	a, err := s.Series(ctx, keyA)
	if err != nil {
		return nil, err
	}
	b, err := s.Series(ctx, keyB)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)
	res := engine.MannWhitneyU(a.Values(), b.Values(), p.Alpha)
	return &res, nil
}

// CompareSplit runs the Mann–Whitney U test between the values of one
// series before and after a date boundary (boundary day goes to "after").
func (s *AnalysisService) CompareSplit(ctx context.Context, key core.SeriesKey, split time.Time, p Params) (*series.MannWhitneyResult, error) {
	data, err := s.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	p = s.resolveParams(p)

	boundary := core.DayNumber(split)
	var before, after []float64
	for _, pt := range data {
		if core.DayNumber(pt.Date) < boundary {
			before = append(before, pt.Value)
		} else {
			after = append(after, pt.Value)
		}
	}
	res := engine.MannWhitneyU(before, after, p.Alpha)
	return &res, nil
}

// dayScatter projects a series onto (day-number, value) coordinates for the
// smoothers, anchored at the first day so x starts at 0.
func dayScatter(sorted series.Series) (x, y []float64) {
	if len(sorted) == 0 {
		return nil, nil
	}
	base := core.DayNumber(sorted[0].Date)
	x = make([]float64, len(sorted))
	y = make([]float64, len(sorted))
	for i, pt := range sorted {
		x[i] = float64(core.DayNumber(pt.Date) - base)
		y[i] = pt.Value
	}
	return x, y
}
