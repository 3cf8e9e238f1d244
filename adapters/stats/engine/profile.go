package engine

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"nocturna/domain/core"
	"nocturna/domain/series"
)

// Summarize builds the descriptive profile of one series: sample counts,
// moments, quartiles and the calendar span. Summary statistics run over
// finite values only; an all-NaN series gets NaN statistics but keeps its
// counts and date span.
func Summarize(key core.SeriesKey, s series.Series) series.SeriesSummary {
	sorted := s.Sorted()
	finite := finiteOnly(sorted.Values())

	sum := series.SeriesSummary{
		Key:    key,
		N:      len(sorted),
		Finite: len(finite),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Median: math.NaN(),
		Q25:    math.NaN(),
		Q75:    math.NaN(),
	}
	if len(sorted) > 0 {
		sum.First = sorted[0].Date
		sum.Last = sorted[len(sorted)-1].Date
		sum.DaySpan = core.DaysBetween(sorted[0].Date, sorted[len(sorted)-1].Date) + 1
	}
	if len(finite) == 0 {
		return sum
	}

	data := mstats.Float64Data(finite)
	if v, err := data.Mean(); err == nil {
		sum.Mean = v
	}
	if v, err := data.StandardDeviationSample(); err == nil {
		sum.StdDev = v
	}
	if v, err := data.Min(); err == nil {
		sum.Min = v
	}
	if v, err := data.Max(); err == nil {
		sum.Max = v
	}
	// Quartiles come from the engine's own interpolating quantile so the
	// summary median matches rolling medians on identical data.
	sum.Median = Quantile(finite, 0.5)
	sum.Q25 = Quantile(finite, 0.25)
	sum.Q75 = Quantile(finite, 0.75)
	return sum
}
