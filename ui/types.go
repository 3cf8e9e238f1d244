package ui

import (
	"math"
	"time"

	"nocturna/app"
	"nocturna/domain/series"
)

const dateLayout = "2006-01-02"

// analysisRequest is the shared request body. Key selects the series; the
// parameter fields are optional overrides of the configured defaults.
type analysisRequest struct {
	Key string `json:"key"`

	Alpha   float64 `json:"alpha,omitempty"`
	Windows []int   `json:"windows,omitempty"`
	// Pointer so an explicit 0 (every value compliant) is distinct from unset.
	ComplianceThreshold *float64 `json:"compliance_threshold,omitempty"`
	MinDelta            float64  `json:"min_delta,omitempty"`
	Penalty             float64  `json:"penalty,omitempty"`
	SeasonLength        int      `json:"season_length,omitempty"`
	MaxLag              int      `json:"max_lag,omitempty"`
	Partial             bool     `json:"partial,omitempty"` // correlogram: PACF instead of ACF
	LoessAlpha          float64  `json:"loess_alpha,omitempty"`
	QuantileNeighbors   int      `json:"quantile_neighbors,omitempty"`

	// Mann–Whitney: either a second series, or a date splitting Key.
	KeyB      string `json:"key_b,omitempty"`
	SplitDate string `json:"split_date,omitempty"`
}

func (r analysisRequest) params() app.Params {
	return app.Params{
		Alpha:               r.Alpha,
		RollingWindows:      r.Windows,
		ComplianceThreshold: r.ComplianceThreshold,
		BreakpointMinDelta:  r.MinDelta,
		ChangePenalty:       r.Penalty,
		SeasonLength:        r.SeasonLength,
		MaxLag:              r.MaxLag,
		LoessAlpha:          r.LoessAlpha,
		QuantileNeighbors:   r.QuantileNeighbors,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// num maps NaN/Inf to null; encoding/json rejects them outright.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nums(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = num(v)
	}
	return out
}

func dateStrings(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dateLayout)
	}
	return out
}

// ============================================================================
// RESPONSE DTOS
// ============================================================================

type summaryResponse struct {
	Key     string   `json:"key"`
	N       int      `json:"n"`
	Finite  int      `json:"finite"`
	Mean    *float64 `json:"mean"`
	StdDev  *float64 `json:"std_dev"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Median  *float64 `json:"median"`
	Q25     *float64 `json:"q25"`
	Q75     *float64 `json:"q75"`
	First   string   `json:"first_date,omitempty"`
	Last    string   `json:"last_date,omitempty"`
	DaySpan int      `json:"day_span"`
}

func toSummaryResponse(s series.SeriesSummary) summaryResponse {
	resp := summaryResponse{
		Key:     s.Key.String(),
		N:       s.N,
		Finite:  s.Finite,
		Mean:    num(s.Mean),
		StdDev:  num(s.StdDev),
		Min:     num(s.Min),
		Max:     num(s.Max),
		Median:  num(s.Median),
		Q25:     num(s.Q25),
		Q75:     num(s.Q75),
		DaySpan: s.DaySpan,
	}
	if !s.First.IsZero() {
		resp.First = s.First.Format(dateLayout)
		resp.Last = s.Last.Format(dateLayout)
	}
	return resp
}

type rollingResponse struct {
	Window      int        `json:"window_days"`
	Dates       []string   `json:"dates"`
	Avg         []*float64 `json:"avg"`
	AvgCILow    []*float64 `json:"avg_ci_low"`
	AvgCIHigh   []*float64 `json:"avg_ci_high"`
	Median      []*float64 `json:"median"`
	MedianCILow []*float64 `json:"median_ci_low"`
	MedianCIHi  []*float64 `json:"median_ci_high"`
	Compliance  []*float64 `json:"compliance"`
}

func toRollingResponse(r series.RollingResult) rollingResponse {
	return rollingResponse{
		Window:      r.Window,
		Dates:       dateStrings(r.Dates),
		Avg:         nums(r.Avg),
		AvgCILow:    nums(r.AvgCILow),
		AvgCIHigh:   nums(r.AvgCIHigh),
		Median:      nums(r.Median),
		MedianCILow: nums(r.MedianCILow),
		MedianCIHi:  nums(r.MedianCIHi),
		Compliance:  nums(r.Compliance),
	}
}

type breakpointResponse struct {
	Index int      `json:"index"`
	Date  string   `json:"date"`
	Delta *float64 `json:"delta"`
}

func toBreakpointResponses(bps []series.Breakpoint) []breakpointResponse {
	out := make([]breakpointResponse, len(bps))
	for i, bp := range bps {
		out[i] = breakpointResponse{Index: bp.Index, Date: bp.Date.Format(dateLayout), Delta: num(bp.Delta)}
	}
	return out
}

type changePointResponse struct {
	Index int    `json:"index"`
	Date  string `json:"date"`
}

func toChangePointResponses(cps []series.ChangePoint) []changePointResponse {
	out := make([]changePointResponse, len(cps))
	for i, cp := range cps {
		out[i] = changePointResponse{Index: cp.Index, Date: cp.Date.Format(dateLayout)}
	}
	return out
}

type decomposeResponse struct {
	SeasonLength int        `json:"season_length"`
	Trend        []*float64 `json:"trend"`
	Seasonal     []*float64 `json:"seasonal"`
	Residual     []*float64 `json:"residual"`
}

func toDecomposeResponse(d series.Decomposition) decomposeResponse {
	return decomposeResponse{
		SeasonLength: d.SeasonLength,
		Trend:        nums(d.Trend),
		Seasonal:     nums(d.Seasonal),
		Residual:     nums(d.Residual),
	}
}

type correlogramEntryResponse struct {
	Lag   int      `json:"lag"`
	R     *float64 `json:"r"`
	Pairs int      `json:"pairs"`
}

type correlogramResponse struct {
	Partial   bool                       `json:"partial"`
	ConfBound *float64                   `json:"conf_bound"`
	Entries   []correlogramEntryResponse `json:"entries"`
}

func toCorrelogramResponse(cg series.Correlogram, partial bool) correlogramResponse {
	entries := make([]correlogramEntryResponse, len(cg.Entries))
	for i, e := range cg.Entries {
		entries[i] = correlogramEntryResponse{Lag: e.Lag, R: num(e.R), Pairs: e.Pairs}
	}
	return correlogramResponse{Partial: partial, ConfBound: num(cg.ConfBound), Entries: entries}
}

type curveResponse struct {
	X []*float64 `json:"x"`
	Y []*float64 `json:"y"`
}

func toCurveResponse(c series.Curve) curveResponse {
	return curveResponse{X: nums(c.X), Y: nums(c.Y)}
}

type loessResponse struct {
	Trend    curveResponse `json:"trend"`
	BandLow  curveResponse `json:"band_low"`
	BandHigh curveResponse `json:"band_high"`
}

type mannWhitneyResponse struct {
	U            *float64 `json:"u"`
	U1           *float64 `json:"u1"`
	U2           *float64 `json:"u2"`
	Z            *float64 `json:"z"`
	P            *float64 `json:"p"`
	Effect       *float64 `json:"effect"`
	EffectCILow  *float64 `json:"effect_ci_low"`
	EffectCIHigh *float64 `json:"effect_ci_high"`
	Method       string   `json:"method"`
	N1           int      `json:"n1"`
	N2           int      `json:"n2"`
}

func toMannWhitneyResponse(r series.MannWhitneyResult) mannWhitneyResponse {
	return mannWhitneyResponse{
		U:            num(r.U),
		U1:           num(r.U1),
		U2:           num(r.U2),
		Z:            num(r.Z),
		P:            num(r.P),
		Effect:       num(r.Effect),
		EffectCILow:  num(r.EffectCILow),
		EffectCIHigh: num(r.EffectCIHigh),
		Method:       string(r.Method),
		N1:           r.N1,
		N2:           r.N2,
	}
}

type survivalResponse struct {
	Times    []*float64 `json:"times"`
	Survival []*float64 `json:"survival"`
	Lower    []*float64 `json:"lower"`
	Upper    []*float64 `json:"upper"`
}

func toSurvivalResponse(c series.SurvivalCurve) survivalResponse {
	return survivalResponse{
		Times:    nums(c.Times),
		Survival: nums(c.Survival),
		Lower:    nums(c.Lower),
		Upper:    nums(c.Upper),
	}
}

type reportResponse struct {
	ID          string                `json:"id"`
	Key         string                `json:"key"`
	GeneratedAt time.Time             `json:"generated_at"`
	RuntimeMs   int64                 `json:"runtime_ms"`
	Summary     summaryResponse       `json:"summary"`
	Rolling     []rollingResponse     `json:"rolling"`
	Breakpoints []breakpointResponse  `json:"breakpoints"`
	Changes     []changePointResponse `json:"change_points"`
	Decomp      decomposeResponse     `json:"decomposition"`
	ACF         correlogramResponse   `json:"acf"`
	PACF        correlogramResponse   `json:"pacf"`
	Loess       loessResponse         `json:"loess"`
	Survival    survivalResponse      `json:"survival"`
}

func toReportResponse(r *app.AnalysisReport) reportResponse {
	rolling := make([]rollingResponse, len(r.Rolling))
	for i, rr := range r.Rolling {
		rolling[i] = toRollingResponse(rr)
	}
	return reportResponse{
		ID:          r.ID.String(),
		Key:         r.Key.String(),
		GeneratedAt: r.GeneratedAt.Time(),
		RuntimeMs:   r.RuntimeMs,
		Summary:     toSummaryResponse(r.Summary),
		Rolling:     rolling,
		Breakpoints: toBreakpointResponses(r.Breakpoints),
		Changes:     toChangePointResponses(r.Changes),
		Decomp:      toDecomposeResponse(r.Decomp),
		ACF:         toCorrelogramResponse(r.ACF, false),
		PACF:        toCorrelogramResponse(r.PACF, true),
		Loess: loessResponse{
			Trend:    toCurveResponse(r.Trend),
			BandLow:  toCurveResponse(r.BandLow),
			BandHigh: toCurveResponse(r.BandHigh),
		},
		Survival: toSurvivalResponse(r.Survival),
	}
}
