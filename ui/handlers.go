package ui

import (
	"encoding/json"
	"net/http"
	"time"

	"nocturna/domain/core"
	"nocturna/internal/errors"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleListSeries(w http.ResponseWriter, r *http.Request) {
	keys, err := a.service.Keys(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	a.writeJSON(w, http.StatusOK, map[string][]string{"series": out})
}

func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Reload(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	sum, err := a.service.Summary(r.Context(), key)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toSummaryResponse(*sum))
}

func (a *App) handleRolling(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	results, err := a.service.Rolling(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]rollingResponse, len(results))
	for i, res := range results {
		out[i] = toRollingResponse(res)
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"rolling": out})
}

func (a *App) handleBreakpoints(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	bps, err := a.service.Breakpoints(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"breakpoints": toBreakpointResponses(bps)})
}

func (a *App) handleChangePoints(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	cps, err := a.service.ChangePoints(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"change_points": toChangePointResponses(cps)})
}

func (a *App) handleDecompose(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	d, err := a.service.Decompose(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toDecomposeResponse(*d))
}

func (a *App) handleCorrelogram(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	cg, err := a.service.Correlogram(r.Context(), key, req.params(), req.Partial)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toCorrelogramResponse(*cg, req.Partial))
}

func (a *App) handleLoess(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	trend, low, high, err := a.service.Smooth(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, loessResponse{
		Trend:    toCurveResponse(trend),
		BandLow:  toCurveResponse(low),
		BandHigh: toCurveResponse(high),
	})
}

func (a *App) handleMannWhitney(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	switch {
	case req.KeyB != "":
		keyB, err := core.ParseSeriesKey(req.KeyB)
		if err != nil {
			a.writeError(w, errors.InvalidInput("key_b must not be empty"))
			return
		}
		res, err := a.service.Compare(r.Context(), key, keyB, req.params())
		if err != nil {
			a.writeError(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, toMannWhitneyResponse(*res))
	case req.SplitDate != "":
		split, err := time.Parse(dateLayout, req.SplitDate)
		if err != nil {
			a.writeError(w, errors.InvalidInput("split_date must be YYYY-MM-DD"))
			return
		}
		res, err := a.service.CompareSplit(r.Context(), key, split, req.params())
		if err != nil {
			a.writeError(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, toMannWhitneyResponse(*res))
	default:
		a.writeError(w, errors.InvalidInput("provide key_b or split_date"))
	}
}

func (a *App) handleSurvival(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	curve, err := a.service.Survival(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toSurvivalResponse(*curve))
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	req, key, ok := a.decode(w, r)
	if !ok {
		return
	}
	report, err := a.service.Report(r.Context(), key, req.params())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toReportResponse(report))
}

// decode parses the shared request body and validates the series key.
func (a *App) decode(w http.ResponseWriter, r *http.Request) (analysisRequest, core.SeriesKey, bool) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid JSON body"))
		return req, "", false
	}
	key, err := core.ParseSeriesKey(req.Key)
	if err != nil {
		a.writeError(w, errors.InvalidInput("key is required"))
		return req, "", false
	}
	return req, key, true
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	a.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
