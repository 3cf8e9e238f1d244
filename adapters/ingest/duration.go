package ingest

import (
	"math"
	"strconv"
	"strings"
)

// parseValue turns one cell into a float64. Plain numbers pass through;
// clock-style durations ("7:32:05", "7:32") convert to decimal hours, the
// unit nightly-usage exports use. Empty or unparseable cells become NaN —
// the row stays in the series so the day is known-but-missing rather than
// silently absent.
func parseValue(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	if h, ok := parseClockDuration(cell); ok {
		return h
	}
	return math.NaN()
}

// parseClockDuration converts "H:MM" or "H:MM:SS" to hours.
func parseClockDuration(cell string) (float64, bool) {
	parts := strings.Split(cell, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	s := 0
	if len(parts) == 3 {
		s, err = strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, false
		}
	}
	return float64(h) + float64(m)/60 + float64(s)/3600, true
}
