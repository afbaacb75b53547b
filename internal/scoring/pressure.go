// Package scoring implements the derived-index engines: barometric pressure
// trend classification, biogeochemical fishing enhancement, and surf day
// grading. Everything here is a pure, synchronous function of canonical
// records -- safe to call from any goroutine, no I/O, no shared state.
package scoring

import (
	"fmt"
	"math"
	"time"

	"tidecast/internal/types"
)

// Classification thresholds over the 3-hour pressure delta, in hPa.
// A drop of exactly 5.0 is already rapid_falling; +/-2.0 are the
// steady/rising and steady/falling boundaries.
const (
	rapidFallThresholdHpa = -5.0
	fallThresholdHpa      = -2.0
	riseThresholdHpa      = 2.0
)

// ClassifyPressureTrend derives the barometric tendency around targetTime
// from a weather timeseries. Samples at targetTime, -3h, and -6h are picked
// nearest-neighbor among pressure-bearing entries, ties broken by source
// order. Classification needs the now and -3h samples; the -6h sample is
// context only and never gates the category.
func ClassifyPressureTrend(series []types.WeatherRecord, targetTime time.Time) types.PressureTrend {
	now := nearestPressure(series, targetTime)
	threeAgo := nearestPressure(series, targetTime.Add(-3*time.Hour))
	sixAgo := nearestPressure(series, targetTime.Add(-6*time.Hour))

	trend := types.PressureTrend{
		Category:      types.TrendUnknown,
		PressureNow:   now,
		Pressure3hAgo: threeAgo,
		Pressure6hAgo: sixAgo,
	}

	if now == nil || threeAgo == nil {
		trend.Explanation = "insufficient pressure data to classify trend"
		return trend
	}

	delta3h := *now - *threeAgo
	trend.Delta3h = &delta3h
	if sixAgo != nil {
		delta6h := *now - *sixAgo
		trend.Delta6h = &delta6h
	}

	switch {
	case delta3h <= rapidFallThresholdHpa:
		trend.Category = types.TrendRapidFalling
		trend.Explanation = fmt.Sprintf("pressure dropped %.1f hPa in 3h; an approaching front, conditions changing fast", -delta3h)
	case delta3h <= fallThresholdHpa:
		trend.Category = types.TrendFalling
		trend.Explanation = fmt.Sprintf("pressure falling (%.1f hPa over 3h); fish often feed ahead of the change", -delta3h)
	case delta3h >= riseThresholdHpa:
		trend.Category = types.TrendRising
		trend.Explanation = fmt.Sprintf("pressure rising (%.1f hPa over 3h); stabilizing after a system", delta3h)
	default:
		trend.Category = types.TrendSteady
		trend.Explanation = fmt.Sprintf("pressure steady (%+.1f hPa over 3h)", delta3h)
	}
	return trend
}

// nearestPressure returns the pressure of the entry closest in time to
// target, considering only entries that carry a pressure value. Strictly
// closer wins; equal distance keeps the first-found entry.
func nearestPressure(series []types.WeatherRecord, target time.Time) *float64 {
	var best *float64
	bestDist := time.Duration(math.MaxInt64)

	for i := range series {
		if series[i].PressureHpa == nil {
			continue
		}
		dist := series[i].Timestamp.Sub(target)
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = series[i].PressureHpa
		}
	}
	return best
}
