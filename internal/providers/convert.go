package providers

import (
	"fmt"
	"sort"

	"tidecast/internal/types"
)

// Exact unit conversion factors. Adapters convert provider units to the
// canonical units once, at the boundary; nothing downstream converts.
const (
	mphToMps  = 0.44704
	kmhToMps  = 1.0 / 3.6
	mpsToKn   = 1.0 / 0.514444
	kmhToKn   = 1.0 / 1.852
)

// fahrenheitToCelsius converts exactly, without lossy rounding.
func fahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// compassDegrees maps 16-point compass labels to degrees.
var compassDegrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// ptr returns a pointer to v. Used when populating optional record fields.
func ptr(v float64) *float64 { return &v }

// checkWeatherSeries enforces the canonical series invariants after
// normalization: non-empty, and timestamps monotonic non-decreasing.
func checkWeatherSeries(provider types.ProviderID, records []types.WeatherRecord) error {
	if len(records) == 0 {
		return types.NewSchemaMismatch(provider, "timeseries", fmt.Errorf("no usable time-steps"))
	}
	if !sort.SliceIsSorted(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	}) {
		// Providers occasionally interleave model runs; sorting is part
		// of normalization, not a schema violation.
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp.Before(records[j].Timestamp)
		})
	}
	return nil
}

// checkMarineRecord rejects physically invalid marine values. Rejection
// happens here at the adapter, never as a silent clamp downstream.
func checkMarineRecord(provider types.ProviderID, r types.MarineRecord) error {
	if r.WaveHeightM < 0 {
		return types.NewSchemaMismatch(provider, "wave_height_m",
			fmt.Errorf("negative wave height %.2f", r.WaveHeightM))
	}
	if r.WaterTempC < types.MinWaterTempC || r.WaterTempC > types.MaxWaterTempC {
		return types.NewSchemaMismatch(provider, "water_temp_c",
			fmt.Errorf("water temperature %.2f outside [%.1f, %.1f]",
				r.WaterTempC, types.MinWaterTempC, types.MaxWaterTempC))
	}
	return nil
}

// sortMarine orders a marine series by timestamp, matching the weather-side
// invariant.
func sortMarine(records []types.MarineRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}
