package types

import "time"

// WeatherRecord is the canonical, provider-independent representation of a
// single forecast time-step. Adapters in internal/providers are responsible
// for all unit conversion; everything here is metric (Celsius, m/s, hPa, mm).
//
// Records in a series are ordered by Timestamp, monotonic non-decreasing.
// Pointer fields are genuinely optional across providers; absence means the
// provider did not report the value, never a silent zero.
type WeatherRecord struct {
	Timestamp         time.Time `json:"timestamp"`
	AirTempC          float64   `json:"air_temp_c"`
	WindSpeedMps      float64   `json:"wind_speed_mps"`
	WindDirDeg        float64   `json:"wind_dir_deg"`
	WindGustMps       *float64  `json:"wind_gust_mps,omitempty"`
	PressureHpa       *float64  `json:"pressure_hpa,omitempty"`
	HumidityPct       *float64  `json:"humidity_pct,omitempty"`
	PrecipitationMm   *float64  `json:"precipitation_mm,omitempty"`
	PrecipProbPct     *float64  `json:"precip_probability_pct,omitempty"`
	ConditionCode     string    `json:"condition_code"`
	IsDaytime         bool      `json:"is_daytime"`
}

// MarineRecord is the canonical representation of a marine forecast
// time-step. It comes from a different provider family than WeatherRecord
// and is joined to weather data only by timestamp and coordinate.
//
// CurrentSpeedKn and VisibilityKm are optional: several marine sources omit
// them entirely and fabricating values would poison downstream scoring.
type MarineRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	WaterTempC      float64   `json:"water_temp_c"`
	WaveHeightM     float64   `json:"wave_height_m"`
	SwellHeightM    float64   `json:"swell_height_m"`
	SwellDirDeg     float64   `json:"swell_direction_deg"`
	SwellPeriodS    float64   `json:"swell_period_s"`
	CurrentSpeedKn  *float64  `json:"current_speed_kn,omitempty"`
	VisibilityKm    *float64  `json:"visibility_km,omitempty"`
}

// MinWaterTempC and MaxWaterTempC bound physically plausible sea
// temperatures. Adapters reject records outside this range instead of
// clamping them.
const (
	MinWaterTempC = -2.0
	MaxWaterTempC = 40.0
)

// BiogeochemicalData is a per-coordinate snapshot of ocean biogeochemistry.
// Every field is independently nullable; absence is a first-class state that
// the scoring engine degrades around, not an error.
type BiogeochemicalData struct {
	ChlorophyllMgM3  *float64 `json:"chlorophyll_mg_m3,omitempty"`
	WaterClarityKd   *float64 `json:"water_clarity_kd490,omitempty"`
	DissolvedOxygen  *float64 `json:"dissolved_oxygen_mg_l,omitempty"`
	NitrateUmolL     *float64 `json:"nitrate_umol_l,omitempty"`
	PhosphateUmolL   *float64 `json:"phosphate_umol_l,omitempty"`
	SalinityPsu      *float64 `json:"salinity_psu,omitempty"`
	WaterTempC       *float64 `json:"water_temp_c,omitempty"`
}

// ProviderPayload is the union of canonical record shapes a provider can
// return. Exactly one field is populated, determined by the provider's
// Metric.
type ProviderPayload struct {
	Weather []WeatherRecord     `json:"weather,omitempty"`
	Marine  []MarineRecord      `json:"marine,omitempty"`
	Bio     *BiogeochemicalData `json:"biogeochemical,omitempty"`
}

// PressureTrend is the classified barometric tendency around a target time.
// It is derived from a pressure timeseries and never persisted independently
// of it. Pressure values are pointers because the underlying series may not
// carry pressure at all; classification then degrades to TrendUnknown.
type PressureTrend struct {
	Category      TrendCategory `json:"category"`
	PressureNow   *float64      `json:"pressure_now,omitempty"`
	Pressure3hAgo *float64      `json:"pressure_3h_ago,omitempty"`
	Pressure6hAgo *float64      `json:"pressure_6h_ago,omitempty"`
	Delta3h       *float64      `json:"delta_3h,omitempty"`
	Delta6h       *float64      `json:"delta_6h,omitempty"`
	Explanation   string        `json:"explanation"`
}

// EnhancementResult is the output of the biogeochemical enhancer: a pure
// function of BiogeochemicalData plus species and time-of-day context.
type EnhancementResult struct {
	BaitfishIndex   int      `json:"baitfish_index"`    // 0-100
	VisibilityIndex int      `json:"visibility_index"`  // 0-100
	HabitatIndex    int      `json:"habitat_index"`     // 0-100
	Multiplier      float64  `json:"overall_multiplier"` // 0.5-2.0
	Confidence      int      `json:"confidence"`        // 0-100
	Recommendation  string   `json:"tactical_recommendation"`
	Warnings        []string `json:"warnings,omitempty"`
}

// SurfHour is the hourly input to the surf grader. Timestamps are expected
// in beach-local time; the grader's night cutoffs read the wall-clock hour.
type SurfHour struct {
	Timestamp    time.Time `json:"timestamp"`
	WaveHeightM  float64   `json:"wave_height_m"`
	SwellPeriodS float64   `json:"swell_period_s"`
	WindSpeedMps float64   `json:"wind_speed_mps"`
	WindDirDeg   float64   `json:"wind_dir_deg"`
}

// DayMarine bundles a day of hourly surf inputs with the caller's
// presentation context. BeachFacingDeg is the compass bearing the beach
// faces (toward the sea); nil disables the shore-relative wind logic.
// Skill and facing are explicit parameters, not hidden preference state.
type DayMarine struct {
	Hours          []SurfHour `json:"hours"`
	BeachFacingDeg *float64   `json:"beach_facing_deg,omitempty"`
	Skill          SkillLevel `json:"skill"`
}

// HourGrade is one graded hour of surf. Label is a presentation-level
// relabeling (e.g. "beginner friendly"); Light always carries the true
// red/amber/green state.
type HourGrade struct {
	Timestamp time.Time  `json:"ts"`
	Light     LightState `json:"light"`
	Score     int        `json:"score"`
	Label     string     `json:"label,omitempty"`
	Reasons   []string   `json:"reasons,omitempty"`
}

// DayGrade is the full output of the surf grader for one day.
// BestHour is nil when no daytime hour exists ("no safe window").
type DayGrade struct {
	Hours     []HourGrade `json:"hours"`
	BestHour  *HourGrade  `json:"best_hour,omitempty"`
	DayLight  LightState  `json:"day_light"`
	MeanScore float64     `json:"mean_score"`
	MaxScore  float64     `json:"max_score"`
}

// FetchResult is what the orchestrator hands back to callers: the canonical
// payload plus the metadata observability depends on. Provider identity and
// cache status are load-bearing outputs, not incidental logging.
type FetchResult struct {
	Payload     ProviderPayload `json:"payload"`
	Provider    ProviderID      `json:"provider"`
	CacheStatus CacheStatus     `json:"cache_status"`
}
