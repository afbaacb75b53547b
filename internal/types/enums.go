package types

// ProviderID identifies an upstream environmental data provider.
type ProviderID string

const (
	ProviderMETNorway   ProviderID = "metno"
	ProviderNWS         ProviderID = "nws"
	ProviderOpenWeather ProviderID = "openweather"
	ProviderOpenMeteo   ProviderID = "openmeteo"
	ProviderStormglass  ProviderID = "stormglass"
	ProviderMarineBio   ProviderID = "marinebio"
)

// costClass maps each provider to its licensing class. Used for the
// "source" response metadata (e.g. "free:metno") consumed by the UI and
// by observability.
var costClass = map[ProviderID]string{
	ProviderMETNorway:   "free",
	ProviderNWS:         "free",
	ProviderOpenWeather: "freemium",
	ProviderOpenMeteo:   "free",
	ProviderStormglass:  "paid",
	ProviderMarineBio:   "free",
}

// SourceTag returns the provider tagged with its licensing class, in the
// format exposed to callers as response metadata.
func (p ProviderID) SourceTag() string {
	class, ok := costClass[p]
	if !ok {
		class = "unknown"
	}
	return class + ":" + string(p)
}

// Metric selects which family of environmental data a request targets.
type Metric string

const (
	MetricWeather        Metric = "weather"
	MetricMarine         Metric = "marine"
	MetricBiogeochemical Metric = "biogeochemical"
)

// Valid reports whether the metric is one of the supported families.
func (m Metric) Valid() bool {
	switch m {
	case MetricWeather, MetricMarine, MetricBiogeochemical:
		return true
	}
	return false
}

// CacheStatus reports whether a fetch was served from cache.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
)

// TrendCategory classifies a barometric pressure tendency.
type TrendCategory string

const (
	TrendRising       TrendCategory = "rising"
	TrendSteady       TrendCategory = "steady"
	TrendFalling      TrendCategory = "falling"
	TrendRapidFalling TrendCategory = "rapid_falling"
	TrendUnknown      TrendCategory = "unknown"
)

// TimeOfDay is the coarse diel phase used by the visibility score.
type TimeOfDay string

const (
	TimeDawn  TimeOfDay = "dawn"
	TimeDay   TimeOfDay = "day"
	TimeDusk  TimeOfDay = "dusk"
	TimeNight TimeOfDay = "night"
)

// LightState is the traffic-light grade assigned to a surf hour.
type LightState string

const (
	LightGreen LightState = "green"
	LightAmber LightState = "amber"
	LightRed   LightState = "red"
)

// SkillLevel gates which surf conditions may be graded green.
type SkillLevel string

const (
	SkillNovice       SkillLevel = "novice"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// MarineRegion is a Copernicus-style macro-region code used to pick the
// biogeochemical dataset for a coordinate. GLO is the global fallback.
type MarineRegion string

const (
	RegionBaltic   MarineRegion = "BAL"
	RegionArctic   MarineRegion = "ARC"
	RegionBlackSea MarineRegion = "BLK"
	RegionMed      MarineRegion = "MED"
	RegionNWShelf  MarineRegion = "NWS"
	RegionIBI      MarineRegion = "IBI"
	RegionGlobal   MarineRegion = "GLO"
)
