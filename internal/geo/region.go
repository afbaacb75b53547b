package geo

import (
	"strings"

	"tidecast/internal/types"
)

// Provider selection and marine-region assignment are policy, not emergent
// behavior: rules are evaluated in declared order and the first match wins.
// The rule tables below are the contract.

// nordicMinLat..nordicMaxLon bound the region where MET Norway's
// locationforecast has full model coverage and is preferred.
const (
	nordicMinLat = 35.0
	nordicMaxLat = 71.0
	nordicMinLon = -25.0
	nordicMaxLon = 40.0
)

// SelectWeatherProviders returns the ordered weather provider priority list
// for a coordinate. Deterministic, pure, no I/O.
//
// Precedence (first match wins):
//  1. Nordic/European box  -> MET Norway first
//  2. Conterminous US box  -> NOAA NWS first
//  3. Anywhere else        -> OpenWeather first
//
// Open-Meteo is always appended last as the keyless fallback.
func SelectWeatherProviders(lat, lon float64) []types.ProviderID {
	switch {
	case lat >= nordicMinLat && lat <= nordicMaxLat && lon >= nordicMinLon && lon <= nordicMaxLon:
		return []types.ProviderID{types.ProviderMETNorway, types.ProviderOpenWeather, types.ProviderOpenMeteo}
	case types.IsCONUS(lat, lon):
		return []types.ProviderID{types.ProviderNWS, types.ProviderOpenWeather, types.ProviderOpenMeteo}
	default:
		return []types.ProviderID{types.ProviderOpenWeather, types.ProviderOpenMeteo}
	}
}

// SelectMarineProviders returns the ordered marine provider priority list.
// Stormglass-style data leads everywhere it is licensed; Open-Meteo's marine
// endpoint is the keyless fallback.
func SelectMarineProviders(lat, lon float64) []types.ProviderID {
	return []types.ProviderID{types.ProviderStormglass, types.ProviderOpenMeteo}
}

// regionRule pairs a marine region with its match criteria. Keywords match
// as substrings against a lowercased region label; the bounding box applies
// when no label matched any rule.
type regionRule struct {
	region   types.MarineRegion
	keywords []string
	minLat, maxLat, minLon, maxLon float64
}

// marineRegionRules is the curated precedence table. Order matters: several
// boxes overlap (Black Sea inside the Mediterranean box, the Northwest
// European Shelf against Iberia-Biscay-Ireland), and the earlier, more
// specific rule must win. Keyword lists are deliberately short and curated;
// broad words like "black" alone are avoided because they also match
// unrelated place names.
var marineRegionRules = []regionRule{
	{
		region:   types.RegionBaltic,
		keywords: []string{"baltic", "gulf of bothnia", "gulf of finland", "kattegat", "skagerrak"},
		minLat:   53, maxLat: 66, minLon: 9, maxLon: 31,
	},
	{
		region:   types.RegionArctic,
		keywords: []string{"arctic", "barents", "norwegian sea", "greenland sea"},
		minLat:   63, maxLat: 90, minLon: -180, maxLon: 180,
	},
	{
		region:   types.RegionBlackSea,
		keywords: []string{"black sea", "sea of azov", "bosporus"},
		minLat:   40, maxLat: 48, minLon: 26, maxLon: 42,
	},
	{
		region:   types.RegionMed,
		keywords: []string{"mediterranean", "adriatic", "aegean", "tyrrhenian", "ionian", "ligurian"},
		minLat:   30, maxLat: 46, minLon: -6, maxLon: 37,
	},
	{
		region:   types.RegionNWShelf,
		keywords: []string{"north sea", "english channel", "irish sea", "celtic sea"},
		minLat:   46, maxLat: 63, minLon: -16, maxLon: 13,
	},
	{
		region:   types.RegionIBI,
		keywords: []string{"bay of biscay", "iberia", "iberian", "gulf of cadiz"},
		minLat:   26, maxLat: 56, minLon: -19, maxLon: 5,
	},
}

// SelectMarineRegion assigns the biogeochemical dataset region for a
// coordinate. When a textual region label is available it is matched first
// against the curated keyword lists; bounding-box containment is the
// fallback, and GLO the final default.
func SelectMarineRegion(label string, lat, lon float64) types.MarineRegion {
	if label != "" {
		needle := strings.ToLower(label)
		for _, rule := range marineRegionRules {
			for _, kw := range rule.keywords {
				if strings.Contains(needle, kw) {
					return rule.region
				}
			}
		}
	}

	for _, rule := range marineRegionRules {
		if lat >= rule.minLat && lat <= rule.maxLat && lon >= rule.minLon && lon <= rule.maxLon {
			return rule.region
		}
	}

	return types.RegionGlobal
}
