package scoring

import (
	"sort"
	"strings"
)

// SpeciesProfile holds a species' tolerance bands for habitat scoring and
// its water-clarity preference. Temperatures in Celsius, salinity in PSU.
// The optimal band sits inside the tolerated [Min, Max] range; values
// outside the tolerated range score the habitat floor.
type SpeciesProfile struct {
	Name string

	TempMinC    float64
	TempOptMinC float64
	TempOptMaxC float64
	TempMaxC    float64

	SalinityMin    float64
	SalinityOptMin float64
	SalinityOptMax float64
	SalinityMax    float64

	// PrefersTurbid inverts the visibility scale: ambush feeders hunt
	// better in murky water.
	PrefersTurbid bool
}

// defaultSpecies is the fallback profile for unknown species: a broadly
// tolerant temperate coastal fish.
var defaultSpecies = SpeciesProfile{
	Name:        "default",
	TempMinC:    3, TempOptMinC: 10, TempOptMaxC: 20, TempMaxC: 26,
	SalinityMin: 5, SalinityOptMin: 20, SalinityOptMax: 35, SalinityMax: 38,
}

// speciesTable is keyed by lowercased common name.
var speciesTable = map[string]SpeciesProfile{
	"sea bass": {
		Name:        "sea bass",
		TempMinC:    8, TempOptMinC: 14, TempOptMaxC: 20, TempMaxC: 24,
		SalinityMin: 15, SalinityOptMin: 28, SalinityOptMax: 36, SalinityMax: 40,
	},
	"cod": {
		Name:        "cod",
		TempMinC:    0, TempOptMinC: 4, TempOptMaxC: 10, TempMaxC: 16,
		SalinityMin: 10, SalinityOptMin: 25, SalinityOptMax: 35, SalinityMax: 36,
	},
	"mackerel": {
		Name:        "mackerel",
		TempMinC:    7, TempOptMinC: 11, TempOptMaxC: 16, TempMaxC: 20,
		SalinityMin: 25, SalinityOptMin: 30, SalinityOptMax: 36, SalinityMax: 38,
	},
	"sea trout": {
		Name:        "sea trout",
		TempMinC:    2, TempOptMinC: 8, TempOptMaxC: 16, TempMaxC: 20,
		SalinityMin: 0, SalinityOptMin: 5, SalinityOptMax: 25, SalinityMax: 35,
	},
	"flounder": {
		Name:        "flounder",
		TempMinC:    1, TempOptMinC: 8, TempOptMaxC: 16, TempMaxC: 22,
		SalinityMin: 2, SalinityOptMin: 10, SalinityOptMax: 30, SalinityMax: 36,
		PrefersTurbid: true,
	},
	"pike": {
		Name:        "pike",
		TempMinC:    2, TempOptMinC: 10, TempOptMaxC: 19, TempMaxC: 25,
		SalinityMin: 0, SalinityOptMin: 0, SalinityOptMax: 8, SalinityMax: 12,
		PrefersTurbid: true,
	},
	"halibut": {
		Name:        "halibut",
		TempMinC:    1, TempOptMinC: 4, TempOptMaxC: 11, TempMaxC: 15,
		SalinityMin: 20, SalinityOptMin: 30, SalinityOptMax: 35, SalinityMax: 36,
	},
}

// LookupSpecies resolves a species profile by common name,
// case-insensitively, falling back to the default profile. The fallback is
// deliberate: an unknown species must degrade scoring, not fail it.
func LookupSpecies(name string) SpeciesProfile {
	profile, _ := FindSpecies(name)
	return profile
}

// Species returns all known profiles sorted by name. The default fallback
// profile is not included.
func Species() []SpeciesProfile {
	out := make([]SpeciesProfile, 0, len(speciesTable))
	for _, p := range speciesTable {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindSpecies resolves a species profile by common name, case-insensitively.
// The second return reports whether the name matched a known profile; on a
// miss the default profile is returned so callers that tolerate unknown
// species can use the result directly.
func FindSpecies(name string) (SpeciesProfile, bool) {
	if profile, ok := speciesTable[strings.ToLower(strings.TrimSpace(name))]; ok {
		return profile, true
	}
	return defaultSpecies, false
}
