package scoring

import (
	"fmt"
	"strings"

	"tidecast/internal/types"
)

// hypoxiaThresholdMgL is the dissolved-oxygen level below which habitat is
// considered hypoxic: the oxygen sub-score is forced to zero, a hard
// warning is emitted, and the overall multiplier collapses to its floor.
const hypoxiaThresholdMgL = 2.0

// bloomCeilingMgM3 is the chlorophyll level above which the baitfish score
// is capped below peak: extreme chlorophyll can signal water-quality stress
// rather than forage abundance.
const bloomCeilingMgM3 = 20.0

const (
	multiplierFloor   = 0.5
	multiplierCeiling = 2.0
	unknownScore      = 50 // sub-score when the required input is absent
)

// Enhance derives fishing-relevant indices from a biogeochemical snapshot.
// It is pure and total: every input field may independently be absent, nil
// bioData is treated as an all-absent snapshot, and each sub-score degrades
// to an "unknown/average" 50 instead of failing.
func Enhance(bioData *types.BiogeochemicalData, speciesName string, timeOfDay types.TimeOfDay) types.EnhancementResult {
	if bioData == nil {
		bioData = &types.BiogeochemicalData{}
	}
	species := LookupSpecies(speciesName)

	var warnings []string

	baitfish := baitfishScore(bioData, &warnings)
	visibility := visibilityScore(bioData, species, timeOfDay)
	habitat, hypoxic := habitatScore(bioData, species, &warnings)

	multiplier := overallMultiplier(habitat, baitfish, visibility, hypoxic)

	return types.EnhancementResult{
		BaitfishIndex:   baitfish,
		VisibilityIndex: visibility,
		HabitatIndex:    habitat,
		Multiplier:      multiplier,
		Confidence:      confidence(bioData),
		Recommendation:  recommendation(bioData, species, habitat, baitfish, visibility),
		Warnings:        warnings,
	}
}

// baitfishScore estimates prey-fish density from chlorophyll banding with
// small nutrient boosts. The top band is 8-20 mg/m3; beyond that the score
// drops back to 80 (the bloom ceiling).
func baitfishScore(bio *types.BiogeochemicalData, warnings *[]string) int {
	if bio.ChlorophyllMgM3 == nil {
		return unknownScore
	}
	chl := *bio.ChlorophyllMgM3

	var score int
	switch {
	case chl < 0.5:
		score = 25
	case chl < 1.5:
		score = 50
	case chl < 3:
		score = 70
	case chl < 8:
		score = 85
	case chl <= bloomCeilingMgM3:
		score = 95
	default:
		score = 80
		*warnings = append(*warnings, fmt.Sprintf("chlorophyll %.1f mg/m3 suggests a bloom; water quality may be degraded", chl))
	}

	if bio.NitrateUmolL != nil && *bio.NitrateUmolL > 5 {
		score += 5
	}
	if bio.PhosphateUmolL != nil && *bio.PhosphateUmolL > 0.5 {
		score += 5
	}
	return clampScore(score)
}

// visibilityScore maps a Secchi-depth approximation (1.7 / KD490) to a
// clarity band, inverts the scale for turbid-preferring species, then
// applies the diel modifier: dawn/dusk boost sight-feeding windows, night
// suppresses them.
func visibilityScore(bio *types.BiogeochemicalData, species SpeciesProfile, timeOfDay types.TimeOfDay) int {
	if bio.WaterClarityKd == nil || *bio.WaterClarityKd <= 0 {
		return unknownScore
	}
	secchiM := 1.7 / *bio.WaterClarityKd

	var score float64
	switch {
	case secchiM < 0.5:
		score = 20
	case secchiM < 1:
		score = 35
	case secchiM < 2:
		score = 50
	case secchiM < 4:
		score = 65
	case secchiM < 8:
		score = 80
	default:
		score = 100
	}

	if species.PrefersTurbid {
		score = 100 - score
	}

	switch timeOfDay {
	case types.TimeDawn, types.TimeDusk:
		score *= 1.2
		if score > 100 {
			score = 100
		}
	case types.TimeNight:
		score *= 0.6
		if score < 20 {
			score = 20
		}
	}

	return clampScore(int(score + 0.5))
}

// habitatScore combines oxygen, temperature, and salinity against the
// species tolerance bands: 0.5*oxygen + 0.35*temperature + 0.15*salinity.
// Returns the score and whether the water is hypoxic.
func habitatScore(bio *types.BiogeochemicalData, species SpeciesProfile, warnings *[]string) (int, bool) {
	oxygen := float64(unknownScore)
	hypoxic := false
	if bio.DissolvedOxygen != nil {
		do := *bio.DissolvedOxygen
		switch {
		case do < hypoxiaThresholdMgL:
			oxygen = 0
			hypoxic = true
			*warnings = append(*warnings, fmt.Sprintf("hypoxic water: dissolved oxygen %.1f mg/L is below %.0f mg/L", do, hypoxiaThresholdMgL))
		case do < 3.5:
			oxygen = 30
		case do < 5:
			oxygen = 60
		case do < 7:
			oxygen = 80
		default:
			oxygen = 100
		}
	}

	temperature := float64(unknownScore)
	if bio.WaterTempC != nil {
		temperature = bandScore(*bio.WaterTempC, species.TempMinC, species.TempOptMinC, species.TempOptMaxC, species.TempMaxC)
	}

	salinity := float64(unknownScore)
	if bio.SalinityPsu != nil {
		salinity = bandScore(*bio.SalinityPsu, species.SalinityMin, species.SalinityOptMin, species.SalinityOptMax, species.SalinityMax)
	}

	score := 0.5*oxygen + 0.35*temperature + 0.15*salinity
	return clampScore(int(score + 0.5)), hypoxic
}

// bandScore scores a value against a tolerance band: 100 inside the optimal
// range, a linear ramp from 40 across each shoulder, and a hard 10 outside
// the tolerated range.
func bandScore(v, min, optMin, optMax, max float64) float64 {
	switch {
	case v < min || v > max:
		return 10
	case v >= optMin && v <= optMax:
		return 100
	case v < optMin:
		if optMin == min {
			return 100
		}
		return 40 + 60*(v-min)/(optMin-min)
	default:
		if max == optMax {
			return 100
		}
		return 40 + 60*(max-v)/(max-optMax)
	}
}

// overallMultiplier composes the sub-scores into a catch-rate multiplier in
// [0.5, 2.0]: a habitat-banded base, a baitfish adjustment at the 80/60/40
// boundaries, and a smaller visibility adjustment. Hypoxia overrides the
// composition entirely and pins the multiplier to the floor.
func overallMultiplier(habitat, baitfish, visibility int, hypoxic bool) float64 {
	if hypoxic {
		return multiplierFloor
	}

	var multiplier float64
	switch {
	case habitat < 20:
		multiplier = 0.5
	case habitat < 50:
		multiplier = 0.7
	case habitat < 70:
		multiplier = 0.9
	case habitat < 85:
		multiplier = 1.1
	default:
		multiplier = 1.3
	}

	switch {
	case baitfish >= 80:
		multiplier += 0.3
	case baitfish >= 60:
		multiplier += 0.15
	case baitfish < 40:
		multiplier -= 0.1
	}

	switch {
	case visibility > 80:
		multiplier += 0.1
	case visibility < 30:
		multiplier -= 0.05
	}

	if multiplier < multiplierFloor {
		multiplier = multiplierFloor
	}
	if multiplier > multiplierCeiling {
		multiplier = multiplierCeiling
	}
	return multiplier
}

// confidence is the fraction of the four critical fields present
// (chlorophyll, oxygen, temperature, clarity) as a 0-100 percentage.
func confidence(bio *types.BiogeochemicalData) int {
	present := 0
	for _, field := range []*float64{bio.ChlorophyllMgM3, bio.DissolvedOxygen, bio.WaterTempC, bio.WaterClarityKd} {
		if field != nil {
			present++
		}
	}
	return present * 100 / 4
}

// recommendation builds the tactical text by a fixed rule cascade. A
// habitat below 20 short-circuits to an avoidance message; otherwise
// habitat, baitfish, visibility, and temperature clauses concatenate.
func recommendation(bio *types.BiogeochemicalData, species SpeciesProfile, habitat, baitfish, visibility int) string {
	if habitat < 20 {
		return "poor habitat conditions; avoid this area and look for better water"
	}

	var clauses []string
	switch {
	case habitat >= 85:
		clauses = append(clauses, "prime habitat conditions")
	case habitat >= 70:
		clauses = append(clauses, "good habitat conditions")
	default:
		clauses = append(clauses, "marginal habitat; focus effort on structure")
	}

	switch {
	case baitfish >= 80:
		clauses = append(clauses, "strong baitfish activity expected; match the local forage")
	case baitfish < 40:
		clauses = append(clauses, "little baitfish activity; downsize and slow down")
	}

	switch {
	case visibility >= 80:
		clauses = append(clauses, "clear water; use natural presentations and lighter leaders")
	case visibility < 30:
		clauses = append(clauses, "low visibility; lean on vibration and scent")
	}

	if bio.WaterTempC != nil {
		t := *bio.WaterTempC
		if t >= species.TempOptMinC && t <= species.TempOptMaxC {
			clauses = append(clauses, fmt.Sprintf("water temperature %.1fC is in the optimal band for %s", t, species.Name))
		} else {
			clauses = append(clauses, fmt.Sprintf("water temperature %.1fC is outside the comfort band for %s; fish deeper or slower", t, species.Name))
		}
	}

	return strings.Join(clauses, "; ")
}

// clampScore bounds a sub-score to [0, 100].
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
