package scoring

import (
	"math"

	"github.com/montanaflynn/stats"

	"tidecast/internal/types"
)

// Night cutoffs in beach-local wall-clock hours. Night hours remain visible
// in the hour list but are never selected as bestHour: downstream must show
// "no safe window" rather than send someone surfing in the dark.
const (
	dawnHour  = 6
	nightHour = 20
)

// Grade thresholds over the 0-100 hour score.
const (
	greenThreshold = 70
	amberThreshold = 45
)

// Safety gates: below these skill levels the given conditions can never be
// graded green, whatever the score says.
const (
	noviceMaxWaveM        = 1.5
	noviceMaxPeriodS      = 14.0
	intermediateMaxWaveM  = 3.0
)

// Beginner-friendly relabeling window: small but surfable.
const (
	beginnerMinWaveM = 0.3
	beginnerMaxWaveM = 1.0
)

// shoreRelation classifies wind direction relative to the beach facing.
type shoreRelation int

const (
	windUnknown shoreRelation = iota
	windOffshore
	windOnshore
	windCrossShore
)

// GradeDay grades each hour of a surf day and selects the best daytime
// hour. Skill and beach orientation are explicit inputs per call; results
// are recomputed, never cached across overrides.
func GradeDay(day types.DayMarine) types.DayGrade {
	result := types.DayGrade{
		Hours:    make([]types.HourGrade, 0, len(day.Hours)),
		DayLight: types.LightRed,
	}

	var daytimeScores []float64

	for _, hour := range day.Hours {
		grade := gradeHour(hour, day.BeachFacingDeg, day.Skill)
		result.Hours = append(result.Hours, grade)

		if isNight(hour.Timestamp.Hour()) {
			continue
		}
		daytimeScores = append(daytimeScores, float64(grade.Score))

		if lightRank(grade.Light) > lightRank(result.DayLight) {
			result.DayLight = grade.Light
		}
		if result.BestHour == nil || better(grade, *result.BestHour) {
			g := grade
			result.BestHour = &g
		}
	}

	if len(daytimeScores) > 0 {
		// Aggregate stats describe the surfable window only.
		if mean, err := stats.Mean(daytimeScores); err == nil {
			result.MeanScore = math.Round(mean*10) / 10
		}
		if max, err := stats.Max(daytimeScores); err == nil {
			result.MaxScore = max
		}
	}

	return result
}

// better ranks candidate against incumbent: green over amber over red,
// then highest numeric score. Equal rank and score keeps the incumbent
// (first-found).
func better(candidate, incumbent types.HourGrade) bool {
	if lightRank(candidate.Light) != lightRank(incumbent.Light) {
		return lightRank(candidate.Light) > lightRank(incumbent.Light)
	}
	return candidate.Score > incumbent.Score
}

func lightRank(l types.LightState) int {
	switch l {
	case types.LightGreen:
		return 2
	case types.LightAmber:
		return 1
	default:
		return 0
	}
}

func isNight(hour int) bool {
	return hour < dawnHour || hour >= nightHour
}

// gradeHour scores one hour from wave size, swell period, and wind, then
// applies the skill safety gate and the beginner-friendly relabeling.
func gradeHour(hour types.SurfHour, facing *float64, skill types.SkillLevel) types.HourGrade {
	score := 0
	var reasons []string

	switch {
	case hour.WaveHeightM >= 1.0 && hour.WaveHeightM <= 2.5:
		score += 40
		reasons = append(reasons, "working swell size")
	case hour.WaveHeightM >= 0.5 && hour.WaveHeightM < 1.0:
		score += 25
		reasons = append(reasons, "small but rideable")
	case hour.WaveHeightM > 2.5 && hour.WaveHeightM <= 3.5:
		score += 25
		reasons = append(reasons, "solid size")
	case hour.WaveHeightM > 3.5:
		score += 10
		reasons = append(reasons, "very large surf")
	default:
		score += 10
		reasons = append(reasons, "barely any swell")
	}

	switch {
	case hour.SwellPeriodS >= 12:
		score += 30
		reasons = append(reasons, "long-period groundswell")
	case hour.SwellPeriodS >= 8:
		score += 20
	case hour.SwellPeriodS >= 6:
		score += 10
	default:
		reasons = append(reasons, "short-period windswell")
	}

	switch windRelation(hour.WindDirDeg, facing) {
	case windOffshore:
		if hour.WindSpeedMps <= 12 {
			score += 30
			reasons = append(reasons, "offshore wind grooming the faces")
		} else {
			score += 10
			reasons = append(reasons, "strong offshore wind")
		}
	case windOnshore:
		switch {
		case hour.WindSpeedMps < 4:
			score += 15
		case hour.WindSpeedMps < 8:
			score += 5
			reasons = append(reasons, "onshore chop building")
		default:
			reasons = append(reasons, "blown out by onshore wind")
		}
	case windCrossShore:
		if hour.WindSpeedMps < 10 {
			score += 10
		} else {
			reasons = append(reasons, "strong cross-shore wind")
		}
	default:
		// No beach orientation given; judge wind by strength alone.
		switch {
		case hour.WindSpeedMps < 4:
			score += 20
		case hour.WindSpeedMps < 8:
			score += 10
		default:
			reasons = append(reasons, "strong wind, no orientation data")
		}
	}

	score = clampScore(score)

	light := types.LightRed
	switch {
	case score >= greenThreshold:
		light = types.LightGreen
	case score >= amberThreshold:
		light = types.LightAmber
	}

	// Safety gates forbid green beyond the skill's size/period ceiling.
	if light == types.LightGreen {
		switch skill {
		case types.SkillNovice:
			if hour.WaveHeightM > noviceMaxWaveM || hour.SwellPeriodS > noviceMaxPeriodS {
				light = types.LightAmber
				reasons = append(reasons, "conditions beyond novice safety ceiling")
			}
		case types.SkillIntermediate:
			if hour.WaveHeightM > intermediateMaxWaveM {
				light = types.LightAmber
				reasons = append(reasons, "size beyond intermediate safety ceiling")
			}
		}
	}

	grade := types.HourGrade{
		Timestamp: hour.Timestamp,
		Light:     light,
		Score:     score,
		Reasons:   reasons,
	}

	// Presentation-level relabeling only: the underlying light stays red.
	if skill == types.SkillNovice && light == types.LightRed &&
		hour.WaveHeightM >= beginnerMinWaveM && hour.WaveHeightM < beginnerMaxWaveM {
		grade.Label = "beginner friendly"
	}

	return grade
}

// windRelation derives the on/off/cross-shore classification from the
// angular difference between the wind's origin bearing and the beach
// facing, in 45-degree bands. Wind blowing from the facing direction (off
// the sea) is onshore; from the opposite direction is offshore.
func windRelation(windDirDeg float64, facing *float64) shoreRelation {
	if facing == nil {
		return windUnknown
	}
	diff := angularDiff(windDirDeg, *facing)
	switch {
	case diff <= 45:
		return windOnshore
	case angularDiff(windDirDeg, *facing+180) <= 45:
		return windOffshore
	default:
		return windCrossShore
	}
}

// angularDiff returns the smallest absolute difference between two compass
// bearings, in [0, 180].
func angularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
