// Package geo implements the pure geographic leaves of the pipeline:
// coordinate rounding with per-tier cache TTLs, and the region-based
// provider selection rules.
package geo

import (
	"math"
	"strconv"
	"time"

	"tidecast/internal/types"
)

// PrecisionTier is a fixed decimal-rounding level for coordinates. The tier
// jointly determines cache-key granularity and cache TTL: coarse-resolution
// sources change slowly and are usually rate or cost constrained, so they
// round harder and cache longer.
type PrecisionTier string

const (
	TierAstronomy     PrecisionTier = "astronomy"      // 0 dp, ~111 km
	TierPaidMarine    PrecisionTier = "paid-marine"    // 1 dp, ~11 km
	TierEnvironmental PrecisionTier = "environmental"  // 2 dp, ~1.1 km
	TierStandard      PrecisionTier = "standard"       // 3 dp, ~110 m
	TierHighPrecision PrecisionTier = "high-precision" // 4 dp, ~11 m
)

type tierPolicy struct {
	decimals int
	ttl      time.Duration
}

// tierTable is the authoritative precision/TTL lookup. Reads and writes of
// the coordinate cache must go through the same table, or keys drift.
var tierTable = map[PrecisionTier]tierPolicy{
	TierAstronomy:     {decimals: 0, ttl: 24 * time.Hour},
	TierPaidMarine:    {decimals: 1, ttl: 12 * time.Hour},
	TierEnvironmental: {decimals: 2, ttl: 6 * time.Hour},
	TierStandard:      {decimals: 3, ttl: 3 * time.Hour},
	TierHighPrecision: {decimals: 4, ttl: 1 * time.Hour},
}

// Decimals returns the number of decimal places for the tier. Unknown tiers
// fall back to the standard tier rather than failing, since tier values come
// from static provider definitions.
func (t PrecisionTier) Decimals() int {
	if p, ok := tierTable[t]; ok {
		return p.decimals
	}
	return tierTable[TierStandard].decimals
}

// TTL returns the cache time-to-live for the tier.
func (t PrecisionTier) TTL() time.Duration {
	if p, ok := tierTable[t]; ok {
		return p.ttl
	}
	return tierTable[TierStandard].ttl
}

// Round rounds the coordinate pair to the tier's decimal precision.
// Rounding is idempotent: Round(Round(lat, lon)) == Round(lat, lon).
func (t PrecisionTier) Round(lat, lon float64) (float64, float64) {
	scale := math.Pow(10, float64(t.Decimals()))
	return math.Round(lat*scale) / scale, math.Round(lon*scale) / scale
}

// CacheKey builds the coordinate cache key for a provider, metric, and
// already-rounded coordinate pair. Coordinates are formatted with a fixed
// number of decimals rather than default float formatting, so that 58.1 and
// 58.10000000000001 cannot produce distinct keys.
func CacheKey(provider types.ProviderID, metric types.Metric, tier PrecisionTier, lat, lon float64) string {
	d := tier.Decimals()
	return string(provider) + ":" + string(metric) + ":" +
		strconv.FormatFloat(lat, 'f', d, 64) + "," +
		strconv.FormatFloat(lon, 'f', d, 64)
}
