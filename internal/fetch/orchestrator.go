// Package fetch implements the orchestration of the provider fallback
// chain: region-based provider ordering, cache consultation with
// provider-tier rounding, bounded per-provider timeouts, and absorption of
// provider-level failures. Only total exhaustion or invalid input crosses
// this package's boundary as an error.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"tidecast/internal/cache"
	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// DefaultProviderTimeout bounds each individual provider call. A provider
// that cannot answer within this window is treated identically to a hard
// failure and the chain advances.
const DefaultProviderTimeout = 4 * time.Second

// Provider is the contract a data source must satisfy to join the fallback
// chain. Fetch returns fully normalized canonical records; adapter-level
// schema violations surface as errors here and are absorbed by the chain
// the same way network failures are.
type Provider interface {
	ID() types.ProviderID
	Metric() types.Metric
	Tier() geo.PrecisionTier
	Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error)
}

// Registry indexes providers by metric and identity. The same ProviderID
// may appear under several metrics (Open-Meteo serves both weather and
// marine) backed by distinct implementations.
type Registry struct {
	byMetric map[types.Metric]map[types.ProviderID]Provider
}

// NewRegistry builds a registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byMetric: make(map[types.Metric]map[types.ProviderID]Provider)}
	for _, p := range providers {
		m := r.byMetric[p.Metric()]
		if m == nil {
			m = make(map[types.ProviderID]Provider)
			r.byMetric[p.Metric()] = m
		}
		m[p.ID()] = p
	}
	return r
}

// Lookup returns the provider registered for the metric and identity.
func (r *Registry) Lookup(metric types.Metric, id types.ProviderID) (Provider, bool) {
	p, ok := r.byMetric[metric][id]
	return p, ok
}

// Orchestrator executes the provider fallback chain for a request.
// Providers are attempted sequentially in region priority order -- a
// fallback chain, not a parallel race -- to respect per-provider rate
// limits and avoid double-billing paid sources. Independent requests run
// concurrently; the only shared mutable state is the coordinate cache and
// the singleflight group that collapses concurrent identical misses into
// one upstream call.
type Orchestrator struct {
	registry        *Registry
	cache           *cache.CoordinateCache
	providerTimeout time.Duration
	logger          *slog.Logger
	flight          singleflight.Group
}

// New creates an Orchestrator. A zero providerTimeout uses the default.
func New(registry *Registry, cc *cache.CoordinateCache, providerTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if providerTimeout <= 0 {
		providerTimeout = DefaultProviderTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry:        registry,
		cache:           cc,
		providerTimeout: providerTimeout,
		logger:          logger,
	}
}

// Fetch resolves canonical records for the request, reporting which
// provider served them and whether the cache did. Per-provider failures
// (timeouts, non-2xx, schema mismatches) are logged and absorbed; the
// chain advances. Each provider is attempted at most once per request.
//
// The caller's context deadline is honored across the whole chain: once it
// expires, remaining providers are skipped and the result is exhaustion,
// never a late provider's data.
func (o *Orchestrator) Fetch(ctx context.Context, req types.FetchRequest) (*types.FetchResult, error) {
	if err := types.ValidateCoordinates(req.Lat, req.Lon); err != nil {
		return nil, err
	}
	if !req.Metric.Valid() {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidMetric,
			fmt.Sprintf("unsupported metric %q", req.Metric),
			nil,
		)
	}

	order := o.providerOrder(req)
	attempted := make([]string, 0, len(order))

	for _, id := range order {
		provider, ok := o.registry.Lookup(req.Metric, id)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			o.requestLogger(ctx).Warn("request deadline exceeded, aborting provider chain",
				"metric", string(req.Metric),
				"remaining_from", string(id),
			)
			break
		}

		rlat, rlon := provider.Tier().Round(req.Lat, req.Lon)
		key := geo.CacheKey(provider.ID(), req.Metric, provider.Tier(), rlat, rlon)

		if entry, hit := o.cache.Get(key); hit {
			return &types.FetchResult{
				Payload:     entry.Payload,
				Provider:    provider.ID(),
				CacheStatus: types.CacheHit,
			}, nil
		}

		attempted = append(attempted, string(id))
		payload, err := o.fetchThrough(ctx, provider, key, req, rlat, rlon)
		if err != nil {
			o.requestLogger(ctx).Warn("provider failed, falling through",
				"provider", string(id),
				"metric", string(req.Metric),
				"error", err,
			)
			continue
		}

		return &types.FetchResult{
			Payload:     payload,
			Provider:    provider.ID(),
			CacheStatus: types.CacheMiss,
		}, nil
	}

	return nil, types.NewAppError(
		types.ErrCodeProvidersExhausted,
		"no provider could serve the request",
		ctx.Err(),
	).WithDetails(map[string]any{
		"metric":    string(req.Metric),
		"attempted": attempted,
	})
}

// fetchThrough performs the provider call under the per-provider timeout
// and writes the result through to the cache. Concurrent callers for the
// same cache key share one flight.
func (o *Orchestrator) fetchThrough(ctx context.Context, provider Provider, key string, req types.FetchRequest, rlat, rlon float64) (types.ProviderPayload, error) {
	v, err, _ := o.flight.Do(key, func() (any, error) {
		pctx, cancel := context.WithTimeout(ctx, o.providerTimeout)
		defer cancel()

		payload, err := provider.Fetch(pctx, req)
		if err != nil {
			return nil, err
		}

		o.cache.Put(key, cache.Entry{
			Provider:   provider.ID(),
			RoundedLat: rlat,
			RoundedLon: rlon,
			Precision:  provider.Tier(),
			TTL:        provider.Tier().TTL(),
			Payload:    payload,
		})
		return payload, nil
	})
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return v.(types.ProviderPayload), nil
}

// requestLogger prefers the request-scoped logger stored by the HTTP
// middleware, so chain warnings carry the request ID. Falls back to the
// orchestrator's own logger for non-HTTP callers.
func (o *Orchestrator) requestLogger(ctx context.Context) types.Logger {
	if l := types.LoggerFromContext(ctx); l != nil {
		return l
	}
	return o.logger
}

// providerOrder resolves the ordered priority list for the request's
// metric. Weather ordering is geofenced; marine leads with the paid source;
// biogeochemistry has a single regional source.
func (o *Orchestrator) providerOrder(req types.FetchRequest) []types.ProviderID {
	switch req.Metric {
	case types.MetricWeather:
		return geo.SelectWeatherProviders(req.Lat, req.Lon)
	case types.MetricMarine:
		return geo.SelectMarineProviders(req.Lat, req.Lon)
	case types.MetricBiogeochemical:
		return []types.ProviderID{types.ProviderMarineBio}
	default:
		return nil
	}
}
