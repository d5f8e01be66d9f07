package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// cacheMetrics exports fetch outcomes to OpenTelemetry. The authoritative
// counters for Stats stay inside the cache; these instruments mirror them
// for whatever exporter the host wired up.
type cacheMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	fetchDuration metric.Float64Histogram
	invalidations metric.Int64Counter
}

func newCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	hits, err := meter.Int64Counter(
		"cache.fetch.hits",
		metric.WithDescription("Fetches served from a live entry"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.fetch.misses",
		metric.WithDescription("Fetches that invoked the producer"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"cache.fetch.duration_ms",
		metric.WithDescription("Fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter(
		"cache.invalidations",
		metric.WithDescription("Entries removed by invalidation channel"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		hits:          hits,
		misses:        misses,
		fetchDuration: fetchDuration,
		invalidations: invalidations,
	}, nil
}

func (m *cacheMetrics) recordFetch(ctx context.Context, rt ResourceType, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("resource.type", string(rt)))
	if hit {
		m.hits.Add(ctx, 1, opt)
	} else {
		m.misses.Add(ctx, 1, opt)
	}
	m.fetchDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *cacheMetrics) recordInvalidation(ctx context.Context, channel string, removed int) {
	if m == nil || removed == 0 {
		return
	}
	m.invalidations.Add(ctx, int64(removed),
		metric.WithAttributes(attribute.String("channel", channel)))
}
