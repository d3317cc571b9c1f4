package metrics

import (
	"context"
	"time"

	"goapforge/internal/goap"
	"goapforge/internal/plancache"
)

const sourcePlanCache = "plancache"

// CachePoints converts cache counters into metric points stamped asOf.
func CachePoints(stats plancache.Stats, asOf time.Time, dims ...Dimension) []MetricPoint {
	ts := Timestamp(asOf)
	point := func(key string, value float64, unit string) MetricPoint {
		return MetricPoint{
			Key:        key,
			Value:      value,
			Unit:       unit,
			Timestamp:  ts,
			Source:     sourcePlanCache,
			Dimensions: append([]Dimension(nil), dims...),
		}
	}
	return CanonicalizePoints([]MetricPoint{
		point("plancache.hits", float64(stats.Hits), "count"),
		point("plancache.misses", float64(stats.Misses), "count"),
		point("plancache.evictions", float64(stats.Evictions), "count"),
		point("plancache.invalidations", float64(stats.Invalidations), "count"),
		point("plancache.hit_rate", stats.HitRate(), "ratio"),
	})
}

// SearchPoints converts a planner search result into metric points.
func SearchPoints(res goap.Result, asOf time.Time, dims ...Dimension) []MetricPoint {
	ts := Timestamp(asOf)
	solved := 0.0
	if res.Solved() {
		solved = 1
	}
	dims = append(append([]Dimension(nil), dims...), Dimension{Key: "outcome", Value: res.Outcome.String()})
	point := func(key string, value float64, unit string) MetricPoint {
		return MetricPoint{Key: key, Value: value, Unit: unit, Timestamp: ts, Source: "planner", Dimensions: dims}
	}
	return CanonicalizePoints([]MetricPoint{
		point("planner.iterations", float64(res.Iterations), "count"),
		point("planner.nodes", float64(res.Nodes), "count"),
		point("planner.cost", float64(res.Cost), "cost"),
		point("planner.plan_length", float64(len(res.Actions)), "count"),
		point("planner.solved", solved, "bool"),
	})
}

// StatsSource exposes cache counters, as plancache.CachedPlanner does.
type StatsSource interface {
	CacheStats() plancache.Stats
}

// CacheProvider collects CachePoints from a StatsSource.
type CacheProvider struct {
	Source     StatsSource
	Dimensions []Dimension
	Now        func() time.Time
}

func (p CacheProvider) Name() string {
	return sourcePlanCache
}

func (p CacheProvider) Collect(ctx context.Context) ([]MetricPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return CachePoints(p.Source.CacheStats(), now(), p.Dimensions...), nil
}
