package planner

import (
	"context"
	"fmt"
	"time"

	"goapforge/internal/goap"
	"goapforge/internal/metrics"
	"goapforge/internal/plancache"
)

const DefaultBenchRepeat = 100

type BenchOptions struct {
	Source
	Deps

	Repeat        int
	MaxIterations int
	CacheCapacity int
	// SnapshotDir, when set, receives a metrics snapshot of the run.
	SnapshotDir string
}

type BenchResult struct {
	Scenario     string
	Repeat       int
	Solved       bool
	Actions      []string
	Search       goap.Result
	Stats        plancache.Stats
	Elapsed      time.Duration
	Points       []metrics.MetricPoint
	SnapshotPath string
}

// BenchScenario plans a scenario Repeat times through one CachedPlanner.
// The first call searches; the rest should be served from the cache.
func BenchScenario(ctx context.Context, opts BenchOptions) (BenchResult, error) {
	if opts.Repeat <= 0 {
		opts.Repeat = DefaultBenchRepeat
	}
	r, err := resolveScenario(opts.Source)
	if err != nil {
		return BenchResult{}, err
	}

	cp := plancache.NewCachedPlanner(opts.CacheCapacity,
		goap.WithMaxIterations(r.maxIterations(opts.MaxIterations)),
		goap.WithLogger(opts.logger()),
	)
	actions := r.domain.Actions()
	res := BenchResult{Scenario: r.scenario.Name, Repeat: opts.Repeat}

	started := time.Now()
	for i := 0; i < opts.Repeat; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		plan, ok, detail := cp.PlanDetailed(r.start, r.goal, actions)
		if i == 0 {
			res.Solved = ok
			res.Actions = goap.ActionNames(plan)
			res.Search = detail.Search
		}
	}
	res.Elapsed = time.Since(started)
	res.Stats = cp.CacheStats()

	asOf := opts.now()
	dims := []metrics.Dimension{
		{Key: "scenario", Value: r.scenario.Name},
		{Key: "domain", Value: r.domain.Name},
	}
	points, err := metrics.CollectAll(ctx,
		metrics.CacheProvider{Source: cp, Dimensions: dims, Now: func() time.Time { return asOf }},
		metrics.StaticProvider{Label: "planner", Points: metrics.SearchPoints(res.Search, asOf, dims...)},
	)
	if err != nil {
		return res, err
	}
	res.Points = points

	if opts.SnapshotDir != "" {
		path := metrics.SnapshotPath(opts.SnapshotDir, asOf)
		if err := metrics.WriteSnapshot(path, metrics.NewSnapshot(r.scenario.Name, asOf, points)); err != nil {
			return res, fmt.Errorf("write bench snapshot: %w", err)
		}
		res.SnapshotPath = path
	}
	opts.logger().Info("bench finished",
		"scenario", res.Scenario,
		"repeat", res.Repeat,
		"hits", res.Stats.Hits,
		"misses", res.Stats.Misses,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
