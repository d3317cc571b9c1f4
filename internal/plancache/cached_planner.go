package plancache

import (
	"goapforge/internal/goap"
)

// Detail describes how a CachedPlanner answered a request.
type Detail struct {
	// FromCache is true when the plan was served from the cache.
	FromCache bool
	// Search is the planner result on a cache miss. It is the zero value on
	// a hit.
	Search goap.Result
}

// CachedPlanner consults a PlanCache before running the planner and stores
// successful plans afterwards.
//
// A CachedPlanner mutates its cache on every call and has no internal
// locking. Confine it to one goroutine or guard it externally.
type CachedPlanner struct {
	planner *goap.Planner
	cache   *PlanCache
}

// NewCachedPlanner returns a CachedPlanner with a cache of the given capacity
// and a planner built from opts.
func NewCachedPlanner(capacity int, opts ...goap.Option) *CachedPlanner {
	return &CachedPlanner{
		planner: goap.NewPlanner(opts...),
		cache:   New(capacity),
	}
}

// Plan returns a cached plan when one matches, otherwise plans and caches the
// result if a plan was found.
func (cp *CachedPlanner) Plan(state goap.WorldState, goal goap.Goal, actions []goap.Action) ([]goap.Action, bool) {
	plan, ok, _ := cp.PlanDetailed(state, goal, actions)
	return plan, ok
}

// PlanDetailed is Plan plus a Detail describing where the answer came from.
func (cp *CachedPlanner) PlanDetailed(state goap.WorldState, goal goap.Goal, actions []goap.Action) ([]goap.Action, bool, Detail) {
	if plan, ok := cp.cache.Get(state, goal, actions); ok {
		return plan, true, Detail{FromCache: true}
	}

	res := cp.planner.Search(state, goal, actions)
	if !res.Solved() {
		return nil, false, Detail{Search: res}
	}
	cp.cache.Put(state, goal, actions, res.Actions)
	return res.Actions, true, Detail{Search: res}
}

// Invalidate drops the cached plan for the request, typically after the plan
// failed when executed from state. It reports whether an entry was dropped.
func (cp *CachedPlanner) Invalidate(state goap.WorldState, goal goap.Goal, actions []goap.Action) bool {
	return cp.cache.Remove(state, goal, actions)
}

// CacheStats returns the cache counters.
func (cp *CachedPlanner) CacheStats() Stats {
	return cp.cache.Stats()
}

// ClearCache empties the cache and resets its counters.
func (cp *CachedPlanner) ClearCache() {
	cp.cache.Clear()
}

// BasePlanner returns the underlying planner.
func (cp *CachedPlanner) BasePlanner() *goap.Planner {
	return cp.planner
}

// Cache returns the underlying cache.
func (cp *CachedPlanner) Cache() *PlanCache {
	return cp.cache
}
